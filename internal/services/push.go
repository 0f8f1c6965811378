package services

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
	"google.golang.org/api/option"
)

// APNsPusher delivers notifications to iOS devices
type APNsPusher struct {
	client *apns2.Client
	topic  string
}

// NewAPNsPusher creates a token-authenticated APNs client from a .p8 key file
func NewAPNsPusher(keyFile, keyID, teamID, topic string, production bool) (*APNsPusher, error) {
	authKey, err := token.AuthKeyFromFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs auth key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   keyID,
		TeamID:  teamID,
	})
	if production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNsPusher{client: client, topic: topic}, nil
}

// Push sends n to an iOS device token
func (p *APNsPusher) Push(ctx context.Context, deviceToken string, n Notification) error {
	pl := payload.NewPayload().
		AlertTitle(n.Title).
		AlertBody(n.Body).
		Sound("default").
		Custom("type", n.Type)
	for k, v := range n.Refs {
		pl.Custom(k, v)
	}

	res, err := p.client.PushWithContext(ctx, &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       p.topic,
		Payload:     pl,
	})
	if err != nil {
		return fmt.Errorf("failed to push to APNs: %w", err)
	}

	if !res.Sent() {
		if res.Reason == apns2.ReasonBadDeviceToken || res.Reason == apns2.ReasonUnregistered {
			return fmt.Errorf("%w: %s", ErrInvalidPushToken, res.Reason)
		}
		return fmt.Errorf("APNs rejected notification: %d %s", res.StatusCode, res.Reason)
	}

	return nil
}

// FCMPusher delivers notifications to Android and web devices
type FCMPusher struct {
	client *messaging.Client
}

// NewFCMPusher creates a Firebase Cloud Messaging client from a service account file
func NewFCMPusher(ctx context.Context, credentialsFile string) (*FCMPusher, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase messaging: %w", err)
	}

	return &FCMPusher{client: client}, nil
}

// Push sends n to an FCM registration token
func (p *FCMPusher) Push(ctx context.Context, registrationToken string, n Notification) error {
	data := make(map[string]string, len(n.Refs)+1)
	for k, v := range n.Refs {
		data[k] = v
	}
	data["type"] = n.Type

	_, err := p.client.Send(ctx, &messaging.Message{
		Token: registrationToken,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: data,
	})
	if err != nil {
		if messaging.IsUnregistered(err) {
			return fmt.Errorf("%w: %v", ErrInvalidPushToken, err)
		}
		return fmt.Errorf("failed to push to FCM: %w", err)
	}

	return nil
}
