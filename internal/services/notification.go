package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ship-swift-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// ErrInvalidPushToken is returned by a Pusher when the gateway no longer
// accepts the device token
var ErrInvalidPushToken = errors.New("invalid push token")

// Notification is delivered over the realtime feed when the user is online
// and as a push notification otherwise
type Notification struct {
	Type  string
	Title string
	Body  string
	// Data is the realtime payload
	Data interface{}
	// Refs are entity ids carried in the push payload
	Refs map[string]string
}

// Notifier delivers notifications to a user. Failures never propagate to the
// operation that triggered them.
type Notifier interface {
	Notify(ctx context.Context, userID string, n Notification)
}

// Presence is the realtime side of notification delivery
type Presence interface {
	IsOnline(userID string) bool
	SendToUser(userID string, message WSMessage) error
}

// Pusher delivers a notification to one device token
type Pusher interface {
	Push(ctx context.Context, token string, n Notification) error
}

// NotificationService fans notifications out to the hub and the push gateways
type NotificationService struct {
	tokens  PushTokenQueries
	hub     Presence
	pushers map[models.Platform]Pusher
}

// NewNotificationService creates a new notification service. Platforms
// without a pusher are skipped.
func NewNotificationService(tokens PushTokenQueries, hub Presence, pushers map[models.Platform]Pusher) *NotificationService {
	if pushers == nil {
		pushers = map[models.Platform]Pusher{}
	}
	return &NotificationService{
		tokens:  tokens,
		hub:     hub,
		pushers: pushers,
	}
}

// Notify sends n to userID
func (s *NotificationService) Notify(ctx context.Context, userID string, n Notification) {
	if s.hub != nil && s.hub.IsOnline(userID) {
		err := s.hub.SendToUser(userID, WSMessage{Type: n.Type, Message: n.Body, Data: n.Data})
		if err == nil {
			return
		}
		log.Warn().Err(err).Str("user_id", userID).Str("type", n.Type).Msg("Realtime delivery failed, falling back to push")
	}

	tokens, err := s.tokens.ListPushTokensByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list push tokens")
		return
	}

	for _, t := range tokens {
		pusher, ok := s.pushers[t.Platform]
		if !ok {
			log.Debug().Str("user_id", userID).Str("platform", string(t.Platform)).Msg("No pusher for platform")
			continue
		}
		if err := pusher.Push(ctx, t.Token, n); err != nil {
			if errors.Is(err, ErrInvalidPushToken) {
				if delErr := s.tokens.DeletePushToken(ctx, userID, t.Token); delErr != nil {
					log.Error().Err(delErr).Str("user_id", userID).Msg("Failed to drop invalid push token")
				}
				continue
			}
			log.Error().
				Err(err).
				Str("user_id", userID).
				Str("platform", string(t.Platform)).
				Msg("Failed to send push notification")
		}
	}
}

// RegisterToken registers a device token for userID
func (s *NotificationService) RegisterToken(ctx context.Context, userID, token string, platform models.Platform) (*models.PushToken, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, invalid("token", "is required")
	}
	switch platform {
	case models.PlatformIOS, models.PlatformAndroid, models.PlatformWeb:
	default:
		return nil, invalid("platform", "must be ios, android or web")
	}

	t := &models.PushToken{
		Token:     token,
		UserID:    userID,
		Platform:  platform,
		CreatedAt: time.Now(),
	}
	if err := s.tokens.UpsertPushToken(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to register push token: %w", err)
	}
	return t, nil
}

// UnregisterToken removes a device token of userID
func (s *NotificationService) UnregisterToken(ctx context.Context, userID, token string) error {
	return storeErr(s.tokens.DeletePushToken(ctx, userID, token))
}

// nopNotifier drops every notification
type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, string, Notification) {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
