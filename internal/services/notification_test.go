package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"ship-swift-backend/internal/models"
	"ship-swift-backend/internal/services"
	"ship-swift-backend/internal/storetest"
)

// pusher records pushes and fails for the tokens listed in bad
type pusher struct {
	mu     sync.Mutex
	pushed []string
	bad    map[string]error
}

func (p *pusher) Push(_ context.Context, token string, _ services.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err, ok := p.bad[token]; ok {
		return err
	}
	p.pushed = append(p.pushed, token)
	return nil
}

func TestNotify_OnlineUsesHub(t *testing.T) {
	store := storetest.New()
	hub := newPresence("u1")
	push := &pusher{}
	notes := services.NewNotificationService(store, hub, map[models.Platform]services.Pusher{models.PlatformIOS: push})
	ctx := context.Background()

	if _, err := notes.RegisterToken(ctx, "u1", "ios-token", models.PlatformIOS); err != nil {
		t.Fatalf("register: %v", err)
	}

	notes.Notify(ctx, "u1", services.Notification{Type: services.EventMessageCreated, Body: "hi"})

	if hub.count("u1") != 1 {
		t.Fatalf("online user got %d frames, want 1", hub.count("u1"))
	}
	if len(push.pushed) != 0 {
		t.Fatalf("online user was also pushed")
	}
}

func TestNotify_OfflineFallsBackToPush(t *testing.T) {
	store := storetest.New()
	hub := newPresence()
	ios := &pusher{bad: map[string]error{
		"dead-token": fmt.Errorf("%w: Unregistered", services.ErrInvalidPushToken),
		"flaky":      errors.New("gateway timeout"),
	}}
	fcm := &pusher{}
	notes := services.NewNotificationService(store, hub, map[models.Platform]services.Pusher{
		models.PlatformIOS:     ios,
		models.PlatformAndroid: fcm,
	})
	ctx := context.Background()

	for token, platform := range map[string]models.Platform{
		"ios-token":     models.PlatformIOS,
		"dead-token":    models.PlatformIOS,
		"flaky":         models.PlatformIOS,
		"android-token": models.PlatformAndroid,
		"web-token":     models.PlatformWeb,
	} {
		if _, err := notes.RegisterToken(ctx, "u1", token, platform); err != nil {
			t.Fatalf("register %s: %v", token, err)
		}
	}

	notes.Notify(ctx, "u1", services.Notification{Type: services.EventJobRequestApproved, Title: "Approved"})

	if len(ios.pushed) != 1 || ios.pushed[0] != "ios-token" {
		t.Fatalf("ios pushes = %v", ios.pushed)
	}
	if len(fcm.pushed) != 1 || fcm.pushed[0] != "android-token" {
		t.Fatalf("fcm pushes = %v", fcm.pushed)
	}

	tokens, _ := store.ListPushTokensByUser(ctx, "u1")
	for _, tok := range tokens {
		if tok.Token == "dead-token" {
			t.Fatalf("invalid token was not dropped")
		}
	}
	if len(tokens) != 4 {
		t.Fatalf("tokens left = %d, want 4", len(tokens))
	}
}

func TestNotify_HubFailureFallsBack(t *testing.T) {
	store := storetest.New()
	hub := newPresence("u1")
	hub.fail = errors.New("broken pipe")
	push := &pusher{}
	notes := services.NewNotificationService(store, hub, map[models.Platform]services.Pusher{models.PlatformAndroid: push})
	ctx := context.Background()

	if _, err := notes.RegisterToken(ctx, "u1", "android-token", models.PlatformAndroid); err != nil {
		t.Fatalf("register: %v", err)
	}
	notes.Notify(ctx, "u1", services.Notification{Type: services.EventMessageCreated})

	if len(push.pushed) != 1 {
		t.Fatalf("pushes = %d, want 1", len(push.pushed))
	}
}

func TestRegisterToken_Validation(t *testing.T) {
	notes := services.NewNotificationService(storetest.New(), nil, nil)
	ctx := context.Background()

	if _, err := notes.RegisterToken(ctx, "u1", " ", models.PlatformIOS); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("blank token: got %v want ErrValidation", err)
	}
	if _, err := notes.RegisterToken(ctx, "u1", "tok", models.Platform("symbian")); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("bad platform: got %v want ErrValidation", err)
	}
	if err := notes.UnregisterToken(ctx, "u1", "tok"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("unknown token: got %v want ErrNotFound", err)
	}
	if _, err := notes.RegisterToken(ctx, "u1", "tok", models.PlatformWeb); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := notes.UnregisterToken(ctx, "u2", "tok"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("other user's token: got %v want ErrNotFound", err)
	}
	if err := notes.UnregisterToken(ctx, "u1", "tok"); err != nil {
		t.Fatalf("unregister: %v", err)
	}
}
