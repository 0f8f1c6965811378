package services_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"ship-swift-backend/internal/models"
	"ship-swift-backend/internal/services"
)

// presence is a fake hub with a fixed set of online users
type presence struct {
	mu     sync.Mutex
	online map[string]bool
	fail   error
	frames map[string][]services.WSMessage
}

func newPresence(online ...string) *presence {
	p := &presence{online: map[string]bool{}, frames: map[string][]services.WSMessage{}}
	for _, id := range online {
		p.online[id] = true
	}
	return p
}

func (p *presence) IsOnline(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online[userID]
}

func (p *presence) SendToUser(userID string, m services.WSMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.frames[userID] = append(p.frames[userID], m)
	return nil
}

func (p *presence) count(userID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.frames[userID])
}

func TestEnsureContact(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	c1, err := e.chat.EnsureContact(ctx, clientID, clientID, driverID)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	c2, err := e.chat.EnsureContact(ctx, driverID, clientID, driverID)
	if err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if c1.ID != c2.ID || e.store.ContactCount() != 1 {
		t.Fatalf("contact duplicated: %s vs %s", c1.ID, c2.ID)
	}

	cases := []struct {
		name             string
		caller, cli, drv string
		want             error
	}{
		{"missing client", clientID, "", driverID, services.ErrValidation},
		{"same user", clientID, clientID, clientID, services.ErrValidation},
		{"stranger", "stranger", clientID, driverID, services.ErrForbidden},
		{"driver lacks role", clientID, clientID, "nobody", services.ErrForbidden},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := e.chat.EnsureContact(ctx, c.caller, c.cli, c.drv); !errors.Is(err, c.want) {
				t.Fatalf("got %v want %v", err, c.want)
			}
		})
	}
}

func TestSendMessage(t *testing.T) {
	e := newEnv(t)
	hub := newPresence(clientID)
	chat := services.NewChatService(e.store, e.roles, e.notes, hub)
	ctx := context.Background()

	contact, err := chat.EnsureContact(ctx, clientID, clientID, driverID)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}

	msg, err := chat.SendMessage(ctx, clientID, contact.ID, "  on my way  ")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.Body != "on my way" || msg.SenderID != clientID {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if hub.count(clientID) != 1 {
		t.Fatalf("sender did not get the echo")
	}
	if e.notes.to(driverID, services.EventMessageCreated) != 1 {
		t.Fatalf("recipient was not notified")
	}

	if _, err := chat.SendMessage(ctx, clientID, contact.ID, "   "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("blank: got %v want ErrValidation", err)
	}
	if _, err := chat.SendMessage(ctx, clientID, contact.ID, strings.Repeat("x", 2001)); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("too long: got %v want ErrValidation", err)
	}
	if _, err := chat.SendMessage(ctx, "stranger", contact.ID, "hi"); !errors.Is(err, services.ErrForbidden) {
		t.Fatalf("stranger: got %v want ErrForbidden", err)
	}
	if _, err := chat.SendMessage(ctx, clientID, "missing", "hi"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("missing contact: got %v want ErrNotFound", err)
	}
}

func TestListMessages(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	contact, _ := e.chat.EnsureContact(ctx, clientID, clientID, driverID)

	for _, body := range []string{"one", "two", "three"} {
		if _, err := e.chat.SendMessage(ctx, driverID, contact.ID, body); err != nil {
			t.Fatalf("send: %v", err)
		}
		time.Sleep(time.Millisecond)
	}

	msgs, err := e.chat.ListMessages(ctx, clientID, contact.ID, 2, time.Time{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Body != "three" || msgs[1].Body != "two" {
		t.Fatalf("unexpected page: %+v", msgs)
	}

	older, err := e.chat.ListMessages(ctx, clientID, contact.ID, 10, msgs[1].CreatedAt)
	if err != nil {
		t.Fatalf("list older: %v", err)
	}
	if len(older) != 1 || older[0].Body != "one" {
		t.Fatalf("unexpected older page: %+v", older)
	}

	if _, err := e.chat.ListMessages(ctx, "stranger", contact.ID, 10, time.Time{}); !errors.Is(err, services.ErrForbidden) {
		t.Fatalf("stranger: got %v want ErrForbidden", err)
	}

	contacts, _ := e.chat.ListContacts(ctx, driverID)
	if len(contacts) != 1 || contacts[0].Other(driverID) != clientID {
		t.Fatalf("unexpected contacts: %+v", contacts)
	}
}

func TestReviews(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	aj, _ := e.delivered(t)

	rv, err := e.reviews.CreateReview(ctx, clientID, services.CreateReviewInput{
		TargetID:    driverID,
		TargetRole:  models.RoleDriver,
		ActiveJobID: &aj.ID,
		Rating:      5,
		Comment:     "Careful with the sofa",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := e.reviews.CreateReview(ctx, "other-client", services.CreateReviewInput{
		TargetID: driverID, TargetRole: models.RoleDriver, Rating: 2,
	}); err != nil {
		t.Fatalf("create unbound review: %v", err)
	}

	summary, err := e.reviews.ListReviews(ctx, driverID, models.RoleDriver)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if summary.Count != 2 || summary.Average != 3.5 {
		t.Fatalf("summary = %d/%.2f, want 2/3.50", summary.Count, summary.Average)
	}

	if err := e.reviews.DeleteReview(ctx, driverID, rv.ID); !errors.Is(err, services.ErrForbidden) {
		t.Fatalf("target delete: got %v want ErrForbidden", err)
	}
	if err := e.reviews.DeleteReview(ctx, adminID, rv.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if err := e.reviews.DeleteReview(ctx, clientID, rv.ID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("deleted twice: got %v want ErrNotFound", err)
	}
}

func TestCreateReview_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	ongoing := e.assigned(t)

	base := services.CreateReviewInput{TargetID: driverID, TargetRole: models.RoleDriver, Rating: 4}
	cases := []struct {
		name   string
		author string
		tweak  func(in *services.CreateReviewInput)
		want   error
	}{
		{"rating too low", clientID, func(in *services.CreateReviewInput) { in.Rating = 0 }, services.ErrValidation},
		{"rating too high", clientID, func(in *services.CreateReviewInput) { in.Rating = 6 }, services.ErrValidation},
		{"bad role", clientID, func(in *services.CreateReviewInput) { in.TargetRole = models.RoleAdmin }, services.ErrValidation},
		{"long comment", clientID, func(in *services.CreateReviewInput) { in.Comment = strings.Repeat("x", 1001) }, services.ErrValidation},
		{"self review", driverID, func(in *services.CreateReviewInput) {}, services.ErrForbidden},
		{"target lacks role", clientID, func(in *services.CreateReviewInput) { in.TargetRole = models.RoleClient }, services.ErrValidation},
		{"not delivered", clientID, func(in *services.CreateReviewInput) { in.ActiveJobID = &ongoing.ID }, services.ErrConflict},
		{"outsider on job", driver2, func(in *services.CreateReviewInput) { in.ActiveJobID = &ongoing.ID }, services.ErrForbidden},
		{"unknown job", clientID, func(in *services.CreateReviewInput) { in.ActiveJobID = ptr("missing") }, services.ErrNotFound},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			in := base
			c.tweak(&in)
			if _, err := e.reviews.CreateReview(ctx, c.author, in); !errors.Is(err, c.want) {
				t.Fatalf("got %v want %v", err, c.want)
			}
		})
	}
}
