package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"ship-swift-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const maxMessageLength = 2000

// ChatService handles contacts and the chat threads between their parties
type ChatService struct {
	store    Store
	roles    *RoleService
	notifier Notifier
	hub      Presence
}

// NewChatService creates a new chat service. hub may be nil.
func NewChatService(store Store, roles *RoleService, notifier Notifier, hub Presence) *ChatService {
	return &ChatService{
		store:    store,
		roles:    roles,
		notifier: notifierOrNop(notifier),
		hub:      hub,
	}
}

// EnsureContactRequest represents a request to open a chat with a counterpart
type EnsureContactRequest struct {
	ClientID string `json:"client_id"`
	DriverID string `json:"driver_id"`
}

// EnsureContact returns the contact between a client and a driver, creating
// it on first use. The caller must be one of the two.
func (s *ChatService) EnsureContact(ctx context.Context, callerID, clientID, driverID string) (*models.Contact, error) {
	clientID = strings.TrimSpace(clientID)
	driverID = strings.TrimSpace(driverID)
	if clientID == "" {
		return nil, invalid("client_id", "is required")
	}
	if driverID == "" {
		return nil, invalid("driver_id", "is required")
	}
	if clientID == driverID {
		return nil, invalid("driver_id", "must differ from client_id")
	}
	if callerID != clientID && callerID != driverID {
		return nil, fmt.Errorf("%w: caller must be a party of the contact", ErrForbidden)
	}
	if err := s.roles.require(ctx, clientID, models.RoleClient); err != nil {
		return nil, err
	}
	if err := s.roles.require(ctx, driverID, models.RoleDriver); err != nil {
		return nil, err
	}

	contact, err := s.store.EnsureContact(ctx, &models.Contact{
		ID:        uuid.New().String(),
		ClientID:  clientID,
		DriverID:  driverID,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ensure contact: %w", err)
	}
	return contact, nil
}

// ListContacts lists the contacts userID belongs to
func (s *ChatService) ListContacts(ctx context.Context, userID string) ([]*models.Contact, error) {
	return s.store.ListContactsByUser(ctx, userID)
}

// SendMessage appends a message to a contact thread and fans it out to both parties
func (s *ChatService) SendMessage(ctx context.Context, senderID, contactID, body string) (*models.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, invalid("body", "is required")
	}
	if utf8.RuneCountInString(body) > maxMessageLength {
		return nil, invalid("body", fmt.Sprintf("must be at most %d characters", maxMessageLength))
	}

	contact, err := s.contact(ctx, senderID, contactID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ID:        uuid.New().String(),
		ContactID: contactID,
		SenderID:  senderID,
		Body:      body,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	log.Debug().Str("message_id", msg.ID).Str("contact_id", contactID).Str("sender_id", senderID).Msg("Message sent")

	// echo to the sender's other session, the recipient gets a push when offline
	if s.hub != nil && s.hub.IsOnline(senderID) {
		if err := s.hub.SendToUser(senderID, WSMessage{Type: EventMessageCreated, ContactID: contactID, Data: msg}); err != nil {
			log.Debug().Err(err).Str("user_id", senderID).Msg("Failed to echo message to sender")
		}
	}
	s.notifier.Notify(ctx, contact.Other(senderID), Notification{
		Type:  EventMessageCreated,
		Title: "New message",
		Body:  preview(body),
		Data:  msg,
		Refs:  map[string]string{"contact_id": contactID, "message_id": msg.ID},
	})

	return msg, nil
}

// ListMessages returns up to limit messages of a thread older than before, newest first
func (s *ChatService) ListMessages(ctx context.Context, userID, contactID string, limit int, before time.Time) ([]*models.Message, error) {
	if _, err := s.contact(ctx, userID, contactID); err != nil {
		return nil, err
	}
	limit, _ = page(limit, 0)
	if before.IsZero() {
		before = time.Now()
	}
	return s.store.ListMessages(ctx, contactID, limit, before)
}

func (s *ChatService) contact(ctx context.Context, userID, contactID string) (*models.Contact, error) {
	contact, err := s.store.GetContact(ctx, contactID)
	if err != nil {
		return nil, storeErr(err)
	}
	if !contact.HasParty(userID) {
		return nil, fmt.Errorf("%w: not a party of the contact", ErrForbidden)
	}
	return contact, nil
}

func preview(body string) string {
	const max = 120
	if utf8.RuneCountInString(body) <= max {
		return body
	}
	return string([]rune(body)[:max]) + "..."
}
