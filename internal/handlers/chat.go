package handlers

import (
	"net/http"
	"time"

	"ship-swift-backend/internal/middleware"
	"ship-swift-backend/internal/services"
)

// ChatHandler handles contact and message HTTP requests
type ChatHandler struct {
	chatService *services.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// SendMessageRequest is a new chat message
type SendMessageRequest struct {
	Body string `json:"body"`
}

// ListContacts handles GET /api/v1/contacts
func (h *ChatHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	contacts, err := h.chatService.ListContacts(ctx, userID)
	if err != nil {
		handleError(w, err, userID, "Failed to list contacts")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"contacts": contacts})
}

// EnsureContact handles POST /api/v1/contacts
func (h *ChatHandler) EnsureContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.EnsureContactRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	contact, err := h.chatService.EnsureContact(ctx, userID, req.ClientID, req.DriverID)
	if err != nil {
		handleError(w, err, userID, "Failed to ensure contact")
		return
	}

	respondJSON(w, http.StatusOK, contact)
}

// ListMessages handles GET /api/v1/contacts/{contact_id}/messages
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var before time.Time
	if v := r.URL.Query().Get("before"); v != "" {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			respondError(w, "before must be an RFC 3339 timestamp", http.StatusBadRequest)
			return
		}
		before = t
	}

	contactID, ok := pathID(w, r, "contact_id")
	if !ok {
		return
	}

	messages, err := h.chatService.ListMessages(ctx, userID, contactID, queryInt(r, "limit", 50), before)
	if err != nil {
		handleError(w, err, userID, "Failed to list messages")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

// SendMessage handles POST /api/v1/contacts/{contact_id}/messages
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req SendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	contactID, ok := pathID(w, r, "contact_id")
	if !ok {
		return
	}

	msg, err := h.chatService.SendMessage(ctx, userID, contactID, req.Body)
	if err != nil {
		handleError(w, err, userID, "Failed to send message")
		return
	}

	respondJSON(w, http.StatusCreated, msg)
}
