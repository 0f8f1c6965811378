package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ship-swift-backend/internal/models"
	"ship-swift-backend/internal/services"
)

type roleStub map[string]models.Role

func (s roleStub) HasRole(_ context.Context, userID string, role models.Role) (bool, error) {
	if userID == "broken" {
		return false, errors.New("cache down")
	}
	return s[userID] == role, nil
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(GetUserID(r.Context())))
}

func TestAuthMiddleware(t *testing.T) {
	auth := services.NewAuthService("test-secret")
	token, err := auth.GenerateJWT("user-1", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	expired, err := auth.GenerateJWT("user-1", -time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	foreign, err := services.NewAuthService("other-secret").GenerateJWT("user-1", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid token", "Bearer " + token, http.StatusOK, "user-1"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized, ""},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized, ""},
		{"wrong secret", "Bearer " + foreign, http.StatusUnauthorized, ""},
	}

	h := AuthMiddleware(auth)(http.HandlerFunc(echoUser))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.body != "" && rec.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.body)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	roles := roleStub{"driver-1": models.RoleDriver, "client-1": models.RoleClient}
	h := RequireRole(roles, models.RoleDriver)(http.HandlerFunc(echoUser))

	tests := []struct {
		userID string
		status int
	}{
		{"driver-1", http.StatusOK},
		{"client-1", http.StatusForbidden},
		{"", http.StatusUnauthorized},
		{"broken", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.userID != "" {
			req = req.WithContext(WithUserID(req.Context(), tt.userID))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != tt.status {
			t.Errorf("user %q: status = %d, want %d", tt.userID, rec.Code, tt.status)
		}
	}
}

func TestValidateWebSocketToken(t *testing.T) {
	auth := services.NewAuthService("test-secret")
	if _, err := ValidateWebSocketToken("", auth); err == nil {
		t.Error("expected error for empty token")
	}

	token, _ := auth.GenerateJWT("user-2", time.Minute)
	userID, err := ValidateWebSocketToken(token, auth)
	if err != nil || userID != "user-2" {
		t.Errorf("got %q, %v", userID, err)
	}
}
