package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ship-swift-backend/internal/services"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("job: %w", services.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("title: %w", services.ErrValidation), http.StatusBadRequest},
		{services.ErrInvalidSignature, http.StatusBadRequest},
		{services.ErrForbidden, http.StatusForbidden},
		{services.ErrConflict, http.StatusConflict},
		{fmt.Errorf("release: %w", services.ErrNotPaid), http.StatusConflict},
		{services.ErrInvalidTransition, http.StatusUnprocessableEntity},
		{services.ErrNotConfirmed, http.StatusUnprocessableEntity},
		{services.ErrUpstream, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := statusFor(c.err); got != c.want {
			t.Errorf("statusFor(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestHandleError_HidesInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	handleError(rec, errors.New("pq: password authentication failed"), "u1", "Failed")
	if rec.Code != http.StatusInternalServerError || strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("leaked internal error: %d %s", rec.Code, rec.Body.String())
	}
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?limit=20&offset=abc", nil)
	if got := queryInt(r, "limit", 50); got != 20 {
		t.Fatalf("limit = %d", got)
	}
	if got := queryInt(r, "offset", 0); got != 0 {
		t.Fatalf("offset = %d", got)
	}
	if got := queryInt(r, "missing", 7); got != 7 {
		t.Fatalf("missing = %d", got)
	}
}
