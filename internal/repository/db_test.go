package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestNotFound(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		notFound bool
	}{
		{"no rows", pgx.ErrNoRows, true},
		{"malformed uuid", &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}, true},
		{"wrapped malformed uuid", fmt.Errorf("scan: %w", &pgconn.PgError{Code: "22P02"}), true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"connection", errors.New("connection refused"), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := notFound(c.err, "job")
			if got := errors.Is(err, ErrNotFound); got != c.notFound {
				t.Fatalf("errors.Is(ErrNotFound) = %v, want %v (%v)", got, c.notFound, err)
			}
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})) {
		t.Fatalf("wrapped unique violation not detected")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "22P02"}) {
		t.Fatalf("invalid text treated as unique violation")
	}
}
