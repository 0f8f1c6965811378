package services

import (
	"errors"
	"fmt"

	"ship-swift-backend/internal/repository"
)

var (
	// ErrNotFound is returned when the requested entity does not exist
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned for malformed input, before any write
	ErrValidation = errors.New("validation failed")
	// ErrForbidden is returned when the caller may not act on the entity
	ErrForbidden = errors.New("forbidden")
	// ErrConflict is returned when the entity state does not allow the operation
	ErrConflict = errors.New("conflict")
	// ErrInvalidTransition is returned for an out-of-order active job status change
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrNotConfirmed is returned when payment is released before both confirmations
	ErrNotConfirmed = errors.New("delivery not confirmed by both parties")
	// ErrNotPaid is returned when payment is released for a job whose checkout never completed
	ErrNotPaid = errors.New("job has not been paid")
	// ErrUpstream is returned when a third-party service fails
	ErrUpstream = errors.New("upstream failure")
)

// ValidationError names the offending field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// storeErr translates repository errors into service errors
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}
