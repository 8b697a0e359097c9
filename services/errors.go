package services

import (
	"errors"
	"fmt"

	"washcenter-backend/models"
	"washcenter-backend/store"

	"github.com/google/uuid"
)

// ValidationError reports a missing or invalid input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NotFoundError reports a center or booking id that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// TerminalStateError is returned when a Completed or Cancelled booking is
// asked to change status.
type TerminalStateError struct {
	BookingID uuid.UUID
	Status    models.BookingStatus
}

func (e *TerminalStateError) Error() string {
	return fmt.Sprintf("booking %s is %s and can no longer change status", e.BookingID, e.Status)
}

// StorageError wraps a persistence failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage: " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// fromStore converts a store error into a domain error. Domain errors raised
// inside update callbacks pass through untouched.
func fromStore(op, resource string, id uuid.UUID, err error) error {
	if err == nil {
		return nil
	}
	var (
		ve *ValidationError
		te *TerminalStateError
		nf *NotFoundError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &te), errors.As(err, &nf):
		return err
	case errors.Is(err, store.ErrNotFound):
		return &NotFoundError{Resource: resource, ID: id.String()}
	default:
		return &StorageError{Op: op, Err: err}
	}
}
