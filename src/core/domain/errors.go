package domain

import (
	"errors"
	"fmt"
)

// Sentinels classify every error the core returns to the transport layer.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrRoundNotActive = errors.New("round is not active")
)

// DomainError attaches context to one of the sentinels above.
type DomainError struct {
	Base    error
	Message string
	// Field names the offending input for validation errors.
	Field string
}

func (e *DomainError) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("%s: %s (field: %s)", e.Base, e.Message, e.Field)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Base, e.Message)
	default:
		return e.Base.Error()
	}
}

// Unwrap exposes the sentinel to errors.Is.
func (e *DomainError) Unwrap() error {
	return e.Base
}

func NewNotFoundError(resource string) *DomainError {
	return &DomainError{Base: ErrNotFound, Message: resource}
}

func NewRoundNotFoundError() *DomainError {
	return NewNotFoundError("round")
}

// NewRoundNotActiveError rejects a tap made during cooldown or after the end.
func NewRoundNotActiveError(status RoundStatus) *DomainError {
	return &DomainError{Base: ErrRoundNotActive, Message: string(status)}
}

func NewValidationError(field, message string) *DomainError {
	return &DomainError{Base: ErrInvalidInput, Message: message, Field: field}
}

func NewConflictError(message string) *DomainError {
	return &DomainError{Base: ErrConflict, Message: message}
}

func NewForbiddenError(message string) *DomainError {
	return &DomainError{Base: ErrForbidden, Message: message}
}

func NewUnauthorizedError(message string) *DomainError {
	return &DomainError{Base: ErrUnauthorized, Message: message}
}

func IsNotFound(err error) bool        { return errors.Is(err, ErrNotFound) }
func IsValidationError(err error) bool { return errors.Is(err, ErrInvalidInput) }
func IsConflict(err error) bool        { return errors.Is(err, ErrConflict) }
func IsForbidden(err error) bool       { return errors.Is(err, ErrForbidden) }
func IsUnauthorized(err error) bool    { return errors.Is(err, ErrUnauthorized) }
func IsRoundNotActive(err error) bool  { return errors.Is(err, ErrRoundNotActive) }
