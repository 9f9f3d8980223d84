package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for HTTP mapping and client handling.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindValidation        Kind = "validation"
	KindInsufficientFunds Kind = "insufficient_funds"
	KindGeneration        Kind = "generation"
	KindPersistence       Kind = "persistence"
)

// Error is the taxonomy error surfaced to callers. Components wrap
// lower-level failures with fmt.Errorf and %w; only handlers and the
// engine boundary construct Errors.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"error"`
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.err
}

// New creates an Error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an Error that wraps an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, err: err}
}

// NotFound reports a missing entity.
func NotFound(entity string, id any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %v not found", entity, id)}
}

// Validation reports a malformed input payload.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// InsufficientFunds reports a choice cost exceeding the player's balance.
func InsufficientFunds(currency string) *Error {
	return &Error{Kind: KindInsufficientFunds, Message: fmt.Sprintf("not enough %s", currency)}
}

// KindOf returns the Kind of err, or empty string if err is not an Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error to its HTTP status code. Unclassified
// errors map to 500.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindInsufficientFunds:
		return http.StatusBadRequest
	case KindGeneration:
		return http.StatusBadGateway
	case KindPersistence:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
