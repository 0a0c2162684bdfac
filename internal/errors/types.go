// Package errors provides error classification for the client SDK.
// Every failure surfaced to the store layer falls into one of three
// categories, which decide whether the local optimistic change is reverted
// and what the user gets told.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
)

// Category determines how a failure is handled by the store layer.
type Category int

const (
	// Transport covers connection loss, ack timeouts and malformed
	// envelopes. Always surfaced as a generic retry-suggesting message.
	Transport Category = iota

	// Domain covers envelopes the backend answered with ok=false. The
	// error string is mapped to a user-facing message where recognised.
	Domain

	// Canceled marks a caller-abandoned operation. Never surfaced.
	Canceled
)

// String returns a human-readable representation of the category.
func (c Category) String() string {
	switch c {
	case Transport:
		return "Transport"
	case Domain:
		return "Domain"
	case Canceled:
		return "Canceled"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// ClassifiedError wraps an error with categorization metadata.
type ClassifiedError struct {
	Category   Category
	Code       string // envelope code ("NOT_FOUND", ...) for domain errors
	Message    string // raw backend or transport message
	Underlying error
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Category, e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Category, e.Message)
}

// Unwrap returns the underlying error for error chain compatibility.
func (e *ClassifiedError) Unwrap() error { return e.Underlying }

// NewTransport creates a transport-category error. The message retains a
// "socket"/"connection" marker where applicable so downstream mapping can
// recognise it.
func NewTransport(message string, underlying error) *ClassifiedError {
	return &ClassifiedError{Category: Transport, Message: message, Underlying: underlying}
}

// NewDomain creates a domain-category error from an ok=false envelope.
func NewDomain(message, code string) *ClassifiedError {
	return &ClassifiedError{Category: Domain, Code: code, Message: message}
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	var ce *ClassifiedError
	return stderrors.As(err, &ce) && ce.Category == Transport
}

// IsDomain reports whether err is a backend-reported failure.
func IsDomain(err error) bool {
	var ce *ClassifiedError
	return stderrors.As(err, &ce) && ce.Category == Domain
}

// DomainCode returns the envelope code of a domain error, or "".
func DomainCode(err error) string {
	var ce *ClassifiedError
	if stderrors.As(err, &ce) && ce.Category == Domain {
		return ce.Code
	}
	return ""
}

// IsCancellation reports whether err signals an abandoned caller. Covers
// context cancellation, caller deadlines, and explicitly classified
// cancellations.
func IsCancellation(err error) bool {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ce *ClassifiedError
	return stderrors.As(err, &ce) && ce.Category == Canceled
}
