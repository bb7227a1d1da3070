package errors

import (
	"errors"
	"fmt"
)

// Error categories surfaced to the portal UI
var (
	// Authentication errors
	ErrAuthentication   = errors.New("authentication failed")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionExpired   = errors.New("session expired")

	// Token errors
	ErrMalformedToken = errors.New("malformed token")

	// Request errors
	ErrValidation = errors.New("validation failed")
	ErrPayment    = errors.New("payment failed")
	ErrNetwork    = errors.New("network error")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// UserError carries a message that is safe to show to the user alongside the
// category it belongs to and the underlying cause.
type UserError struct {
	Kind    error
	Message string
	Err     error
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes both the category and the cause to errors.Is / errors.As.
func (e *UserError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewUserError builds a UserError of the given kind
func NewUserError(kind error, message string, cause error) *UserError {
	return &UserError{Kind: kind, Message: message, Err: cause}
}

// Message resolves err to a string that can be displayed. The first UserError
// in the chain wins; anything else resolves to fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var userErr *UserError
	if errors.As(err, &userErr) && userErr.Message != "" {
		return userErr.Message
	}
	return fallback
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
