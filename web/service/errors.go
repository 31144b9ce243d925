// Package service implements the dashboard's business operations on top of the database
// package. Every read or write of user-owned data is scoped by the caller's user id.
package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both missing records and records owned by someone else.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials is deliberately vague about which part was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// ValidationError reports bad input for a single form field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError reports msg against field.
func NewValidationError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

func invalid(field, msg string) error {
	return NewValidationError(field, msg)
}

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
