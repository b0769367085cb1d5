package auth

import (
	"errors"
	"maps"
	"slices"
	"strings"
)

// Form-level failures. Their messages are shown to the user verbatim.
var (
	ErrMissingFields      = errors.New("Email, username, and password are required")
	ErrEmailTaken         = errors.New("Email already exists")
	ErrUsernameTaken      = errors.New("Username already exists")
	ErrMissingCredentials = errors.New("Please enter both email/username and password")
	ErrInvalidCredentials = errors.New("Invalid email/username or password")
	ErrLoginFailed        = errors.New("An error occurred during login")
)

// Field names used in FieldErrors.
const (
	FieldEmail      = "email"
	FieldUsername   = "username"
	FieldPassword   = "password"
	FieldIdentifier = "identifier"
)

// FieldErrors maps a form field to its inline message. An empty map means the
// form is clean.
type FieldErrors map[string]string

// ValidationError rejects a registration whose fields did not validate.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "Please fix the validation errors"
	}
	keys := slices.Sorted(maps.Keys(e.Fields))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "Please fix the validation errors (" + strings.Join(parts, "; ") + ")"
}

// Message is the form-level text for the error.
func (e *ValidationError) Message() string { return "Please fix the validation errors" }
