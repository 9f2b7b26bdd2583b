package services

import "errors"

// ValidationError is a client mistake: missing fields, a weak or mismatched
// password, a duplicate email or bad credentials. Nothing is written when one
// is returned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var (
	ErrMissingFields      = &ValidationError{Message: "Not all fields have been entered."}
	ErrPasswordTooShort   = &ValidationError{Message: "The password needs to be at least 5 characters long."}
	ErrPasswordMismatch   = &ValidationError{Message: "Enter the same password twice for verification."}
	ErrEmailTaken         = &ValidationError{Message: "An account with this email already exists."}
	ErrNoAccount          = &ValidationError{Message: "No account with this email has been registered."}
	ErrInvalidCredentials = &ValidationError{Message: "Invalid credentials."}
)

var (
	// ErrAdminNotFound is returned by the store when no row matches.
	ErrAdminNotFound = errors.New("admin not found")
	// ErrDuplicateEmail is returned by the store when the email is already used.
	ErrDuplicateEmail = errors.New("email already registered")
)
