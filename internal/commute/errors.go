package commute

import "errors"

// ErrSignInRequired is returned when saving without a signed-in user
var ErrSignInRequired = errors.New("you must be signed in to save a commute")

// ValidationError is a form problem caught before anything is sent
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
