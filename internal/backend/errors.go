package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork covers transport failures and non-2xx responses.
	ErrNetwork = errors.New("backend request failed")
	// ErrDecode means a response did not match the expected wire schema.
	ErrDecode = errors.New("unexpected backend response")
)

// StatusError is returned when the backend answered with a non-2xx status.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Body)
}

// Is makes errors.Is(err, ErrNetwork) true for status failures.
func (e *StatusError) Is(target error) bool {
	return target == ErrNetwork
}
