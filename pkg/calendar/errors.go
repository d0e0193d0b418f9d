package calendar

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("calendar: event not found")
	ErrNotConfigured = errors.New("calendar: provider not configured")
)

// ErrProvider is returned for unexpected provider responses.
type ErrProvider struct {
	Status int
	Body   string
}

func (e ErrProvider) Error() string {
	return fmt.Sprintf("calendar: provider returned %d: %s", e.Status, e.Body)
}
