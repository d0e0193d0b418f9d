package calendar

import "errors"

var (
	ErrCalendarDisabled = errors.New("calendar provider is not configured")
	ErrEventNotFound    = errors.New("event not found")
	ErrInvalidEvent     = errors.New("invalid event")
	ErrInvalidRange     = errors.New("invalid time range")
)
