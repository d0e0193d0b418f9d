package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidConfig = errors.New("invalid configuration")

var validLogLevels = map[string]struct{}{
	"debug": {}, "info": {}, "warn": {}, "warning": {}, "error": {},
}

// Validate checks the fields the service cannot start without.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port))
	}

	if lvl := strings.ToLower(strings.TrimSpace(c.Logging.Level)); lvl != "" {
		if _, ok := validLogLevels[lvl]; !ok {
			errs = append(errs, fmt.Errorf("%w: logging.level %q", ErrInvalidConfig, c.Logging.Level))
		}
	}

	if tz := c.Clinic.Timezone; tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			errs = append(errs, fmt.Errorf("%w: clinic.timezone %q: %v", ErrInvalidConfig, tz, err))
		}
	}

	switch c.Authentication.Paseto.Mode {
	case "", "local", "public":
	default:
		errs = append(errs, fmt.Errorf("%w: authentication.paseto.mode %q", ErrInvalidConfig, c.Authentication.Paseto.Mode))
	}

	if c.Calendar.Enabled && (c.Calendar.BaseURL == "" || c.Calendar.CalendarID == "") {
		errs = append(errs, fmt.Errorf("%w: calendar.base_url and calendar.calendar_id are required when calendar is enabled", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// Location returns the clinic timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	if c.Clinic.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Clinic.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}
