package calendar

import (
	"time"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/config"
)

// Config holds the calendar provider settings.
type Config struct {
	BaseURL      string
	CalendarID   string
	ClientID     string
	ClientSecret string
	RefreshToken string
	TokenURL     string

	// Outbound request budget.
	RatePerSec float64
	Burst      int

	Timeout time.Duration
}

const (
	defaultBaseURL  = "https://www.googleapis.com/calendar/v3"
	defaultTokenURL = "https://oauth2.googleapis.com/token"
)

// DefaultConfig returns the Google Calendar endpoints with a conservative
// request budget.
func DefaultConfig() Config {
	return Config{
		BaseURL:    defaultBaseURL,
		TokenURL:   defaultTokenURL,
		RatePerSec: 5,
		Burst:      10,
		Timeout:    10 * time.Second,
	}
}

// FromCentralConfig converts config.CalendarConfig, keeping defaults for
// unset fields.
func FromCentralConfig(c config.CalendarConfig) Config {
	cfg := DefaultConfig()
	cfg.CalendarID = c.CalendarID
	cfg.ClientID = c.ClientID
	cfg.ClientSecret = c.ClientSecret
	cfg.RefreshToken = c.RefreshToken
	if c.BaseURL != "" {
		cfg.BaseURL = c.BaseURL
	}
	if c.TokenURL != "" {
		cfg.TokenURL = c.TokenURL
	}
	if c.RatePerSec > 0 {
		cfg.RatePerSec = c.RatePerSec
	}
	if c.Burst > 0 {
		cfg.Burst = c.Burst
	}
	return cfg
}
