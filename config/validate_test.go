package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() Config {
	var c Config
	c.Server.Port = 8080
	c.Logging.Level = "info"
	c.Clinic.Timezone = "UTC"
	c.Authentication.Paseto.Mode = "local"
	return c
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing port", func(c *Config) { c.Server.Port = 0 }, true},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, true},
		{"bad timezone", func(c *Config) { c.Clinic.Timezone = "Mars/Olympus" }, true},
		{"bad paseto mode", func(c *Config) { c.Authentication.Paseto.Mode = "v2" }, true},
		{"calendar without url", func(c *Config) { c.Calendar.Enabled = true }, true},
		{"empty level allowed", func(c *Config) { c.Logging.Level = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLocation(t *testing.T) {
	c := validConfig()
	c.Clinic.Timezone = ""
	assert.Equal(t, time.UTC, c.Location())
}
