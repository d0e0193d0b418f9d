package sms

import (
	"context"
	"fmt"

	"github.com/arsmn/go-smsir/smsir"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/config"
)

// Client sends templated SMS through sms.ir.
type Client struct {
	client             *smsir.Client
	enabled            bool
	reminderTemplateID string
}

// NewFromConfig creates a new SMS client from the application configuration.
// If SMS is disabled, returns a client that no-ops on all operations.
func NewFromConfig(cfg config.SMSConfig) (*Client, error) {
	if !cfg.Enabled {
		return &Client{enabled: false}, nil
	}

	if cfg.SMSIR.APIKey == "" {
		return nil, fmt.Errorf("sms.ir API key required when SMS enabled")
	}

	reminder := cfg.SMSIR.ReminderTemplateID
	if reminder == "" {
		reminder = cfg.SMSIR.TemplateID
	}

	return &Client{
		client:             smsir.NewClient().WithAuthentication(cfg.SMSIR.APIKey, cfg.SMSIR.SecretKey),
		enabled:            true,
		reminderTemplateID: reminder,
	}, nil
}

// Reminder is an appointment reminder. The template must declare the
// parameters "title" and "date".
type Reminder struct {
	Phone string
	Title string
	Date  string
}

// SendReminder sends an appointment reminder with the configured template.
// If SMS is disabled, this is a no-op and returns nil.
func (c *Client) SendReminder(ctx context.Context, r Reminder) error {
	if !c.enabled {
		return nil
	}
	return c.send(ctx, r.Phone, c.reminderTemplateID, map[string]string{
		"title": r.Title,
		"date":  r.Date,
	})
}

func (c *Client) send(ctx context.Context, phoneNumber, templateID string, params map[string]string) error {
	if phoneNumber == "" {
		return fmt.Errorf("phone number is required")
	}
	if templateID == "" {
		return fmt.Errorf("template ID is required")
	}

	req := &smsir.UltraFastSendRequest{
		Mobile:     phoneNumber,
		TemplateID: templateID,
	}
	for _, k := range []string{"title", "date"} {
		if v, ok := params[k]; ok {
			req.Parameters = append(req.Parameters, smsir.UltraFastParameter{Key: k, Value: v})
		}
	}

	if _, err := c.client.Verification.UltraFastSend(ctx, req); err != nil {
		return fmt.Errorf("sms.ir send failed: %w", err)
	}

	return nil
}

// IsEnabled returns whether SMS sending is enabled.
func (c *Client) IsEnabled() bool {
	return c.enabled
}
