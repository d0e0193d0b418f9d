// Package calendar is a client for a Google-Calendar-compatible events API.
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/model"
)

// Client talks to one calendar. Every request waits on a shared rate
// limiter before it is sent.
type Client struct {
	base       string
	calendarID string
	http       *http.Client
	limiter    *rate.Limiter
	loc        *time.Location
}

type Option func(*Client)

// WithHTTPClient replaces the OAuth2 client, e.g. in tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLocation sets the zone all-day events are placed in.
func WithLocation(loc *time.Location) Option {
	return func(c *Client) { c.loc = loc }
}

func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.CalendarID == "" {
		return nil, ErrNotConfigured
	}

	c := &Client{
		base:       strings.TrimRight(cfg.BaseURL, "/"),
		calendarID: cfg.CalendarID,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSec), max(cfg.Burst, 1)),
		loc:        time.UTC,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		if cfg.RefreshToken == "" {
			return nil, ErrNotConfigured
		}
		oc := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: cfg.TokenURL},
		}
		c.http = oc.Client(context.Background(), &oauth2.Token{RefreshToken: cfg.RefreshToken})
		c.http.Timeout = cfg.Timeout
	}

	return c, nil
}

func (c *Client) eventsURL(id string) string {
	u := c.base + "/calendars/" + url.PathEscape(c.calendarID) + "/events"
	if id != "" {
		u += "/" + url.PathEscape(id)
	}
	return u
}

// ListEvents returns the single (expanded) events starting in [from, to),
// ordered by start time. All result pages are read.
func (c *Client) ListEvents(ctx context.Context, from, to time.Time) ([]model.CalendarEvent, error) {
	var out []model.CalendarEvent
	pageToken := ""
	for {
		q := url.Values{}
		q.Set("timeMin", from.Format(time.RFC3339))
		q.Set("timeMax", to.Format(time.RFC3339))
		q.Set("singleEvents", "true")
		q.Set("orderBy", "startTime")
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}

		var list eventList
		if err := c.do(ctx, http.MethodGet, c.eventsURL("")+"?"+q.Encode(), nil, &list); err != nil {
			return nil, err
		}
		for _, w := range list.Items {
			out = append(out, fromWire(w, c.loc))
		}
		if list.NextPageToken == "" {
			return out, nil
		}
		pageToken = list.NextPageToken
	}
}

func (c *Client) GetEvent(ctx context.Context, id string) (*model.CalendarEvent, error) {
	var w wireEvent
	if err := c.do(ctx, http.MethodGet, c.eventsURL(id), nil, &w); err != nil {
		return nil, err
	}
	e := fromWire(w, c.loc)
	return &e, nil
}

func (c *Client) CreateEvent(ctx context.Context, e *model.CalendarEvent) (*model.CalendarEvent, error) {
	var w wireEvent
	if err := c.do(ctx, http.MethodPost, c.eventsURL(""), toWire(e), &w); err != nil {
		return nil, err
	}
	created := fromWire(w, c.loc)
	return &created, nil
}

// UpdateEvent patches the event with every field of e.
func (c *Client) UpdateEvent(ctx context.Context, id string, e *model.CalendarEvent) (*model.CalendarEvent, error) {
	var w wireEvent
	if err := c.do(ctx, http.MethodPatch, c.eventsURL(id), toWire(e), &w); err != nil {
		return nil, err
	}
	updated := fromWire(w, c.loc)
	return &updated, nil
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.eventsURL(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, u string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("calendar: rate limit: %w", err)
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calendar: %s: %w", method, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return ErrNotFound
	case resp.StatusCode >= 300:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return ErrProvider{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("calendar: decode response: %w", err)
	}
	return nil
}
