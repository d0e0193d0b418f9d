// Package calendar fronts the external calendar provider with a short-lived
// Redis cache and publishes an event for every appointment created.
package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/model"
	calpkg "github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/calendar"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/events"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/redis"
)

// DefaultCacheTTL bounds how stale a cached event window may be.
const DefaultCacheTTL = 60 * time.Second

// maxWindow bounds a single list request.
const maxWindow = 366 * 24 * time.Hour

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type EventInput struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Location     *string    `json:"location"`
	Start        *time.Time `json:"start"`
	End          *time.Time `json:"end"`
	PatientID    *string    `json:"patient_id"`
	PatientPhone *string    `json:"patient_phone"`
	Attendees    []string   `json:"attendees"`
}

// ---------------------------------------------------------------------------
// Dependencies
// ---------------------------------------------------------------------------

// Provider is the external calendar, implemented by *calendar.Client.
type Provider interface {
	ListEvents(ctx context.Context, from, to time.Time) ([]model.CalendarEvent, error)
	GetEvent(ctx context.Context, id string) (*model.CalendarEvent, error)
	CreateEvent(ctx context.Context, e *model.CalendarEvent) (*model.CalendarEvent, error)
	UpdateEvent(ctx context.Context, id string, e *model.CalendarEvent) (*model.CalendarEvent, error)
	DeleteEvent(ctx context.Context, id string) error
}

// Cache is the subset of go-redis used for event windows.
type Cache interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
	Incr(ctx context.Context, key string) *goredis.IntCmd
}

// PhoneNormalizer canonicalises patient phones before they reach the
// provider and the SMS worker.
type PhoneNormalizer interface {
	Normalize(raw string) string
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Enabled() bool
	ListEvents(ctx context.Context, from, to time.Time) ([]model.CalendarEvent, error)
	// Today lists the events of the current clinic day.
	Today(ctx context.Context) ([]model.CalendarEvent, error)
	GetEvent(ctx context.Context, id string) (*model.CalendarEvent, error)
	CreateEvent(ctx context.Context, in EventInput) (*model.CalendarEvent, error)
	UpdateEvent(ctx context.Context, id string, in EventInput) (*model.CalendarEvent, error)
	DeleteEvent(ctx context.Context, id string) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type Deps struct {
	// Provider is nil when no calendar is configured.
	Provider Provider
	Cache    Cache
	Bus      *events.Bus
	Phones   PhoneNormalizer
	Location *time.Location
	CacheTTL time.Duration
}

type calendarService struct {
	Deps
	now func() time.Time
}

func New(d Deps) Service {
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.CacheTTL <= 0 {
		d.CacheTTL = DefaultCacheTTL
	}
	return &calendarService{Deps: d, now: time.Now}
}

// Cached windows live under a generation number; bumping the generation
// invalidates every window at once and lets the old keys expire.
var generationKey = redis.Key("calendar", "generation")

func windowKey(gen int64, from, to time.Time) string {
	return redis.Key("calendar", "events", strconv.FormatInt(gen, 10),
		strconv.FormatInt(from.Unix(), 10), strconv.FormatInt(to.Unix(), 10))
}

func (s *calendarService) Enabled() bool {
	return s.Provider != nil
}

func (s *calendarService) ListEvents(ctx context.Context, from, to time.Time) ([]model.CalendarEvent, error) {
	if s.Provider == nil {
		return nil, ErrCalendarDisabled
	}
	if !to.After(from) || to.Sub(from) > maxWindow {
		return nil, ErrInvalidRange
	}

	key, cacheable := s.windowKey(ctx, from, to)
	if cacheable {
		if cached, ok := s.cached(ctx, key); ok {
			return cached, nil
		}
	}

	items, err := s.Provider.ListEvents(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if items == nil {
		items = []model.CalendarEvent{}
	}
	if cacheable {
		s.store(ctx, key, items)
	}
	return items, nil
}

func (s *calendarService) Today(ctx context.Context) ([]model.CalendarEvent, error) {
	now := s.now().In(s.Location)
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, s.Location)
	return s.ListEvents(ctx, start, start.AddDate(0, 0, 1))
}

func (s *calendarService) GetEvent(ctx context.Context, id string) (*model.CalendarEvent, error) {
	if s.Provider == nil {
		return nil, ErrCalendarDisabled
	}
	e, err := s.Provider.GetEvent(ctx, id)
	if err != nil {
		if errors.Is(err, calpkg.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

func (s *calendarService) CreateEvent(ctx context.Context, in EventInput) (*model.CalendarEvent, error) {
	if s.Provider == nil {
		return nil, ErrCalendarDisabled
	}
	e := &model.CalendarEvent{}
	if err := s.apply(e, in); err != nil {
		return nil, err
	}

	created, err := s.Provider.CreateEvent(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.invalidate(ctx)

	s.Bus.EventCreated(ctx, events.EventCreated{
		EventID:      created.ID,
		Title:        created.Title,
		Location:     created.Location,
		Start:        created.Start,
		End:          created.End,
		PatientID:    e.PatientID,
		PatientPhone: e.PatientPhone,
		Attendees:    e.Attendees,
	})
	return created, nil
}

func (s *calendarService) UpdateEvent(ctx context.Context, id string, in EventInput) (*model.CalendarEvent, error) {
	e, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(e, in); err != nil {
		return nil, err
	}
	updated, err := s.Provider.UpdateEvent(ctx, id, e)
	if err != nil {
		if errors.Is(err, calpkg.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *calendarService) DeleteEvent(ctx context.Context, id string) error {
	if s.Provider == nil {
		return ErrCalendarDisabled
	}
	if err := s.Provider.DeleteEvent(ctx, id); err != nil {
		if errors.Is(err, calpkg.ErrNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

// apply merges in onto e and validates the result.
func (s *calendarService) apply(e *model.CalendarEvent, in EventInput) error {
	if in.Title != nil {
		e.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		e.Description = strings.TrimSpace(*in.Description)
	}
	if in.Location != nil {
		e.Location = strings.TrimSpace(*in.Location)
	}
	if in.Start != nil {
		e.Start = *in.Start
	}
	if in.End != nil {
		e.End = *in.End
	}
	if in.PatientID != nil {
		e.PatientID = strings.TrimSpace(*in.PatientID)
	}
	if in.PatientPhone != nil {
		e.PatientPhone = strings.TrimSpace(*in.PatientPhone)
		if s.Phones != nil {
			e.PatientPhone = s.Phones.Normalize(e.PatientPhone)
		}
	}
	if in.Attendees != nil {
		e.Attendees = e.Attendees[:0]
		for _, a := range in.Attendees {
			if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
				e.Attendees = append(e.Attendees, a)
			}
		}
	}

	switch {
	case e.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidEvent)
	case e.Start.IsZero() || e.End.IsZero():
		return fmt.Errorf("%w: start and end are required", ErrInvalidEvent)
	case !e.End.After(e.Start):
		return fmt.Errorf("%w: end must be after start", ErrInvalidEvent)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Cache
// ---------------------------------------------------------------------------

// Cache failures only cost a provider round trip, so they are logged and
// otherwise ignored.

func (s *calendarService) windowKey(ctx context.Context, from, to time.Time) (string, bool) {
	if s.Cache == nil {
		return "", false
	}
	gen, err := s.Cache.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, goredis.Nil) {
		slog.WarnContext(ctx, "calendar cache read failed", "error", err)
		return "", false
	}
	return windowKey(gen, from, to), true
}

func (s *calendarService) cached(ctx context.Context, key string) ([]model.CalendarEvent, bool) {
	raw, err := s.Cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			slog.WarnContext(ctx, "calendar cache read failed", "error", err)
		}
		return nil, false
	}
	var items []model.CalendarEvent
	if err := json.Unmarshal(raw, &items); err != nil {
		slog.WarnContext(ctx, "calendar cache entry unreadable", "key", key, "error", err)
		return nil, false
	}
	return items, true
}

func (s *calendarService) store(ctx context.Context, key string, items []model.CalendarEvent) {
	raw, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := s.Cache.Set(ctx, key, raw, s.CacheTTL).Err(); err != nil {
		slog.WarnContext(ctx, "calendar cache write failed", "error", err)
	}
}

func (s *calendarService) invalidate(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Incr(ctx, generationKey).Err(); err != nil {
		slog.WarnContext(ctx, "calendar cache invalidation failed", "error", err)
	}
}
