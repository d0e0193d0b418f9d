package calendar

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/model"
	calpkg "github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/calendar"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/events"
)

// memCache is an in-memory Cache.
type memCache struct {
	data map[string]string
	ttl  map[string]time.Duration
}

func newMemCache() *memCache {
	return &memCache{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (c *memCache) Get(_ context.Context, key string) *goredis.StringCmd {
	v, ok := c.data[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(v, nil)
}

func (c *memCache) Set(_ context.Context, key string, value any, exp time.Duration) *goredis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		c.data[key] = string(v)
	default:
		c.data[key] = fmt.Sprint(v)
	}
	c.ttl[key] = exp
	return goredis.NewStatusResult("OK", nil)
}

func (c *memCache) Incr(_ context.Context, key string) *goredis.IntCmd {
	n, _ := strconv.ParseInt(c.data[key], 10, 64)
	n++
	c.data[key] = strconv.FormatInt(n, 10)
	return goredis.NewIntResult(n, nil)
}

type mockProvider struct{ mock.Mock }

func (m *mockProvider) ListEvents(ctx context.Context, from, to time.Time) ([]model.CalendarEvent, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CalendarEvent), args.Error(1)
}

func (m *mockProvider) GetEvent(ctx context.Context, id string) (*model.CalendarEvent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CalendarEvent), args.Error(1)
}

func (m *mockProvider) CreateEvent(ctx context.Context, e *model.CalendarEvent) (*model.CalendarEvent, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CalendarEvent), args.Error(1)
}

func (m *mockProvider) UpdateEvent(ctx context.Context, id string, e *model.CalendarEvent) (*model.CalendarEvent, error) {
	args := m.Called(ctx, id, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CalendarEvent), args.Error(1)
}

func (m *mockProvider) DeleteEvent(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockConn struct{ mock.Mock }

func (m *mockConn) Publish(subject string, data []byte) error {
	return m.Called(subject, data).Error(0)
}

func (m *mockConn) Subscribe(string, nats.MsgHandler) (*nats.Subscription, error) {
	return nil, nil
}

var (
	from = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to   = time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC)
)

func TestListEvents_CachesWindow(t *testing.T) {
	provider := &mockProvider{}
	cache := newMemCache()
	provider.On("ListEvents", mock.Anything, from, to).
		Return([]model.CalendarEvent{{ID: "e1", Title: "Limpieza"}}, nil).Once()

	svc := New(Deps{Provider: provider, Cache: cache})

	first, err := svc.ListEvents(context.Background(), from, to)
	require.NoError(t, err)
	second, err := svc.ListEvents(context.Background(), from, to)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	provider.AssertNumberOfCalls(t, "ListEvents", 1)
	for _, ttl := range cache.ttl {
		assert.Equal(t, DefaultCacheTTL, ttl)
	}
}

func TestCreateEvent_InvalidatesAndPublishes(t *testing.T) {
	provider := &mockProvider{}
	cache := newMemCache()
	conn := &mockConn{}

	provider.On("ListEvents", mock.Anything, from, to).Return([]model.CalendarEvent{}, nil).Twice()
	provider.On("CreateEvent", mock.Anything, mock.MatchedBy(func(e *model.CalendarEvent) bool {
		return e.Title == "Control" && e.PatientPhone == "+50499998888" &&
			len(e.Attendees) == 1 && e.Attendees[0] == "dra@clinic.hn"
	})).Return(&model.CalendarEvent{ID: "ev-9", Title: "Control", Start: from, End: from.Add(time.Hour)}, nil)
	conn.On("Publish", "diamond.event.created.ev-9", mock.Anything).Return(nil)

	svc := New(Deps{
		Provider: provider,
		Cache:    cache,
		Bus:      events.NewBus(conn),
		Phones:   phoneStub{"9999-8888": "+50499998888"},
	})

	_, err := svc.ListEvents(context.Background(), from, to)
	require.NoError(t, err)

	title, phone := "Control", "9999-8888"
	start, end := from, from.Add(time.Hour)
	created, err := svc.CreateEvent(context.Background(), EventInput{
		Title:        &title,
		Start:        &start,
		End:          &end,
		PatientPhone: &phone,
		Attendees:    []string{" DRA@clinic.hn ", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, "ev-9", created.ID)

	_, err = svc.ListEvents(context.Background(), from, to)
	require.NoError(t, err)

	provider.AssertNumberOfCalls(t, "ListEvents", 2)
	conn.AssertExpectations(t)
}

type phoneStub map[string]string

func (p phoneStub) Normalize(raw string) string {
	if v, ok := p[raw]; ok {
		return v
	}
	return raw
}

func TestCreateEvent_Validation(t *testing.T) {
	svc := New(Deps{Provider: &mockProvider{}})
	title := "Cita"
	start := from

	tests := []struct {
		name string
		in   EventInput
	}{
		{"missing title", EventInput{Start: &start, End: &to}},
		{"missing end", EventInput{Title: &title, Start: &start}},
		{"end before start", EventInput{Title: &title, Start: &to, End: &start}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateEvent(context.Background(), tt.in)
			assert.ErrorIs(t, err, ErrInvalidEvent)
		})
	}
}

func TestDisabledProvider(t *testing.T) {
	svc := New(Deps{})
	assert.False(t, svc.Enabled())

	_, err := svc.ListEvents(context.Background(), from, to)
	assert.ErrorIs(t, err, ErrCalendarDisabled)
	_, err = svc.CreateEvent(context.Background(), EventInput{})
	assert.ErrorIs(t, err, ErrCalendarDisabled)
	assert.ErrorIs(t, svc.DeleteEvent(context.Background(), "x"), ErrCalendarDisabled)
}

func TestListEvents_RejectsBadRange(t *testing.T) {
	svc := New(Deps{Provider: &mockProvider{}})
	_, err := svc.ListEvents(context.Background(), to, from)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestGetEvent_NotFound(t *testing.T) {
	provider := &mockProvider{}
	provider.On("GetEvent", mock.Anything, "gone").Return(nil, calpkg.ErrNotFound)

	_, err := New(Deps{Provider: provider}).GetEvent(context.Background(), "gone")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestToday_UsesClinicDay(t *testing.T) {
	loc := time.FixedZone("CST", -6*3600)
	provider := &mockProvider{}
	dayStart := time.Date(2024, 6, 1, 0, 0, 0, 0, loc)
	provider.On("ListEvents", mock.Anything, dayStart, dayStart.AddDate(0, 0, 1)).
		Return([]model.CalendarEvent{{ID: "a"}}, nil)

	svc := &calendarService{
		Deps: Deps{Provider: provider, Location: loc, CacheTTL: DefaultCacheTTL},
		now:  func() time.Time { return time.Date(2024, 6, 2, 3, 0, 0, 0, time.UTC) },
	}

	items, err := svc.Today(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
