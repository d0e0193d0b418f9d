package calendar

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/config"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.CalendarID = "clinic@example.com"
	cfg.RatePerSec = 1000

	c, err := New(cfg, WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func TestListEventsFollowsPages(t *testing.T) {
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/calendars/clinic@example.com/events", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("singleEvents"))
		assert.Equal(t, "2024-03-04T00:00:00Z", r.URL.Query().Get("timeMin"))

		if r.URL.Query().Get("pageToken") == "" {
			json.NewEncoder(w).Encode(eventList{
				Items: []wireEvent{{
					ID:      "a",
					Summary: "Limpieza",
					Start:   eventTime{DateTime: "2024-03-05T09:30:00-06:00"},
					End:     eventTime{DateTime: "2024-03-05T10:15:00-06:00"},
					ExtendedProperties: &extendedProperties{Private: map[string]string{
						propPatientPhone: "+50499998888",
					}},
				}},
				NextPageToken: "p2",
			})
			return
		}
		json.NewEncoder(w).Encode(eventList{Items: []wireEvent{{
			ID:      "b",
			Summary: "Feriado",
			Start:   eventTime{Date: "2024-03-06"},
			End:     eventTime{Date: "2024-03-07"},
		}}})
	})

	from := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	events, err := c.ListEvents(t.Context(), from, from.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "+50499998888", events[0].PatientPhone)
	assert.Equal(t, 15, events[0].Start.UTC().Hour())
	assert.Equal(t, time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), events[1].Start)
}

func TestCreateEventSendsProviderShape(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var got wireEvent
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "Control", got.Summary)
		assert.Equal(t, "p1", got.ExtendedProperties.Private[propPatientID])
		assert.Equal(t, []attendee{{Email: "dr@example.com"}}, got.Attendees)

		got.ID = "new-id"
		json.NewEncoder(w).Encode(got)
	})

	start := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	created, err := c.CreateEvent(t.Context(), &model.CalendarEvent{
		Title:     "Control",
		Start:     start,
		End:       start.Add(30 * time.Minute),
		PatientID: "p1",
		Attendees: []string{"dr@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, "new-id", created.ID)
	assert.Equal(t, "p1", created.PatientID)
}

func TestErrorMapping(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			w.WriteHeader(http.StatusGone)
		default:
			http.Error(w, "quota", http.StatusTooManyRequests)
		}
	})

	assert.ErrorIs(t, c.DeleteEvent(t.Context(), "x"), ErrNotFound)

	_, err := c.GetEvent(t.Context(), "x")
	var perr ErrProvider
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, http.StatusTooManyRequests, perr.Status)
	assert.Equal(t, "quota", perr.Body)
}

func TestNewRequiresCalendar(t *testing.T) {
	_, err := New(DefaultConfig())
	assert.ErrorIs(t, err, ErrNotConfigured)

	cfg := FromCentralConfig(config.CalendarConfig{CalendarID: "c"})
	_, err = New(cfg)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestFromCentralConfigDefaults(t *testing.T) {
	cfg := FromCentralConfig(config.CalendarConfig{CalendarID: "c", Burst: 3})
	assert.Equal(t, defaultBaseURL, cfg.BaseURL)
	assert.Equal(t, 3, cfg.Burst)
	assert.Equal(t, 5.0, cfg.RatePerSec)
}
