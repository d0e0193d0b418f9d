package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingConn struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (r *recordingConn) Publish(subject string, data []byte) error {
	r.subjects = append(r.subjects, subject)
	r.payloads = append(r.payloads, data)
	return r.err
}

func (r *recordingConn) Subscribe(string, nats.MsgHandler) (*nats.Subscription, error) {
	return nil, nil
}

func TestBusPublishesUnderSubject(t *testing.T) {
	conn := &recordingConn{}
	bus := NewBus(conn)
	start := time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)

	bus.EventCreated(context.Background(), EventCreated{EventID: "evt1", Title: "Limpieza", Start: start})

	require.Len(t, conn.subjects, 1)
	assert.Equal(t, "diamond.event.created.evt1", conn.subjects[0])

	got, err := Decode[EventCreated](&nats.Msg{Subject: conn.subjects[0], Data: conn.payloads[0]})
	require.NoError(t, err)
	assert.Equal(t, "Limpieza", got.Title)
	assert.True(t, start.Equal(got.Start))
}

func TestBusSwallowsPublishErrors(t *testing.T) {
	conn := &recordingConn{err: errors.New("nats down")}
	NewBus(conn).ConsentSigned(context.Background(), ConsentSigned{ConsentID: "c1"})
	assert.Equal(t, []string{"diamond.consent.signed.c1"}, conn.subjects)
}

func TestNilBus(t *testing.T) {
	var bus *Bus
	bus.PatientCreated(context.Background(), PatientCreated{PatientID: "p1"})
	NewBus(nil).PatientCreated(context.Background(), PatientCreated{PatientID: "p1"})
}

func TestIDFromSubject(t *testing.T) {
	tests := []struct {
		subject string
		want    string
		ok      bool
	}{
		{"diamond.patient.created.abc", "abc", true},
		{"diamond.patient.created.", "", false},
		{"diamond.patient.created.a.b", "", false},
		{"diamond.event.created.abc", "", false},
	}
	for _, tt := range tests {
		id, ok := IDFromSubject("diamond.patient.created", tt.subject)
		assert.Equal(t, tt.want, id, tt.subject)
		assert.Equal(t, tt.ok, ok, tt.subject)
	}
	assert.Equal(t, "diamond.patient.created.*", Wildcard("diamond.patient.created"))
}

func TestDecodeError(t *testing.T) {
	_, err := Decode[PatientCreated](&nats.Msg{Subject: "x", Data: []byte("{")})
	assert.Error(t, err)
}
