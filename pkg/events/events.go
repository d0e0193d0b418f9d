// Package events publishes and decodes the clinic's NATS events. Subjects are
// "<root>.<id>", e.g. diamond.consent.signed.<consent id>; payloads are JSON.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/constants"
)

// Conn is the part of *nats.Conn the bus uses.
type Conn interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
}

// EventCreated is published after a calendar event is created.
type EventCreated struct {
	EventID      string    `json:"event_id"`
	Title        string    `json:"title"`
	Location     string    `json:"location,omitempty"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	PatientID    string    `json:"patient_id,omitempty"`
	PatientPhone string    `json:"patient_phone,omitempty"`
	Attendees    []string  `json:"attendees,omitempty"`
}

// ConsentSigned is published after a consent form is signed.
type ConsentSigned struct {
	ConsentID   string    `json:"consent_id"`
	PatientID   string    `json:"patient_id"`
	PatientName string    `json:"patient_name"`
	Titulo      string    `json:"titulo"`
	SignedAt    time.Time `json:"signed_at"`
}

// PatientCreated is published after a patient record is created.
type PatientCreated struct {
	PatientID      string `json:"patient_id"`
	NombreCompleto string `json:"nombre_completo"`
}

// Bus publishes domain events. A nil *Bus or a Bus without a connection
// drops events silently, so services work without NATS in tests.
type Bus struct {
	conn Conn
}

func NewBus(conn Conn) *Bus {
	return &Bus{conn: conn}
}

func (b *Bus) EventCreated(ctx context.Context, e EventCreated) {
	b.publish(ctx, constants.SubjectEventCreated, e.EventID, e)
}

func (b *Bus) ConsentSigned(ctx context.Context, e ConsentSigned) {
	b.publish(ctx, constants.SubjectConsentSigned, e.ConsentID, e)
}

func (b *Bus) PatientCreated(ctx context.Context, e PatientCreated) {
	b.publish(ctx, constants.SubjectPatientCreated, e.PatientID, e)
}

// publish is best effort: a failed publish is logged, never returned, since
// the write that produced the event has already been committed.
func (b *Bus) publish(ctx context.Context, root, id string, payload any) {
	if b == nil || b.conn == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		slog.ErrorContext(ctx, "events: marshal failed", "subject", root, "err", err)
		return
	}
	subject := Subject(root, id)
	if err := b.conn.Publish(subject, data); err != nil {
		slog.WarnContext(ctx, "events: publish failed", "subject", subject, "err", err)
	}
}

// Subject returns root.id.
func Subject(root, id string) string {
	return root + "." + id
}

// Wildcard returns the subscription subject matching every id under root.
func Wildcard(root string) string {
	return root + ".*"
}

// IDFromSubject returns the trailing token of a subject published under root.
func IDFromSubject(root, subject string) (string, bool) {
	id, ok := strings.CutPrefix(subject, root+".")
	if !ok || id == "" || strings.Contains(id, ".") {
		return "", false
	}
	return id, true
}

// Decode unmarshals the JSON payload of msg into T.
func Decode[T any](msg *nats.Msg) (T, error) {
	var v T
	if err := json.Unmarshal(msg.Data, &v); err != nil {
		return v, fmt.Errorf("events: decode %s: %w", msg.Subject, err)
	}
	return v, nil
}
