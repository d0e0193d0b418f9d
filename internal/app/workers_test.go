package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/model"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/notification"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/constants"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/email"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/events"
	svcsms "github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/sms"
)

type notifyCall struct {
	role   string
	notice notification.RoleNotice
}

type fakeNotifier struct {
	calls []notifyCall
	err   error
}

func (f *fakeNotifier) NotifyRole(_ context.Context, role string, n notification.RoleNotice) (int, error) {
	f.calls = append(f.calls, notifyCall{role, n})
	return 1, f.err
}

type fakeMailer struct {
	enabled bool
	sent    []email.Message
}

func (f *fakeMailer) Enabled() bool      { return f.enabled }
func (f *fakeMailer) ClinicName() string { return "Diamond Link" }
func (f *fakeMailer) Send(_ context.Context, m email.Message) error {
	f.sent = append(f.sent, m)
	return nil
}

type fakeSMS struct {
	disabled bool
	sent     []svcsms.Reminder
}

func (f *fakeSMS) IsEnabled() bool { return !f.disabled }

func (f *fakeSMS) SendReminder(_ context.Context, r svcsms.Reminder) error {
	f.sent = append(f.sent, r)
	return nil
}

type fakeDirectory struct {
	users map[string][]*model.User
}

func (f *fakeDirectory) ListByRole(_ context.Context, role string) ([]*model.User, error) {
	return f.users[role], nil
}

type recordingSubscriber struct {
	subjects []string
}

func (r *recordingSubscriber) Subscribe(subject string, _ nats.MsgHandler) (*nats.Subscription, error) {
	r.subjects = append(r.subjects, subject)
	return nil, nil
}

func newTestWorkers(mailOn bool) (*workers, *fakeNotifier, *fakeMailer, *fakeSMS) {
	n := &fakeNotifier{}
	m := &fakeMailer{enabled: mailOn}
	s := &fakeSMS{}
	dir := &fakeDirectory{users: map[string][]*model.User{
		"admin": {{ID: uuid.New(), Email: "owner@diamond.hn"}, {ID: uuid.New()}},
	}}
	tz := time.FixedZone("CST", -6*60*60)
	return &workers{notify: n, mail: m, sms: s, users: dir, location: tz}, n, m, s
}

func msgFor(t *testing.T, root, id string, payload any) *nats.Msg {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return &nats.Msg{Subject: events.Subject(root, id), Data: data}
}

func TestWorkersSubscribeToEveryRoot(t *testing.T) {
	w, _, _, _ := newTestWorkers(false)
	sub := &recordingSubscriber{}

	w.start(sub)

	assert.ElementsMatch(t, []string{
		"diamond.event.created.*",
		"diamond.consent.signed.*",
		"diamond.patient.created.*",
	}, sub.subjects)
}

func TestOnEventCreated(t *testing.T) {
	start := time.Date(2024, 3, 4, 16, 30, 0, 0, time.UTC)

	t.Run("notifies doctors, emails attendees and texts the patient", func(t *testing.T) {
		w, n, m, s := newTestWorkers(true)
		msg := msgFor(t, constants.SubjectEventCreated, "evt1", events.EventCreated{
			EventID:      "evt1",
			Title:        "Limpieza",
			Start:        start,
			End:          start.Add(time.Hour),
			PatientPhone: "+50499990000",
			Attendees:    []string{"dr@diamond.hn"},
		})

		w.onEventCreated(context.Background(), msg)

		require.Len(t, n.calls, 1)
		assert.Equal(t, "doctor", n.calls[0].role)
		assert.Equal(t, notification.TypeEventCreated, n.calls[0].notice.Type)
		assert.Equal(t, "04/03/2024 10:30", n.calls[0].notice.Body)

		require.Len(t, m.sent, 1)
		assert.Equal(t, []string{"dr@diamond.hn"}, m.sent[0].To)

		require.Len(t, s.sent, 1)
		assert.Equal(t, "+50499990000", s.sent[0].Phone)
		assert.Equal(t, "04/03/2024 10:30", s.sent[0].Date)
	})

	t.Run("skips email and sms when not applicable", func(t *testing.T) {
		w, n, m, s := newTestWorkers(false)
		msg := msgFor(t, constants.SubjectEventCreated, "evt2", events.EventCreated{
			EventID:   "evt2",
			Title:     "Control",
			Start:     start,
			Attendees: []string{"dr@diamond.hn"},
		})

		w.onEventCreated(context.Background(), msg)

		assert.Len(t, n.calls, 1)
		assert.Empty(t, m.sent)
		assert.Empty(t, s.sent)
	})

	t.Run("bad payload is dropped", func(t *testing.T) {
		w, n, _, _ := newTestWorkers(true)

		w.onEventCreated(context.Background(), &nats.Msg{Subject: "diamond.event.created.x", Data: []byte("{")})

		assert.Empty(t, n.calls)
	})

	t.Run("sms disabled", func(t *testing.T) {
		w, _, _, s := newTestWorkers(false)
		s.disabled = true
		msg := msgFor(t, constants.SubjectEventCreated, "evt3", events.EventCreated{
			EventID:      "evt3",
			Start:        start,
			PatientPhone: "+50499990000",
		})

		w.onEventCreated(context.Background(), msg)

		assert.Empty(t, s.sent)
	})
}

func TestOnConsentSignedEmailsAdminsWithAddress(t *testing.T) {
	w, n, m, _ := newTestWorkers(true)
	msg := msgFor(t, constants.SubjectConsentSigned, "c1", events.ConsentSigned{
		ConsentID:   "c1",
		PatientName: "Ana López",
		Titulo:      "Extracción",
		SignedAt:    time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC),
	})

	w.onConsentSigned(context.Background(), msg)

	require.Len(t, n.calls, 1)
	assert.Equal(t, "admin", n.calls[0].role)
	require.Len(t, m.sent, 1)
	assert.Equal(t, []string{"owner@diamond.hn"}, m.sent[0].To)
	assert.Contains(t, m.sent[0].TextBody, "04/03/2024 06:00")
}

func TestOnPatientCreatedNotifiesStaffEvenOnPartialFailure(t *testing.T) {
	w, n, _, _ := newTestWorkers(false)
	n.err = errors.New("one insert failed")
	msg := msgFor(t, constants.SubjectPatientCreated, "p1", events.PatientCreated{
		PatientID:      "p1",
		NombreCompleto: "Ana López",
	})

	w.onPatientCreated(context.Background(), msg)

	require.Len(t, n.calls, 1)
	assert.Equal(t, "staff", n.calls[0].role)
	assert.Equal(t, "Ana López", n.calls[0].notice.Body)
}
