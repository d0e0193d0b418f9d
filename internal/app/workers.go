package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/model"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/notification"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/store"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/authorize"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/constants"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/email"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/events"
	svcsms "github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/sms"
)

// WorkerModule registers all NATS event workers.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc       fx.Lifecycle
	NC       *nats.Conn `optional:"true"`
	DB       *store.Client
	NotifSvc notification.Service
	Email    *email.Client
	SMS      *svcsms.Client
	Location *time.Location
}

func RegisterWorkers(p WorkerParams) {
	if p.NC == nil {
		return
	}
	w := &workers{
		notify:   p.NotifSvc,
		mail:     p.Email,
		sms:      p.SMS,
		users:    p.DB.User,
		location: p.Location,
	}
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			w.start(p.NC)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			// Drain handled by ProvideNatsClient
			return nil
		},
	})
}

// ---------------------------------------------------------------------------
// Dependencies
// ---------------------------------------------------------------------------

type roleNotifier interface {
	NotifyRole(ctx context.Context, role string, n notification.RoleNotice) (int, error)
}

type mailer interface {
	Enabled() bool
	ClinicName() string
	Send(ctx context.Context, m email.Message) error
}

type reminderSender interface {
	IsEnabled() bool
	SendReminder(ctx context.Context, r svcsms.Reminder) error
}

type roleDirectory interface {
	ListByRole(ctx context.Context, role string) ([]*model.User, error)
}

type subscriber interface {
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
}

type workers struct {
	notify   roleNotifier
	mail     mailer
	sms      reminderSender
	users    roleDirectory
	location *time.Location
}

func (w *workers) start(nc subscriber) {
	subs := []struct {
		subject string
		handle  func(context.Context, *nats.Msg)
	}{
		{events.Wildcard(constants.SubjectEventCreated), w.onEventCreated},
		{events.Wildcard(constants.SubjectConsentSigned), w.onConsentSigned},
		{events.Wildcard(constants.SubjectPatientCreated), w.onPatientCreated},
	}
	for _, s := range subs {
		handle := s.handle
		if _, err := nc.Subscribe(s.subject, func(msg *nats.Msg) {
			handle(context.Background(), msg)
		}); err != nil {
			slog.Error("workers: subscribe failed", "subject", s.subject, "err", err)
		}
	}
	slog.Info("workers: started")
}

// ---------------------------------------------------------------------------
// diamond.event.created
// ---------------------------------------------------------------------------

func (w *workers) onEventCreated(ctx context.Context, msg *nats.Msg) {
	ev, err := events.Decode[events.EventCreated](msg)
	if err != nil {
		w.dropPayload(msg, err)
		return
	}
	start := ev.Start.In(w.location)

	w.notifyRole(ctx, authorize.RoleDoctor, notification.RoleNotice{
		Type:  notification.TypeEventCreated,
		Title: "Nueva cita: " + ev.Title,
		Body:  start.Format("02/01/2006 15:04"),
		Data:  map[string]any{"event_id": ev.EventID},
	})

	if len(ev.Attendees) > 0 && w.mail.Enabled() {
		m := email.BuildAppointmentEmail(email.AppointmentEmailData{
			ClinicName: w.mail.ClinicName(),
			To:         ev.Attendees,
			Title:      ev.Title,
			Location:   ev.Location,
			Start:      start,
			End:        ev.End.In(w.location),
		})
		if err := w.mail.Send(ctx, m); err != nil {
			slog.Warn("workers: appointment email failed", "event_id", ev.EventID, "err", err)
		}
	}

	if ev.PatientPhone != "" && w.sms.IsEnabled() {
		err := w.sms.SendReminder(ctx, svcsms.Reminder{
			Phone: ev.PatientPhone,
			Title: ev.Title,
			Date:  start.Format("02/01/2006 15:04"),
		})
		if err != nil {
			slog.Warn("workers: sms reminder failed", "event_id", ev.EventID, "err", err)
		}
	}
}

// ---------------------------------------------------------------------------
// diamond.consent.signed
// ---------------------------------------------------------------------------

func (w *workers) onConsentSigned(ctx context.Context, msg *nats.Msg) {
	ev, err := events.Decode[events.ConsentSigned](msg)
	if err != nil {
		w.dropPayload(msg, err)
		return
	}

	w.notifyRole(ctx, authorize.RoleAdmin, notification.RoleNotice{
		Type:  notification.TypeConsentSigned,
		Title: "Consentimiento firmado",
		Body:  fmt.Sprintf("%s firmó \"%s\"", ev.PatientName, ev.Titulo),
		Data:  map[string]any{"consent_id": ev.ConsentID, "patient_id": ev.PatientID},
	})

	if !w.mail.Enabled() {
		return
	}
	admins, err := w.users.ListByRole(ctx, string(authorize.RoleAdmin))
	if err != nil {
		slog.Warn("workers: list admins failed", "err", err)
		return
	}
	to := make([]string, 0, len(admins))
	for _, u := range admins {
		if u.Email != "" {
			to = append(to, u.Email)
		}
	}
	if len(to) == 0 {
		return
	}
	m := email.BuildConsentSignedEmail(w.mail.ClinicName(), to, ev.PatientName, ev.Titulo, ev.SignedAt.In(w.location))
	if err := w.mail.Send(ctx, m); err != nil {
		slog.Warn("workers: consent email failed", "consent_id", ev.ConsentID, "err", err)
	}
}

// ---------------------------------------------------------------------------
// diamond.patient.created
// ---------------------------------------------------------------------------

func (w *workers) onPatientCreated(ctx context.Context, msg *nats.Msg) {
	ev, err := events.Decode[events.PatientCreated](msg)
	if err != nil {
		w.dropPayload(msg, err)
		return
	}
	w.notifyRole(ctx, authorize.RoleStaff, notification.RoleNotice{
		Type:  notification.TypePatientCreated,
		Title: "Nuevo paciente",
		Body:  ev.NombreCompleto,
		Data:  map[string]any{"patient_id": ev.PatientID},
	})
}

// eventRoots are the subject roots the workers subscribe under.
var eventRoots = []string{
	constants.SubjectEventCreated,
	constants.SubjectConsentSigned,
	constants.SubjectPatientCreated,
}

func (w *workers) dropPayload(msg *nats.Msg, err error) {
	for _, root := range eventRoots {
		if id, ok := events.IDFromSubject(root, msg.Subject); ok {
			slog.Warn("workers: dropping bad payload", "subject", root, "id", id, "err", err)
			return
		}
	}
	slog.Warn("workers: dropping bad payload", "subject", msg.Subject, "err", err)
}

func (w *workers) notifyRole(ctx context.Context, role authorize.Role, n notification.RoleNotice) {
	created, err := w.notify.NotifyRole(ctx, string(role), n)
	if err != nil {
		slog.Warn("workers: notify role failed", "role", role, "type", n.Type, "created", created, "err", err)
		return
	}
	slog.Debug("workers: notified role", "role", role, "type", n.Type, "created", created)
}
