// Package dashboard assembles the landing-page counters for a role.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/model"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/pregnancy"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/calendar"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/authorize"
)

// Counters omits every figure the role may not see or that could not be
// computed.
type Counters struct {
	PatientsTotal     *int `json:"patients_total,omitempty"`
	ActivePregnancies *int `json:"active_pregnancies,omitempty"`
	EventsToday       *int `json:"events_today,omitempty"`
	PendingConsents   *int `json:"pending_consents,omitempty"`
	ActivePromotions  *int `json:"active_promotions,omitempty"`
}

type Overview struct {
	Role         authorize.Role         `json:"role"`
	Capabilities authorize.Capabilities `json:"capabilities"`
	Counters     Counters               `json:"counters"`
}

type Patients interface {
	Count(ctx context.Context) (int, error)
	All(ctx context.Context) ([]*model.Patient, error)
}

type Consents interface {
	CountPending(ctx context.Context) (int, error)
}

type Events interface {
	Today(ctx context.Context) ([]model.CalendarEvent, error)
}

type Promotions interface {
	Active(ctx context.Context) ([]*model.Promotion, error)
}

type Deps struct {
	Patients   Patients
	Consents   Consents
	Events     Events
	Promotions Promotions
	Location   *time.Location
}

type Service interface {
	Overview(ctx context.Context, role string) Overview
}

type dashboardService struct {
	Deps
	now func() time.Time
}

func New(d Deps) Service {
	if d.Location == nil {
		d.Location = time.UTC
	}
	return &dashboardService{Deps: d, now: time.Now}
}

func (s *dashboardService) Overview(ctx context.Context, role string) Overview {
	r := authorize.NormalizeRole(role)
	caps := authorize.ResolvePermissions(string(r))
	out := Overview{Role: r, Capabilities: caps}
	if !caps.CanViewDashboard {
		return out
	}

	c := &out.Counters
	var wg conc.WaitGroup

	if caps.CanViewPatients {
		wg.Go(func() {
			c.PatientsTotal = count(ctx, "patients_total", s.Patients.Count)
		})
		wg.Go(func() {
			c.ActivePregnancies = count(ctx, "active_pregnancies", s.activePregnancies)
		})
		wg.Go(func() {
			c.PendingConsents = count(ctx, "pending_consents", s.Consents.CountPending)
		})
	}
	if caps.CanViewCalendar && s.Events != nil {
		wg.Go(func() {
			c.EventsToday = count(ctx, "events_today", func(ctx context.Context) (int, error) {
				evs, err := s.Events.Today(ctx)
				return len(evs), err
			})
		})
	}
	wg.Go(func() {
		c.ActivePromotions = count(ctx, "active_promotions", func(ctx context.Context) (int, error) {
			ps, err := s.Promotions.Active(ctx)
			return len(ps), err
		})
	})

	wg.Wait()
	return out
}

// activePregnancies recomputes the derived flag instead of trusting the
// stored column.
func (s *dashboardService) activePregnancies(ctx context.Context) (int, error) {
	patients, err := s.Patients.All(ctx)
	if err != nil {
		return 0, err
	}
	today := s.now().In(s.Location)
	n := 0
	for _, p := range patients {
		pregnancy.Apply(p, today)
		if p.EmbarazoActivo {
			n++
		}
	}
	return n, nil
}

func count(ctx context.Context, name string, get func(context.Context) (int, error)) *int {
	n, err := get(ctx)
	if err != nil {
		if !errors.Is(err, calendar.ErrCalendarDisabled) {
			slog.WarnContext(ctx, "dashboard: counter unavailable", "counter", name, "err", err)
		}
		return nil
	}
	return &n
}
