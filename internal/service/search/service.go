package search

import (
	"context"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/model"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/pregnancy"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/authorize"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/observability"
)

// ---------------------------------------------------------------------------
// Sources
// ---------------------------------------------------------------------------

type PatientLister interface {
	All(ctx context.Context) ([]*model.Patient, error)
}

type TreatmentLister interface {
	List(ctx context.Context, onlyActive bool) ([]*model.Treatment, error)
}

type CompletedTreatmentLister interface {
	All(ctx context.Context) ([]*model.CompletedTreatment, error)
}

type OdontogramLister interface {
	All(ctx context.Context) ([]*model.Odontogram, error)
}

type ConsentLister interface {
	All(ctx context.Context) ([]*model.Consent, error)
}

type PromotionLister interface {
	List(ctx context.Context) ([]*model.Promotion, error)
}

type EventLister interface {
	ListEvents(ctx context.Context, from, to time.Time) ([]model.CalendarEvent, error)
}

// Sources are the collections a search loads. Events may be nil when no
// calendar provider is configured.
type Sources struct {
	Patients            PatientLister
	Treatments          TreatmentLister
	CompletedTreatments CompletedTreatmentLister
	Odontograms         OdontogramLister
	Consents            ConsentLister
	Promotions          PromotionLister
	Events              EventLister
}

// Config bounds the calendar window searched around the clinic's today.
type Config struct {
	EventsBefore time.Duration
	EventsAfter  time.Duration
}

func DefaultConfig() Config {
	return Config{
		EventsBefore: 30 * 24 * time.Hour,
		EventsAfter:  90 * 24 * time.Hour,
	}
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	// Search loads the corpus visible to role and ranks it against query.
	Search(ctx context.Context, role, query string) Results
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type searchService struct {
	src      Sources
	cfg      Config
	metrics  *observability.SearchMetrics
	location *time.Location
	now      func() time.Time
}

// New builds the search service. loc is the clinic timezone; pregnancy
// status and the event window are computed on the clinic's calendar day.
func New(src Sources, cfg Config, metrics *observability.SearchMetrics, loc *time.Location) Service {
	return newService(src, cfg, metrics, loc, time.Now)
}

func newService(src Sources, cfg Config, metrics *observability.SearchMetrics, loc *time.Location, now func() time.Time) *searchService {
	if cfg.EventsBefore <= 0 && cfg.EventsAfter <= 0 {
		cfg = DefaultConfig()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &searchService{src: src, cfg: cfg, metrics: metrics, location: loc, now: now}
}

// eventWindow spans the configured range around midnight of the clinic's
// today, so every search on one day asks for the same window.
func (s *searchService) eventWindow(now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return today.Add(-s.cfg.EventsBefore), today.Add(s.cfg.EventsAfter)
}

func (s *searchService) Search(ctx context.Context, role, query string) Results {
	if Normalize(query) == "" {
		return Results{}
	}

	start := time.Now()
	corpus := s.load(ctx, role)
	res := Search(query, corpus)

	fallback := 0
	for _, m := range res.PatientCentric {
		fallback += m.NameJoined
	}
	if fallback > 0 {
		slog.WarnContext(ctx, "search: completed treatments joined by patient name", "count", fallback)
	}

	s.metrics.ObserveDuration(ctx, time.Since(start))
	for _, g := range res.Groups() {
		s.metrics.AddResults(ctx, g.Name, g.Count)
	}
	return res
}

// load fetches every collection the role can see concurrently. A failing
// fetch is logged and searched as empty.
func (s *searchService) load(ctx context.Context, role string) Corpus {
	caps := authorize.ResolvePermissions(role)
	now := s.now().In(s.location)

	c := Corpus{Pages: visiblePages(role)}
	var wg conc.WaitGroup

	if caps.CanViewPatients {
		wg.Go(func() {
			c.Patients = fetch(ctx, s, "patients", s.src.Patients, func(l PatientLister) ([]*model.Patient, error) {
				return l.All(ctx)
			})
			for _, p := range c.Patients {
				pregnancy.Apply(p, now)
			}
		})
		wg.Go(func() {
			c.Odontograms = fetch(ctx, s, "odontograms", s.src.Odontograms, func(l OdontogramLister) ([]*model.Odontogram, error) {
				return l.All(ctx)
			})
		})
		wg.Go(func() {
			c.Consents = fetch(ctx, s, "consents", s.src.Consents, func(l ConsentLister) ([]*model.Consent, error) {
				return l.All(ctx)
			})
		})
	}
	if caps.CanViewTreatments {
		wg.Go(func() {
			c.Treatments = fetch(ctx, s, "treatments", s.src.Treatments, func(l TreatmentLister) ([]*model.Treatment, error) {
				return l.List(ctx, false)
			})
		})
		wg.Go(func() {
			c.CompletedTreatments = fetch(ctx, s, "completed_treatments", s.src.CompletedTreatments, func(l CompletedTreatmentLister) ([]*model.CompletedTreatment, error) {
				return l.All(ctx)
			})
		})
	}
	if caps.CanViewCalendar {
		wg.Go(func() {
			c.Events = fetch(ctx, s, "events", s.src.Events, func(l EventLister) ([]model.CalendarEvent, error) {
				from, to := s.eventWindow(now)
				return l.ListEvents(ctx, from, to)
			})
		})
	}
	wg.Go(func() {
		c.Promotions = fetch(ctx, s, "promotions", s.src.Promotions, func(l PromotionLister) ([]*model.Promotion, error) {
			return l.List(ctx)
		})
	})

	wg.Wait()
	return c
}

func fetch[L any, T any](ctx context.Context, s *searchService, name string, src L, get func(L) ([]T, error)) []T {
	if any(src) == nil {
		return []T{}
	}
	items, err := get(src)
	if err != nil {
		slog.WarnContext(ctx, "search: collection unavailable", "collection", name, "err", err)
		s.metrics.Degraded(ctx, name)
		return []T{}
	}
	return items
}

func visiblePages(role string) []model.PageDescriptor {
	out := make([]model.PageDescriptor, 0, len(Pages))
	for _, p := range Pages {
		if authorize.CanAccessRoute(role, p.Path) {
			out = append(out, p)
		}
	}
	return out
}
