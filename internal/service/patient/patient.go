package patient

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/model"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/pregnancy"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/search"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/store"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/events"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/util/phone"
)

// File kinds accepted by AttachFile.
const (
	KindArchivo     = "archivo"
	KindRadiografia = "radiografia"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type PaginatedResult[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
}

type ListPatientsRequest struct {
	Page     int
	PerPage  int
	Query    string
	Pregnant bool
}

// ---------------------------------------------------------------------------
// Repositories
// ---------------------------------------------------------------------------

type Repository interface {
	Create(ctx context.Context, p *model.Patient) error
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	List(ctx context.Context, f store.PatientFilter) ([]*model.Patient, int, error)
	Update(ctx context.Context, p *model.Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CompletedTreatmentRepository interface {
	ListByPatient(ctx context.Context, patientID uuid.UUID, patientName string) ([]*model.CompletedTreatment, error)
}

type OdontogramRepository interface {
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Odontogram, error)
}

type ConsentRepository interface {
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Consent, error)
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, in Input) (*model.Patient, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	List(ctx context.Context, req ListPatientsRequest) (*PaginatedResult[*model.Patient], error)
	Update(ctx context.Context, id uuid.UUID, in Input) (*model.Patient, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Pregnancy returns the pregnancy status computed for today.
	Pregnancy(ctx context.Context, id uuid.UUID) (pregnancy.Status, error)
	// Summary returns the patient with its clinical records.
	Summary(ctx context.Context, id uuid.UUID) (*search.PatientMatch, error)

	AttachFile(ctx context.Context, id uuid.UUID, kind, key string) (*model.Patient, error)
	DetachFile(ctx context.Context, id uuid.UUID, key string) (*model.Patient, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type Deps struct {
	Patients            Repository
	CompletedTreatments CompletedTreatmentRepository
	Odontograms         OdontogramRepository
	Consents            ConsentRepository
	Phones              *phone.Normalizer
	Bus                 *events.Bus
	Location            *time.Location
}

type patientService struct {
	Deps
	now func() time.Time
}

func New(d Deps) Service {
	if d.Location == nil {
		d.Location = time.UTC
	}
	return &patientService{Deps: d, now: time.Now}
}

// today is now in the clinic's time zone, so pregnancy day counts follow
// the clinic calendar.
func (s *patientService) today() time.Time {
	return s.now().In(s.Location)
}

func (s *patientService) Create(ctx context.Context, in Input) (*model.Patient, error) {
	if err := in.Normalize(s.Phones); err != nil {
		return nil, err
	}
	if in.NombreCompleto == nil || *in.NombreCompleto == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, ErrNameRequired)
	}

	now := s.now().UTC()
	p := &model.Patient{
		ID:               uuid.New(),
		ArchivosURLs:     []string{},
		RadiografiasURLs: []string{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	in.applyTo(p)
	if p.Codigo == "" {
		p.Codigo = newCode(p.ID)
	}
	pregnancy.Apply(p, s.today())

	if err := s.Patients.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}

	s.Bus.PatientCreated(ctx, events.PatientCreated{
		PatientID:      p.ID.String(),
		NombreCompleto: p.NombreCompleto,
	})
	return p, nil
}

func (s *patientService) GetByID(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	p, err := s.Patients.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}
	pregnancy.Apply(p, s.today())
	return p, nil
}

func (s *patientService) List(ctx context.Context, req ListPatientsRequest) (*PaginatedResult[*model.Patient], error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 || req.PerPage > 100 {
		req.PerPage = 20
	}

	if req.Pregnant {
		return s.listPregnant(ctx, req)
	}

	items, total, err := s.Patients.List(ctx, store.PatientFilter{
		Query: strings.TrimSpace(req.Query),
		Page:  store.Page{Limit: req.PerPage, Offset: (req.Page - 1) * req.PerPage},
	})
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}

	today := s.today()
	for _, p := range items {
		pregnancy.Apply(p, today)
	}
	return paginated(items, total, req), nil
}

// listPregnant returns patients whose pregnancy is active today. Activity is
// derived, so every row with a pregnancy record is loaded and the page is
// cut after filtering.
func (s *patientService) listPregnant(ctx context.Context, req ListPatientsRequest) (*PaginatedResult[*model.Patient], error) {
	candidates, _, err := s.Patients.List(ctx, store.PatientFilter{
		Query:    strings.TrimSpace(req.Query),
		Pregnant: true,
	})
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}

	today := s.today()
	active := make([]*model.Patient, 0, len(candidates))
	for _, p := range candidates {
		pregnancy.Apply(p, today)
		if p.EmbarazoActivo {
			active = append(active, p)
		}
	}

	from := min((req.Page-1)*req.PerPage, len(active))
	to := min(from+req.PerPage, len(active))
	return paginated(active[from:to], len(active), req), nil
}

func paginated(items []*model.Patient, total int, req ListPatientsRequest) *PaginatedResult[*model.Patient] {
	return &PaginatedResult[*model.Patient]{
		Data:       items,
		Total:      total,
		Page:       req.Page,
		PerPage:    req.PerPage,
		TotalPages: (total + req.PerPage - 1) / req.PerPage,
	}
}

func (s *patientService) Update(ctx context.Context, id uuid.UUID, in Input) (*model.Patient, error) {
	if err := in.Normalize(s.Phones); err != nil {
		return nil, err
	}
	if in.NombreCompleto != nil && *in.NombreCompleto == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, ErrNameRequired)
	}

	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.applyTo(p)
	p.UpdatedAt = s.now().UTC()
	pregnancy.Apply(p, s.today())

	if err := s.save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *patientService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.Patients.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPatientNotFound
		}
		return fmt.Errorf("delete patient: %w", err)
	}
	return nil
}

func (s *patientService) Pregnancy(ctx context.Context, id uuid.UUID) (pregnancy.Status, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return pregnancy.Status{}, err
	}
	if p.Embarazo != model.EmbarazoSi || p.SemanasEmbarazo == nil {
		return pregnancy.Status{}, nil
	}
	return pregnancy.Calculate(p.FechaInicio, *p.SemanasEmbarazo, s.today()), nil
}

func (s *patientService) Summary(ctx context.Context, id uuid.UUID) (*search.PatientMatch, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cts, err := s.CompletedTreatments.ListByPatient(ctx, p.ID, p.NombreCompleto)
	if err != nil {
		return nil, fmt.Errorf("list completed treatments: %w", err)
	}
	odos, err := s.Odontograms.ListByPatient(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list odontograms: %w", err)
	}
	consents, err := s.Consents.ListByPatient(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list consents: %w", err)
	}

	m := search.Aggregate(p, cts, odos, consents)
	return &m, nil
}

// ---------------------------------------------------------------------------
// Files
// ---------------------------------------------------------------------------

func (s *patientService) AttachFile(ctx context.Context, id uuid.UUID, kind, key string) (*model.Patient, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindArchivo, "":
		p.ArchivosURLs = append(p.ArchivosURLs, key)
	case KindRadiografia:
		p.RadiografiasURLs = append(p.RadiografiasURLs, key)
	default:
		return nil, ErrInvalidFileKind
	}
	p.UpdatedAt = s.now().UTC()
	if err := s.save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *patientService) DetachFile(ctx context.Context, id uuid.UUID, key string) (*model.Patient, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	archivos := slices.DeleteFunc(slices.Clone(p.ArchivosURLs), func(k string) bool { return k == key })
	radiografias := slices.DeleteFunc(slices.Clone(p.RadiografiasURLs), func(k string) bool { return k == key })
	if len(archivos) == len(p.ArchivosURLs) && len(radiografias) == len(p.RadiografiasURLs) {
		return nil, ErrFileNotFound
	}
	p.ArchivosURLs, p.RadiografiasURLs = archivos, radiografias
	p.UpdatedAt = s.now().UTC()
	if err := s.save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *patientService) save(ctx context.Context, p *model.Patient) error {
	if err := s.Patients.Update(ctx, p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPatientNotFound
		}
		return fmt.Errorf("update patient: %w", err)
	}
	return nil
}

func newCode(id uuid.UUID) string {
	return "P-" + strings.ToUpper(id.String()[:8])
}
