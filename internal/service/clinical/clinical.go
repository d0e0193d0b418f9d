// Package clinical manages the treatment catalogue and the per-patient
// clinical records: completed treatments, odontograms and consents.
package clinical

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/model"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/store"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/events"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/s3"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type TreatmentInput struct {
	Codigo      *string  `json:"codigo"`
	Nombre      *string  `json:"nombre"`
	Descripcion *string  `json:"descripcion"`
	Categoria   *string  `json:"categoria"`
	Precio      *float64 `json:"precio"`
	Activo      *bool    `json:"activo"`
}

type CreateCompletedRequest struct {
	PatientID   uuid.UUID  `json:"patient_id"`
	TreatmentID *uuid.UUID `json:"treatment_id"`
	// TreatmentName is used when no catalogue treatment is referenced.
	TreatmentName string   `json:"treatment_name"`
	DoctorName    string   `json:"doctor_name"`
	Fecha         string   `json:"fecha"`
	Notas         string   `json:"notas"`
	Precio        *float64 `json:"precio"`
}

type CreateOdontogramRequest struct {
	PatientID  uuid.UUID         `json:"patient_id"`
	DoctorName string            `json:"doctor_name"`
	Piezas     map[string]string `json:"piezas"`
	Notas      string            `json:"notas"`
}

type CreateConsentRequest struct {
	PatientID uuid.UUID `json:"patient_id"`
	Tipo      string    `json:"tipo"`
	Titulo    string    `json:"titulo"`
	Contenido string    `json:"contenido"`
}

// Signature is the uploaded signature image of a consent.
type Signature struct {
	Body        io.Reader
	Size        int64
	ContentType string
}

// ---------------------------------------------------------------------------
// Repositories
// ---------------------------------------------------------------------------

type PatientRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
}

type TreatmentRepository interface {
	List(ctx context.Context, onlyActive bool) ([]*model.Treatment, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Treatment, error)
	Create(ctx context.Context, t *model.Treatment) error
	Update(ctx context.Context, t *model.Treatment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CompletedTreatmentRepository interface {
	Create(ctx context.Context, ct *model.CompletedTreatment) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, patientName string) ([]*model.CompletedTreatment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type OdontogramRepository interface {
	Create(ctx context.Context, o *model.Odontogram) error
	Get(ctx context.Context, id uuid.UUID) (*model.Odontogram, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Odontogram, error)
}

type ConsentRepository interface {
	Create(ctx context.Context, c *model.Consent) error
	Get(ctx context.Context, id uuid.UUID) (*model.Consent, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Consent, error)
	MarkSigned(ctx context.Context, id uuid.UUID, firmaURL string, at time.Time) error
}

// ObjectStore is the part of the S3 client used for signatures.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	// Treatment catalogue
	ListTreatments(ctx context.Context, onlyActive bool) ([]*model.Treatment, error)
	GetTreatment(ctx context.Context, id uuid.UUID) (*model.Treatment, error)
	CreateTreatment(ctx context.Context, in TreatmentInput) (*model.Treatment, error)
	UpdateTreatment(ctx context.Context, id uuid.UUID, in TreatmentInput) (*model.Treatment, error)
	DeleteTreatment(ctx context.Context, id uuid.UUID) error

	// Completed treatments
	ListCompleted(ctx context.Context, patientID uuid.UUID) ([]*model.CompletedTreatment, error)
	CreateCompleted(ctx context.Context, req CreateCompletedRequest) (*model.CompletedTreatment, error)
	DeleteCompleted(ctx context.Context, id uuid.UUID) error

	// Odontograms
	ListOdontograms(ctx context.Context, patientID uuid.UUID) ([]*model.Odontogram, error)
	GetOdontogram(ctx context.Context, id uuid.UUID) (*model.Odontogram, error)
	CreateOdontogram(ctx context.Context, req CreateOdontogramRequest) (*model.Odontogram, error)

	// Consents
	ListConsents(ctx context.Context, patientID uuid.UUID) ([]*model.Consent, error)
	CreateConsent(ctx context.Context, req CreateConsentRequest) (*model.Consent, error)
	SignConsent(ctx context.Context, id uuid.UUID, sig Signature) (*model.Consent, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type Deps struct {
	Patients            PatientRepository
	Treatments          TreatmentRepository
	CompletedTreatments CompletedTreatmentRepository
	Odontograms         OdontogramRepository
	Consents            ConsentRepository
	Objects             ObjectStore
	Bus                 *events.Bus
}

type clinicalService struct {
	Deps
	now func() time.Time
}

func New(d Deps) Service {
	return &clinicalService{Deps: d, now: time.Now}
}

// notFound maps store.ErrNotFound to target and wraps anything else.
func notFound(err, target error, op string) error {
	if errors.Is(err, store.ErrNotFound) {
		return target
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *clinicalService) patient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	p, err := s.Patients.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrPatientNotFound, "get patient")
	}
	return p, nil
}

// ---------------------------------------------------------------------------
// Treatment catalogue
// ---------------------------------------------------------------------------

func (s *clinicalService) ListTreatments(ctx context.Context, onlyActive bool) ([]*model.Treatment, error) {
	items, err := s.Treatments.List(ctx, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("list treatments: %w", err)
	}
	return items, nil
}

func (s *clinicalService) GetTreatment(ctx context.Context, id uuid.UUID) (*model.Treatment, error) {
	t, err := s.Treatments.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrTreatmentNotFound, "get treatment")
	}
	return t, nil
}

func (s *clinicalService) CreateTreatment(ctx context.Context, in TreatmentInput) (*model.Treatment, error) {
	t := &model.Treatment{ID: uuid.New(), Activo: true, CreatedAt: s.now().UTC()}
	if err := in.applyTo(t); err != nil {
		return nil, err
	}
	if t.Nombre == "" {
		return nil, fmt.Errorf("%w: nombre is required", ErrInvalidInput)
	}
	if err := s.Treatments.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create treatment: %w", err)
	}
	return t, nil
}

func (s *clinicalService) UpdateTreatment(ctx context.Context, id uuid.UUID, in TreatmentInput) (*model.Treatment, error) {
	t, err := s.GetTreatment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.applyTo(t); err != nil {
		return nil, err
	}
	if t.Nombre == "" {
		return nil, fmt.Errorf("%w: nombre is required", ErrInvalidInput)
	}
	if err := s.Treatments.Update(ctx, t); err != nil {
		return nil, notFound(err, ErrTreatmentNotFound, "update treatment")
	}
	return t, nil
}

func (s *clinicalService) DeleteTreatment(ctx context.Context, id uuid.UUID) error {
	if err := s.Treatments.Delete(ctx, id); err != nil {
		return notFound(err, ErrTreatmentNotFound, "delete treatment")
	}
	return nil
}

func (in TreatmentInput) applyTo(t *model.Treatment) error {
	if in.Codigo != nil {
		t.Codigo = strings.TrimSpace(*in.Codigo)
	}
	if in.Nombre != nil {
		t.Nombre = strings.TrimSpace(*in.Nombre)
	}
	if in.Descripcion != nil {
		t.Descripcion = strings.TrimSpace(*in.Descripcion)
	}
	if in.Categoria != nil {
		t.Categoria = strings.TrimSpace(*in.Categoria)
	}
	if in.Precio != nil {
		if *in.Precio < 0 {
			return fmt.Errorf("%w: precio must not be negative", ErrInvalidInput)
		}
		t.Precio = *in.Precio
	}
	if in.Activo != nil {
		t.Activo = *in.Activo
	}
	return nil
}

// ---------------------------------------------------------------------------
// Completed treatments
// ---------------------------------------------------------------------------

func (s *clinicalService) ListCompleted(ctx context.Context, patientID uuid.UUID) ([]*model.CompletedTreatment, error) {
	p, err := s.patient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	items, err := s.CompletedTreatments.ListByPatient(ctx, p.ID, p.NombreCompleto)
	if err != nil {
		return nil, fmt.Errorf("list completed treatments: %w", err)
	}
	return items, nil
}

// CreateCompleted always records the patient id; the denormalised name is
// kept for display and for older rows that lack it.
func (s *clinicalService) CreateCompleted(ctx context.Context, req CreateCompletedRequest) (*model.CompletedTreatment, error) {
	p, err := s.patient(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}

	ct := &model.CompletedTreatment{
		ID:            uuid.New(),
		PatientID:     p.ID,
		PatientName:   p.NombreCompleto,
		TreatmentName: strings.TrimSpace(req.TreatmentName),
		DoctorName:    strings.TrimSpace(req.DoctorName),
		Fecha:         strings.TrimSpace(req.Fecha),
		Notas:         strings.TrimSpace(req.Notas),
		CreatedAt:     s.now().UTC(),
	}
	if req.TreatmentID != nil {
		t, err := s.GetTreatment(ctx, *req.TreatmentID)
		if err != nil {
			return nil, err
		}
		ct.TreatmentID = &t.ID
		ct.TreatmentName = t.Nombre
		ct.Precio = t.Precio
	}
	if req.Precio != nil {
		ct.Precio = *req.Precio
	}
	if ct.TreatmentName == "" {
		return nil, fmt.Errorf("%w: treatment_name or treatment_id is required", ErrInvalidInput)
	}
	if ct.Fecha == "" {
		ct.Fecha = ct.CreatedAt.Format(time.DateOnly)
	}

	if err := s.CompletedTreatments.Create(ctx, ct); err != nil {
		return nil, fmt.Errorf("create completed treatment: %w", err)
	}
	return ct, nil
}

func (s *clinicalService) DeleteCompleted(ctx context.Context, id uuid.UUID) error {
	if err := s.CompletedTreatments.Delete(ctx, id); err != nil {
		return notFound(err, ErrCompletedTreatmentNotFound, "delete completed treatment")
	}
	return nil
}

// ---------------------------------------------------------------------------
// Odontograms
// ---------------------------------------------------------------------------

func (s *clinicalService) ListOdontograms(ctx context.Context, patientID uuid.UUID) ([]*model.Odontogram, error) {
	items, err := s.Odontograms.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list odontograms: %w", err)
	}
	return items, nil
}

func (s *clinicalService) GetOdontogram(ctx context.Context, id uuid.UUID) (*model.Odontogram, error) {
	o, err := s.Odontograms.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrOdontogramNotFound, "get odontogram")
	}
	return o, nil
}

func (s *clinicalService) CreateOdontogram(ctx context.Context, req CreateOdontogramRequest) (*model.Odontogram, error) {
	if _, err := s.patient(ctx, req.PatientID); err != nil {
		return nil, err
	}
	piezas := make(map[string]string, len(req.Piezas))
	for tooth, state := range req.Piezas {
		tooth = strings.TrimSpace(tooth)
		if tooth == "" {
			return nil, fmt.Errorf("%w: empty tooth number", ErrInvalidInput)
		}
		piezas[tooth] = strings.TrimSpace(state)
	}

	o := &model.Odontogram{
		ID:         uuid.New(),
		PatientID:  req.PatientID,
		DoctorName: strings.TrimSpace(req.DoctorName),
		Piezas:     piezas,
		Notas:      strings.TrimSpace(req.Notas),
		CreatedAt:  s.now().UTC(),
	}
	if err := s.Odontograms.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create odontogram: %w", err)
	}
	return o, nil
}

// ---------------------------------------------------------------------------
// Consents
// ---------------------------------------------------------------------------

func (s *clinicalService) ListConsents(ctx context.Context, patientID uuid.UUID) ([]*model.Consent, error) {
	items, err := s.Consents.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list consents: %w", err)
	}
	return items, nil
}

func (s *clinicalService) CreateConsent(ctx context.Context, req CreateConsentRequest) (*model.Consent, error) {
	if _, err := s.patient(ctx, req.PatientID); err != nil {
		return nil, err
	}
	c := &model.Consent{
		ID:        uuid.New(),
		PatientID: req.PatientID,
		Tipo:      strings.TrimSpace(req.Tipo),
		Titulo:    strings.TrimSpace(req.Titulo),
		Contenido: req.Contenido,
		CreatedAt: s.now().UTC(),
	}
	if c.Titulo == "" {
		return nil, fmt.Errorf("%w: titulo is required", ErrInvalidInput)
	}
	if err := s.Consents.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create consent: %w", err)
	}
	return c, nil
}

// SignConsent stores the signature image and flags the consent as signed.
// A consent is signed at most once.
func (s *clinicalService) SignConsent(ctx context.Context, id uuid.UUID, sig Signature) (*model.Consent, error) {
	if sig.Body == nil || sig.Size <= 0 {
		return nil, ErrEmptySignature
	}
	c, err := s.Consents.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrConsentNotFound, "get consent")
	}
	if c.Firmado {
		return nil, ErrConsentAlreadySigned
	}
	p, err := s.patient(ctx, c.PatientID)
	if err != nil {
		return nil, err
	}

	contentType := sig.ContentType
	if contentType == "" {
		contentType = "image/png"
	}
	key := s3.SignatureKey(p.ID)
	if err := s.Objects.Upload(ctx, key, contentType, sig.Body, sig.Size); err != nil {
		return nil, fmt.Errorf("upload signature: %w", err)
	}

	at := s.now().UTC()
	if err := s.Consents.MarkSigned(ctx, c.ID, key, at); err != nil {
		if derr := s.Objects.Delete(ctx, key); derr != nil {
			slog.WarnContext(ctx, "failed to remove orphaned signature", "key", key, "error", derr)
		}
		return nil, notFound(err, ErrConsentAlreadySigned, "mark consent signed")
	}

	c.FirmaURL = key
	c.Firmado = true
	c.FirmadoAt = &at

	s.Bus.ConsentSigned(ctx, events.ConsentSigned{
		ConsentID:   c.ID.String(),
		PatientID:   p.ID.String(),
		PatientName: p.NombreCompleto,
		Titulo:      c.Titulo,
		SignedAt:    at,
	})
	return c, nil
}
