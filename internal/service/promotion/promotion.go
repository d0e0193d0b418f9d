package promotion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/model"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/pregnancy"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/store"
)

type Input struct {
	Titulo      *string  `json:"titulo"`
	Descripcion *string  `json:"descripcion"`
	Descuento   *float64 `json:"descuento"`
	Codigo      *string  `json:"codigo"`
	FechaInicio *string  `json:"fecha_inicio"`
	FechaFin    *string  `json:"fecha_fin"`
	Activa      *bool    `json:"activa"`
}

type Repository interface {
	Create(ctx context.Context, p *model.Promotion) error
	Get(ctx context.Context, id uuid.UUID) (*model.Promotion, error)
	List(ctx context.Context) ([]*model.Promotion, error)
	Update(ctx context.Context, p *model.Promotion) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type Service interface {
	List(ctx context.Context) ([]*model.Promotion, error)
	// Active returns the promotions valid today in the clinic's time zone.
	Active(ctx context.Context) ([]*model.Promotion, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Promotion, error)
	Create(ctx context.Context, in Input) (*model.Promotion, error)
	Update(ctx context.Context, id uuid.UUID, in Input) (*model.Promotion, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type promotionService struct {
	repo Repository
	loc  *time.Location
	now  func() time.Time
}

func New(repo Repository, loc *time.Location) Service {
	if loc == nil {
		loc = time.UTC
	}
	return &promotionService{repo: repo, loc: loc, now: time.Now}
}

func (s *promotionService) List(ctx context.Context) ([]*model.Promotion, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}
	return items, nil
}

func (s *promotionService) Active(ctx context.Context) ([]*model.Promotion, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	today := s.now().In(s.loc).Format(pregnancy.DateLayout)
	out := make([]*model.Promotion, 0, len(items))
	for _, p := range items {
		if p.ActiveOn(today) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *promotionService) Get(ctx context.Context, id uuid.UUID) (*model.Promotion, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPromotionNotFound
		}
		return nil, fmt.Errorf("get promotion: %w", err)
	}
	return p, nil
}

func (s *promotionService) Create(ctx context.Context, in Input) (*model.Promotion, error) {
	p := &model.Promotion{ID: uuid.New(), Activa: true, CreatedAt: s.now().UTC()}
	if err := in.applyTo(p); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create promotion: %w", err)
	}
	return p, nil
}

func (s *promotionService) Update(ctx context.Context, id uuid.UUID, in Input) (*model.Promotion, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.applyTo(p); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPromotionNotFound
		}
		return nil, fmt.Errorf("update promotion: %w", err)
	}
	return p, nil
}

func (s *promotionService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPromotionNotFound
		}
		return fmt.Errorf("delete promotion: %w", err)
	}
	return nil
}

// applyTo merges in into p and validates the result.
func (in Input) applyTo(p *model.Promotion) error {
	if in.Titulo != nil {
		p.Titulo = strings.TrimSpace(*in.Titulo)
	}
	if in.Descripcion != nil {
		p.Descripcion = strings.TrimSpace(*in.Descripcion)
	}
	if in.Descuento != nil {
		p.Descuento = *in.Descuento
	}
	if in.Codigo != nil {
		p.Codigo = strings.ToUpper(strings.TrimSpace(*in.Codigo))
	}
	if in.FechaInicio != nil {
		p.FechaInicio = strings.TrimSpace(*in.FechaInicio)
	}
	if in.FechaFin != nil {
		p.FechaFin = strings.TrimSpace(*in.FechaFin)
	}
	if in.Activa != nil {
		p.Activa = *in.Activa
	}

	switch {
	case p.Titulo == "":
		return fmt.Errorf("%w: titulo is required", ErrInvalidPromotion)
	case p.Descuento < 0 || p.Descuento > 100:
		return fmt.Errorf("%w: descuento must be between 0 and 100", ErrInvalidPromotion)
	}
	for _, d := range []string{p.FechaInicio, p.FechaFin} {
		if d == "" {
			continue
		}
		if _, ok := pregnancy.ParseDate(d, time.UTC); !ok || len(d) != len(pregnancy.DateLayout) {
			return fmt.Errorf("%w: dates must be YYYY-MM-DD", ErrInvalidPromotion)
		}
	}
	if p.FechaInicio != "" && p.FechaFin != "" && p.FechaFin < p.FechaInicio {
		return fmt.Errorf("%w: fecha_fin is before fecha_inicio", ErrInvalidPromotion)
	}
	return nil
}
