package promotion

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/model"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/store"
)

type mockRepo struct{ mock.Mock }

func (m *mockRepo) Create(ctx context.Context, p *model.Promotion) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockRepo) Get(ctx context.Context, id uuid.UUID) (*model.Promotion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Promotion), args.Error(1)
}

func (m *mockRepo) List(ctx context.Context) ([]*model.Promotion, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*model.Promotion), args.Error(1)
}

func (m *mockRepo) Update(ctx context.Context, p *model.Promotion) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func TestActive_UsesClinicDay(t *testing.T) {
	tegucigalpa := time.FixedZone("CST", -6*3600)
	repo := &mockRepo{}
	repo.On("List", mock.Anything).Return([]*model.Promotion{
		{Titulo: "ends today", Activa: true, FechaFin: "2024-03-31"},
		{Titulo: "starts tomorrow", Activa: true, FechaInicio: "2024-04-01"},
		{Titulo: "disabled", Activa: false},
		{Titulo: "open", Activa: true},
	}, nil)

	// 02:00 UTC on April 1st is still March 31st in the clinic.
	svc := &promotionService{
		repo: repo,
		loc:  tegucigalpa,
		now:  func() time.Time { return time.Date(2024, 4, 1, 2, 0, 0, 0, time.UTC) },
	}

	items, err := svc.Active(context.Background())
	require.NoError(t, err)

	var titles []string
	for _, p := range items {
		titles = append(titles, p.Titulo)
	}
	assert.Equal(t, []string{"ends today", "open"}, titles)
}

func TestInputValidation(t *testing.T) {
	str := func(s string) *string { return &s }
	num := func(f float64) *float64 { return &f }

	tests := []struct {
		name string
		in   Input
		ok   bool
	}{
		{"valid", Input{Titulo: str("Limpieza"), Descuento: num(15), Codigo: str(" dl15 "), FechaInicio: str("2024-01-01"), FechaFin: str("2024-02-01")}, true},
		{"missing title", Input{Descuento: num(10)}, false},
		{"discount over 100", Input{Titulo: str("x"), Descuento: num(120)}, false},
		{"reversed range", Input{Titulo: str("x"), FechaInicio: str("2024-02-01"), FechaFin: str("2024-01-01")}, false},
		{"timestamp date", Input{Titulo: str("x"), FechaInicio: str("2024-02-01T10:00:00Z")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &model.Promotion{}
			err := tt.in.applyTo(p)
			if tt.ok {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidPromotion)
		})
	}

	p := &model.Promotion{}
	require.NoError(t, Input{Titulo: str("x"), Codigo: str(" dl15 ")}.applyTo(p))
	assert.Equal(t, "DL15", p.Codigo)
}

func TestGet_NotFound(t *testing.T) {
	repo := &mockRepo{}
	repo.On("Get", mock.Anything, mock.Anything).Return(nil, store.ErrNotFound)

	_, err := New(repo, nil).Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrPromotionNotFound)
}
