package store

import (
	"context"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/model"
)

const promotionsTable = "promotions"

var promotionColumns = columnNames(PromotionsColumns)

type PromotionStore struct{ c *Client }

func scanPromotion(r entsql.ColumnScanner) (*model.Promotion, error) {
	var p model.Promotion
	if err := r.Scan(&p.ID, &p.Titulo, &p.Descripcion, &p.Descuento, &p.Codigo,
		&p.FechaInicio, &p.FechaFin, &p.Activa, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PromotionStore) Create(ctx context.Context, p *model.Promotion) error {
	_, err := s.c.exec(ctx, pg.Insert(promotionsTable).Columns(promotionColumns...).Values(
		p.ID, p.Titulo, p.Descripcion, p.Descuento, p.Codigo, p.FechaInicio, p.FechaFin, p.Activa, p.CreatedAt,
	))
	return err
}

func (s *PromotionStore) Get(ctx context.Context, id uuid.UUID) (*model.Promotion, error) {
	sel := pg.Select(promotionColumns...).From(pg.Table(promotionsTable)).Where(entsql.EQ("id", id))
	return scanOne(ctx, s.c, sel, scanPromotion)
}

func (s *PromotionStore) List(ctx context.Context) ([]*model.Promotion, error) {
	sel := pg.Select(promotionColumns...).From(pg.Table(promotionsTable)).OrderBy(entsql.Desc("created_at"))
	return scanAll(ctx, s.c, sel, scanPromotion)
}

func (s *PromotionStore) Update(ctx context.Context, p *model.Promotion) error {
	return s.c.execOne(ctx, pg.Update(promotionsTable).
		Set("titulo", p.Titulo).
		Set("descripcion", p.Descripcion).
		Set("descuento", p.Descuento).
		Set("codigo", p.Codigo).
		Set("fecha_inicio", p.FechaInicio).
		Set("fecha_fin", p.FechaFin).
		Set("activa", p.Activa).
		Where(entsql.EQ("id", p.ID)))
}

func (s *PromotionStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.c.execOne(ctx, pg.Delete(promotionsTable).Where(entsql.EQ("id", id)))
}
