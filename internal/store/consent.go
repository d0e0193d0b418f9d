package store

import (
	"context"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/model"
)

const consentsTable = "consents"

var consentColumns = columnNames(ConsentsColumns)

type ConsentStore struct{ c *Client }

func scanConsent(r entsql.ColumnScanner) (*model.Consent, error) {
	var c model.Consent
	if err := r.Scan(&c.ID, &c.PatientID, &c.Tipo, &c.Titulo, &c.Contenido, &c.FirmaURL,
		&c.Firmado, &c.FirmadoAt, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ConsentStore) Create(ctx context.Context, c *model.Consent) error {
	_, err := s.c.exec(ctx, pg.Insert(consentsTable).Columns(consentColumns...).Values(
		c.ID, c.PatientID, c.Tipo, c.Titulo, c.Contenido, c.FirmaURL, c.Firmado, c.FirmadoAt, c.CreatedAt,
	))
	return err
}

func (s *ConsentStore) Get(ctx context.Context, id uuid.UUID) (*model.Consent, error) {
	sel := pg.Select(consentColumns...).From(pg.Table(consentsTable)).Where(entsql.EQ("id", id))
	return scanOne(ctx, s.c, sel, scanConsent)
}

func (s *ConsentStore) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Consent, error) {
	sel := pg.Select(consentColumns...).From(pg.Table(consentsTable)).
		Where(entsql.EQ("patient_id", patientID)).
		OrderBy(entsql.Desc("created_at"))
	return scanAll(ctx, s.c, sel, scanConsent)
}

func (s *ConsentStore) All(ctx context.Context) ([]*model.Consent, error) {
	sel := pg.Select(consentColumns...).From(pg.Table(consentsTable)).OrderBy(entsql.Desc("created_at"))
	return scanAll(ctx, s.c, sel, scanConsent)
}

// MarkSigned stores the signature key and flags an unsigned consent as
// signed. Already signed consents are left untouched and yield ErrNotFound.
func (s *ConsentStore) MarkSigned(ctx context.Context, id uuid.UUID, firmaURL string, at time.Time) error {
	return s.c.execOne(ctx, pg.Update(consentsTable).
		Set("firma_url", firmaURL).
		Set("firmado", true).
		Set("firmado_at", at).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("firmado", false))))
}

func (s *ConsentStore) CountPending(ctx context.Context) (int, error) {
	return s.c.count(ctx, consentsTable, entsql.EQ("firmado", false))
}
