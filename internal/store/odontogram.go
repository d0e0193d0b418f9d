package store

import (
	"context"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/model"
)

const odontogramsTable = "odontograms"

var odontogramColumns = columnNames(OdontogramsColumns)

type OdontogramStore struct{ c *Client }

func scanOdontogram(r entsql.ColumnScanner) (*model.Odontogram, error) {
	var (
		o      model.Odontogram
		piezas []byte
	)
	if err := r.Scan(&o.ID, &o.PatientID, &o.DoctorName, &piezas, &o.Notas, &o.CreatedAt); err != nil {
		return nil, err
	}
	if err := jsonScan(piezas, &o.Piezas); err != nil {
		return nil, err
	}
	if o.Piezas == nil {
		o.Piezas = map[string]string{}
	}
	return &o, nil
}

func (s *OdontogramStore) Create(ctx context.Context, o *model.Odontogram) error {
	if o.Piezas == nil {
		o.Piezas = map[string]string{}
	}
	piezas, err := jsonArg(o.Piezas)
	if err != nil {
		return err
	}
	_, err = s.c.exec(ctx, pg.Insert(odontogramsTable).Columns(odontogramColumns...).Values(
		o.ID, o.PatientID, o.DoctorName, piezas, o.Notas, o.CreatedAt,
	))
	return err
}

func (s *OdontogramStore) Get(ctx context.Context, id uuid.UUID) (*model.Odontogram, error) {
	sel := pg.Select(odontogramColumns...).From(pg.Table(odontogramsTable)).Where(entsql.EQ("id", id))
	return scanOne(ctx, s.c, sel, scanOdontogram)
}

// ListByPatient returns the patient's odontograms, latest first.
func (s *OdontogramStore) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Odontogram, error) {
	sel := pg.Select(odontogramColumns...).From(pg.Table(odontogramsTable)).
		Where(entsql.EQ("patient_id", patientID)).
		OrderBy(entsql.Desc("created_at"))
	return scanAll(ctx, s.c, sel, scanOdontogram)
}

func (s *OdontogramStore) All(ctx context.Context) ([]*model.Odontogram, error) {
	sel := pg.Select(odontogramColumns...).From(pg.Table(odontogramsTable)).OrderBy(entsql.Desc("created_at"))
	return scanAll(ctx, s.c, sel, scanOdontogram)
}
