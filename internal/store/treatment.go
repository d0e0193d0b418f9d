package store

import (
	"context"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/model"
)

const (
	treatmentsTable          = "treatments"
	completedTreatmentsTable = "completed_treatments"
)

var (
	treatmentColumns          = columnNames(TreatmentsColumns)
	completedTreatmentColumns = columnNames(CompletedTreatmentsColumns)
)

type TreatmentStore struct{ c *Client }

func scanTreatment(r entsql.ColumnScanner) (*model.Treatment, error) {
	var t model.Treatment
	if err := r.Scan(&t.ID, &t.Codigo, &t.Nombre, &t.Descripcion, &t.Categoria,
		&t.Precio, &t.Activo, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns the catalogue ordered by name. onlyActive hides retired entries.
func (s *TreatmentStore) List(ctx context.Context, onlyActive bool) ([]*model.Treatment, error) {
	sel := pg.Select(treatmentColumns...).From(pg.Table(treatmentsTable))
	if onlyActive {
		sel.Where(entsql.EQ("activo", true))
	}
	sel.OrderBy(entsql.Asc("nombre"))
	return scanAll(ctx, s.c, sel, scanTreatment)
}

func (s *TreatmentStore) Get(ctx context.Context, id uuid.UUID) (*model.Treatment, error) {
	sel := pg.Select(treatmentColumns...).From(pg.Table(treatmentsTable)).Where(entsql.EQ("id", id))
	return scanOne(ctx, s.c, sel, scanTreatment)
}

func (s *TreatmentStore) Create(ctx context.Context, t *model.Treatment) error {
	_, err := s.c.exec(ctx, pg.Insert(treatmentsTable).Columns(treatmentColumns...).Values(
		t.ID, t.Codigo, t.Nombre, t.Descripcion, t.Categoria, t.Precio, t.Activo, t.CreatedAt,
	))
	return err
}

func (s *TreatmentStore) Update(ctx context.Context, t *model.Treatment) error {
	return s.c.execOne(ctx, pg.Update(treatmentsTable).
		Set("codigo", t.Codigo).
		Set("nombre", t.Nombre).
		Set("descripcion", t.Descripcion).
		Set("categoria", t.Categoria).
		Set("precio", t.Precio).
		Set("activo", t.Activo).
		Where(entsql.EQ("id", t.ID)))
}

func (s *TreatmentStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.c.execOne(ctx, pg.Delete(treatmentsTable).Where(entsql.EQ("id", id)))
}

type CompletedTreatmentStore struct{ c *Client }

func scanCompletedTreatment(r entsql.ColumnScanner) (*model.CompletedTreatment, error) {
	var ct model.CompletedTreatment
	if err := r.Scan(&ct.ID, &ct.PatientID, &ct.PatientName, &ct.TreatmentID, &ct.TreatmentName,
		&ct.DoctorName, &ct.Fecha, &ct.Notas, &ct.Precio, &ct.CreatedAt); err != nil {
		return nil, err
	}
	return &ct, nil
}

func (s *CompletedTreatmentStore) Create(ctx context.Context, ct *model.CompletedTreatment) error {
	_, err := s.c.exec(ctx, pg.Insert(completedTreatmentsTable).Columns(completedTreatmentColumns...).Values(
		ct.ID, ct.PatientID, ct.PatientName, ct.TreatmentID, ct.TreatmentName,
		ct.DoctorName, ct.Fecha, ct.Notas, ct.Precio, ct.CreatedAt,
	))
	return err
}

// ListByPatient returns the treatments recorded for a patient, matching rows
// by id or, for rows written before ids were reliable, by patient name.
func (s *CompletedTreatmentStore) ListByPatient(ctx context.Context, patientID uuid.UUID, patientName string) ([]*model.CompletedTreatment, error) {
	where := entsql.EQ("patient_id", patientID)
	if patientName != "" {
		where = entsql.Or(where, entsql.EQ("patient_name", patientName))
	}
	sel := pg.Select(completedTreatmentColumns...).From(pg.Table(completedTreatmentsTable)).
		Where(where).
		OrderBy(entsql.Desc("fecha"))
	return scanAll(ctx, s.c, sel, scanCompletedTreatment)
}

func (s *CompletedTreatmentStore) All(ctx context.Context) ([]*model.CompletedTreatment, error) {
	sel := pg.Select(completedTreatmentColumns...).From(pg.Table(completedTreatmentsTable)).
		OrderBy(entsql.Desc("fecha"))
	return scanAll(ctx, s.c, sel, scanCompletedTreatment)
}

func (s *CompletedTreatmentStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.c.execOne(ctx, pg.Delete(completedTreatmentsTable).Where(entsql.EQ("id", id)))
}
