package store

import (
	"context"
	"fmt"
	"strings"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/model"
)

const patientsTable = "patients"

var patientColumns = columnNames(PatientsColumns)

type PatientStore struct{ c *Client }

// PatientFilter narrows List. Query matches name or identity number.
// Pregnant keeps rows with a pregnancy record (embarazo = "si"); whether
// that pregnancy is still active is derived by the caller.
type PatientFilter struct {
	Query    string
	Pregnant bool
	Page
}

func (f PatientFilter) predicate() *entsql.Predicate {
	var preds []*entsql.Predicate
	if q := strings.TrimSpace(f.Query); q != "" {
		preds = append(preds, entsql.Or(
			entsql.ContainsFold("nombre_completo", q),
			entsql.ContainsFold("numero_identidad", q),
		))
	}
	if f.Pregnant {
		preds = append(preds, entsql.EQ("embarazo", model.EmbarazoSi))
	}
	switch len(preds) {
	case 0:
		return nil
	case 1:
		return preds[0]
	default:
		return entsql.And(preds...)
	}
}

func patientValues(p *model.Patient) ([]any, error) {
	archivos, err := jsonArg(nonNil(p.ArchivosURLs))
	if err != nil {
		return nil, err
	}
	radiografias, err := jsonArg(nonNil(p.RadiografiasURLs))
	if err != nil {
		return nil, err
	}
	return []any{
		p.ID, p.Codigo, p.NombreCompleto, p.NumeroIdentidad, p.FechaNacimiento, p.Sexo,
		p.Telefono, p.TelefonoAlterno, p.Email, p.Direccion, p.Ocupacion,
		p.ContactoEmergencia, p.TelefonoEmergencia,
		p.Alergias, p.Medicamentos, p.Enfermedades, p.Fuma, p.Alcohol, p.Bruxismo, p.HigieneOral,
		p.MotivoConsulta, p.ExamenExtraoral, p.ExamenIntraoral, p.Observaciones,
		p.Embarazo, p.FechaInicio, p.SemanasEmbarazo, p.EmbarazoActivo, p.EmbarazoFechaFin,
		archivos, radiografias, p.FirmaURL,
		p.CreatedAt, p.UpdatedAt,
	}, nil
}

func scanPatient(r entsql.ColumnScanner) (*model.Patient, error) {
	var (
		p                      model.Patient
		archivos, radiografias []byte
	)
	err := r.Scan(
		&p.ID, &p.Codigo, &p.NombreCompleto, &p.NumeroIdentidad, &p.FechaNacimiento, &p.Sexo,
		&p.Telefono, &p.TelefonoAlterno, &p.Email, &p.Direccion, &p.Ocupacion,
		&p.ContactoEmergencia, &p.TelefonoEmergencia,
		&p.Alergias, &p.Medicamentos, &p.Enfermedades, &p.Fuma, &p.Alcohol, &p.Bruxismo, &p.HigieneOral,
		&p.MotivoConsulta, &p.ExamenExtraoral, &p.ExamenIntraoral, &p.Observaciones,
		&p.Embarazo, &p.FechaInicio, &p.SemanasEmbarazo, &p.EmbarazoActivo, &p.EmbarazoFechaFin,
		&archivos, &radiografias, &p.FirmaURL,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := jsonScan(archivos, &p.ArchivosURLs); err != nil {
		return nil, fmt.Errorf("archivos_urls: %w", err)
	}
	if err := jsonScan(radiografias, &p.RadiografiasURLs); err != nil {
		return nil, fmt.Errorf("radiografias_urls: %w", err)
	}
	p.ArchivosURLs = nonNil(p.ArchivosURLs)
	p.RadiografiasURLs = nonNil(p.RadiografiasURLs)
	return &p, nil
}

func (s *PatientStore) Create(ctx context.Context, p *model.Patient) error {
	vals, err := patientValues(p)
	if err != nil {
		return err
	}
	_, err = s.c.exec(ctx, pg.Insert(patientsTable).Columns(patientColumns...).Values(vals...))
	return err
}

func (s *PatientStore) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	sel := pg.Select(patientColumns...).From(pg.Table(patientsTable)).Where(entsql.EQ("id", id))
	return scanOne(ctx, s.c, sel, scanPatient)
}

// List returns one page of patients, newest first, and the total match count.
func (s *PatientStore) List(ctx context.Context, f PatientFilter) ([]*model.Patient, int, error) {
	where := f.predicate()
	total, err := s.c.count(ctx, patientsTable, where)
	if err != nil {
		return nil, 0, err
	}

	sel := pg.Select(patientColumns...).From(pg.Table(patientsTable))
	if where != nil {
		sel.Where(where)
	}
	sel.OrderBy(entsql.Desc("created_at"))
	items, err := scanAll(ctx, s.c, f.Page.apply(sel), scanPatient)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// All returns every patient ordered by name.
func (s *PatientStore) All(ctx context.Context) ([]*model.Patient, error) {
	sel := pg.Select(patientColumns...).From(pg.Table(patientsTable)).OrderBy(entsql.Asc("nombre_completo"))
	return scanAll(ctx, s.c, sel, scanPatient)
}

// Update overwrites every mutable column of p.
func (s *PatientStore) Update(ctx context.Context, p *model.Patient) error {
	vals, err := patientValues(p)
	if err != nil {
		return err
	}
	upd := pg.Update(patientsTable)
	// skip id and created_at
	for i, col := range patientColumns {
		if col == "id" || col == "created_at" {
			continue
		}
		upd.Set(col, vals[i])
	}
	return s.c.execOne(ctx, upd.Where(entsql.EQ("id", p.ID)))
}

func (s *PatientStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.c.execOne(ctx, pg.Delete(patientsTable).Where(entsql.EQ("id", id)))
}

func (s *PatientStore) Count(ctx context.Context) (int, error) {
	return s.c.count(ctx, patientsTable, nil)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
