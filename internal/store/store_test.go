package store

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/model"
)

func setupTestClient(t *testing.T) (*Client, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewClient(entsql.OpenDB(dialect.Postgres, db)), mock
}

func patientRow(id uuid.UUID, name, identidad string, created time.Time) []driver.Value {
	row := make([]driver.Value, len(patientColumns))
	for i, col := range patientColumns {
		switch col {
		case "id":
			row[i] = id.String()
		case "nombre_completo":
			row[i] = name
		case "numero_identidad":
			row[i] = identidad
		case "fuma", "alcohol", "bruxismo", "embarazo_activo":
			row[i] = false
		case "semanas_embarazo", "embarazo_fecha_fin":
			row[i] = nil
		case "archivos_urls":
			row[i] = []byte(`["documents/a.pdf"]`)
		case "radiografias_urls":
			row[i] = nil
		case "created_at", "updated_at":
			row[i] = created
		default:
			row[i] = ""
		}
	}
	return row
}

func TestPatientStore_Get(t *testing.T) {
	c, mock := setupTestClient(t)
	id := uuid.New()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .* FROM "patients" WHERE "id" = \$1`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(patientColumns).AddRow(patientRow(id, "Maria Lopez", "0801", now)...))

	p, err := c.Patient.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	assert.Equal(t, "Maria Lopez", p.NombreCompleto)
	assert.Nil(t, p.SemanasEmbarazo)
	assert.Nil(t, p.EmbarazoFechaFin)
	assert.Equal(t, []string{"documents/a.pdf"}, p.ArchivosURLs)
	assert.Equal(t, []string{}, p.RadiografiasURLs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientStore_GetNotFound(t *testing.T) {
	c, mock := setupTestClient(t)

	mock.ExpectQuery(`SELECT .* FROM "patients"`).
		WillReturnRows(sqlmock.NewRows(patientColumns))

	_, err := c.Patient.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPatientStore_ListFilters(t *testing.T) {
	c, mock := setupTestClient(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "patients" WHERE .*"nombre_completo" ILIKE \$1 OR "numero_identidad" ILIKE \$2`).
		WithArgs("%maria%", "%maria%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(`SELECT .* FROM "patients" WHERE .* ORDER BY "created_at" DESC LIMIT 10 OFFSET 10`).
		WithArgs("%maria%", "%maria%").
		WillReturnRows(sqlmock.NewRows(patientColumns).
			AddRow(patientRow(uuid.New(), "Maria Lopez", "1", now)...).
			AddRow(patientRow(uuid.New(), "Ana Maria", "2", now)...))

	items, total, err := c.Patient.List(context.Background(), PatientFilter{
		Query: "  Maria ",
		Page:  Page{Limit: 10, Offset: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	assert.Len(t, items, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientStore_Create(t *testing.T) {
	c, mock := setupTestClient(t)
	weeks := 12

	mock.ExpectExec(`INSERT INTO "patients"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := c.Patient.Create(context.Background(), &model.Patient{
		ID:              uuid.New(),
		NombreCompleto:  "Maria Lopez",
		Embarazo:        model.EmbarazoSi,
		FechaInicio:     "2024-01-01",
		SemanasEmbarazo: &weeks,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientStore_UpdateMissingRow(t *testing.T) {
	c, mock := setupTestClient(t)

	mock.ExpectExec(`UPDATE "patients" SET .* WHERE "id" = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := c.Patient.Update(context.Background(), &model.Patient{ID: uuid.New()})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompletedTreatmentStore_ListByPatientFallsBackToName(t *testing.T) {
	c, mock := setupTestClient(t)
	pid := uuid.New()

	mock.ExpectQuery(`SELECT .* FROM "completed_treatments" WHERE .*"patient_id" = \$1 OR "patient_name" = \$2`).
		WithArgs(sqlmock.AnyArg(), "Maria Lopez").
		WillReturnRows(sqlmock.NewRows(completedTreatmentColumns).
			AddRow(uuid.NewString(), uuid.Nil.String(), "Maria Lopez", nil, "Limpieza", "Dr. Ruiz", "2024-02-01", "", 25.0, time.Now()))

	items, err := c.CompletedTreatment.ListByPatient(context.Background(), pid, "Maria Lopez")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].TreatmentID)
	assert.Equal(t, "Limpieza", items[0].TreatmentName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsentStore_MarkSignedOnlyOnce(t *testing.T) {
	c, mock := setupTestClient(t)
	at := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE "consents" SET .* WHERE "id" = \$\d+ AND "firmado" = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "consents"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	id := uuid.New()
	require.NoError(t, c.Consent.MarkSigned(context.Background(), id, "signatures/x.png", at))
	assert.ErrorIs(t, c.Consent.MarkSigned(context.Background(), id, "signatures/x.png", at), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationStore_MarkAllRead(t *testing.T) {
	c, mock := setupTestClient(t)

	mock.ExpectExec(`UPDATE "notifications" SET "is_read" = \$1 WHERE "user_id" = \$2 AND "is_read" = \$3`).
		WithArgs(true, sqlmock.AnyArg(), false).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := c.Notification.MarkAllRead(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOdontogramStore_NullPiezas(t *testing.T) {
	c, mock := setupTestClient(t)

	mock.ExpectQuery(`SELECT .* FROM "odontograms" WHERE "patient_id" = \$1 ORDER BY "created_at" DESC`).
		WillReturnRows(sqlmock.NewRows(odontogramColumns).
			AddRow(uuid.NewString(), uuid.NewString(), "Dr. Ruiz", nil, "", time.Now()))

	items, err := c.Odontogram.ListByPatient(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.NotNil(t, items[0].Piezas)
}

func TestPageApply(t *testing.T) {
	q, _ := Page{}.apply(pg.Select("id").From(pg.Table("users"))).Query()
	assert.Equal(t, `SELECT "id" FROM "users"`, q)

	q, _ = Page{Limit: 5}.apply(pg.Select("id").From(pg.Table("users"))).Query()
	assert.Equal(t, `SELECT "id" FROM "users" LIMIT 5`, q)
}
