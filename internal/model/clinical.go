package model

import (
	"time"

	"github.com/google/uuid"
)

// Treatment is an entry of the clinic's treatment catalogue.
type Treatment struct {
	ID          uuid.UUID `json:"id"`
	Codigo      string    `json:"codigo"`
	Nombre      string    `json:"nombre"`
	Descripcion string    `json:"descripcion"`
	Categoria   string    `json:"categoria"`
	Precio      float64   `json:"precio"`
	Activo      bool      `json:"activo"`
	CreatedAt   time.Time `json:"created_at"`
}

// CompletedTreatment records a treatment performed on a patient.
//
// PatientName is denormalised at creation time. Older rows were written
// without a reliable PatientID, so readers may still have to join on it.
type CompletedTreatment struct {
	ID            uuid.UUID  `json:"id"`
	PatientID     uuid.UUID  `json:"patient_id"`
	PatientName   string     `json:"patient_name"`
	TreatmentID   *uuid.UUID `json:"treatment_id"`
	TreatmentName string     `json:"treatment_name"`
	DoctorName    string     `json:"doctor_name"`
	Fecha         string     `json:"fecha"`
	Notas         string     `json:"notas"`
	Precio        float64    `json:"precio"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Odontogram is a snapshot of the state of each tooth.
type Odontogram struct {
	ID         uuid.UUID         `json:"id"`
	PatientID  uuid.UUID         `json:"patient_id"`
	DoctorName string            `json:"doctor_name"`
	Piezas     map[string]string `json:"piezas"`
	Notas      string            `json:"notas"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Consent is an informed-consent document, optionally signed.
type Consent struct {
	ID        uuid.UUID  `json:"id"`
	PatientID uuid.UUID  `json:"patient_id"`
	Tipo      string     `json:"tipo"`
	Titulo    string     `json:"titulo"`
	Contenido string     `json:"contenido"`
	FirmaURL  string     `json:"firma_url"`
	Firmado   bool       `json:"firmado"`
	FirmadoAt *time.Time `json:"firmado_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// Promotion is a marketing discount valid between two calendar dates.
type Promotion struct {
	ID          uuid.UUID `json:"id"`
	Titulo      string    `json:"titulo"`
	Descripcion string    `json:"descripcion"`
	Descuento   float64   `json:"descuento"`
	Codigo      string    `json:"codigo"`
	FechaInicio string    `json:"fecha_inicio"`
	FechaFin    string    `json:"fecha_fin"`
	Activa      bool      `json:"activa"`
	CreatedAt   time.Time `json:"created_at"`
}

// ActiveOn reports whether the promotion is enabled and day (YYYY-MM-DD)
// falls inside its date range. Empty bounds are open.
func (p *Promotion) ActiveOn(day string) bool {
	if !p.Activa {
		return false
	}
	if p.FechaInicio != "" && day < p.FechaInicio {
		return false
	}
	if p.FechaFin != "" && day > p.FechaFin {
		return false
	}
	return true
}
