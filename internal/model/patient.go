package model

import (
	"time"

	"github.com/google/uuid"
)

// Pregnancy flag values stored in Patient.Embarazo.
const (
	EmbarazoSi = "si"
	EmbarazoNo = "no"
)

// Patient is the flat intake record of a clinic patient.
//
// EmbarazoActivo and EmbarazoFechaFin are derived from Embarazo, FechaInicio
// and SemanasEmbarazo; callers must run pregnancy.Apply after any change to
// those three fields and never trust the stored values.
type Patient struct {
	ID     uuid.UUID `json:"id"`
	Codigo string    `json:"codigo"`

	// Demographics
	NombreCompleto     string `json:"nombre_completo"`
	NumeroIdentidad    string `json:"numero_identidad"`
	FechaNacimiento    string `json:"fecha_nacimiento"`
	Sexo               string `json:"sexo"`
	Telefono           string `json:"telefono"`
	TelefonoAlterno    string `json:"telefono_alterno"`
	Email              string `json:"email"`
	Direccion          string `json:"direccion"`
	Ocupacion          string `json:"ocupacion"`
	ContactoEmergencia string `json:"contacto_emergencia"`
	TelefonoEmergencia string `json:"telefono_emergencia"`

	// Medical history and habits
	Alergias     string `json:"alergias"`
	Medicamentos string `json:"medicamentos"`
	Enfermedades string `json:"enfermedades"`
	Fuma         bool   `json:"fuma"`
	Alcohol      bool   `json:"alcohol"`
	Bruxismo     bool   `json:"bruxismo"`
	HigieneOral  string `json:"higiene_oral"`

	// Dental exam
	MotivoConsulta  string `json:"motivo_consulta"`
	ExamenExtraoral string `json:"examen_extraoral"`
	ExamenIntraoral string `json:"examen_intraoral"`
	Observaciones   string `json:"observaciones"`

	// Pregnancy
	Embarazo         string  `json:"embarazo"`
	FechaInicio      string  `json:"fecha_inicio"`
	SemanasEmbarazo  *int    `json:"semanas_embarazo"`
	EmbarazoActivo   bool    `json:"embarazo_activo"`
	EmbarazoFechaFin *string `json:"embarazo_fecha_fin"`

	// Files (object storage keys)
	ArchivosURLs     []string `json:"archivos_urls"`
	RadiografiasURLs []string `json:"radiografias_urls"`
	FirmaURL         string   `json:"firma_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
