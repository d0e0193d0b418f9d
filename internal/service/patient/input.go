package patient

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/model"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/pregnancy"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/util/phone"
)

// Input is the intake form. A nil field is left unchanged on update and
// empty on create.
type Input struct {
	Codigo *string `json:"codigo"`

	NombreCompleto     *string `json:"nombre_completo"`
	NumeroIdentidad    *string `json:"numero_identidad"`
	FechaNacimiento    *string `json:"fecha_nacimiento"`
	Sexo               *string `json:"sexo"`
	Telefono           *string `json:"telefono"`
	TelefonoAlterno    *string `json:"telefono_alterno"`
	Email              *string `json:"email"`
	Direccion          *string `json:"direccion"`
	Ocupacion          *string `json:"ocupacion"`
	ContactoEmergencia *string `json:"contacto_emergencia"`
	TelefonoEmergencia *string `json:"telefono_emergencia"`

	Alergias     *string `json:"alergias"`
	Medicamentos *string `json:"medicamentos"`
	Enfermedades *string `json:"enfermedades"`
	Fuma         *bool   `json:"fuma"`
	Alcohol      *bool   `json:"alcohol"`
	Bruxismo     *bool   `json:"bruxismo"`
	HigieneOral  *string `json:"higiene_oral"`

	MotivoConsulta  *string `json:"motivo_consulta"`
	ExamenExtraoral *string `json:"examen_extraoral"`
	ExamenIntraoral *string `json:"examen_intraoral"`
	Observaciones   *string `json:"observaciones"`

	Embarazo        *string `json:"embarazo"`
	FechaInicio     *string `json:"fecha_inicio"`
	SemanasEmbarazo *int    `json:"semanas_embarazo"`

	FirmaURL *string `json:"firma_url"`
}

const (
	minWeeks = 1
	maxWeeks = 42
)

func (in *Input) texts() []*string {
	return []*string{
		in.Codigo, in.NombreCompleto, in.NumeroIdentidad, in.FechaNacimiento, in.Sexo,
		in.Telefono, in.TelefonoAlterno, in.Email, in.Direccion, in.Ocupacion,
		in.ContactoEmergencia, in.TelefonoEmergencia, in.Alergias, in.Medicamentos,
		in.Enfermedades, in.HigieneOral, in.MotivoConsulta, in.ExamenExtraoral,
		in.ExamenIntraoral, in.Observaciones, in.Embarazo, in.FechaInicio, in.FirmaURL,
	}
}

// Normalize trims every field, canonicalises email, pregnancy and phone
// fields, and validates what it can. Errors wrap ErrInvalidInput.
func (in *Input) Normalize(phones *phone.Normalizer) error {
	for _, s := range in.texts() {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}

	if in.Email != nil && *in.Email != "" {
		*in.Email = strings.ToLower(*in.Email)
		if _, err := mail.ParseAddress(*in.Email); err != nil {
			return invalid(ErrInvalidEmail)
		}
	}

	if in.Embarazo != nil {
		*in.Embarazo = strings.ToLower(*in.Embarazo)
		switch *in.Embarazo {
		case model.EmbarazoSi, model.EmbarazoNo, "":
		default:
			return invalid(ErrInvalidEmbarazo)
		}
	}

	if in.FechaInicio != nil && *in.FechaInicio != "" {
		t, ok := pregnancy.ParseDate(*in.FechaInicio, time.UTC)
		if !ok {
			return invalid(ErrInvalidStartDate)
		}
		*in.FechaInicio = t.Format(pregnancy.DateLayout)
	}

	if in.SemanasEmbarazo != nil {
		if w := *in.SemanasEmbarazo; w < minWeeks || w > maxWeeks {
			return invalid(ErrInvalidWeeks)
		}
	}

	if phones != nil {
		for _, s := range []*string{in.Telefono, in.TelefonoAlterno, in.TelefonoEmergencia} {
			if s != nil {
				*s = phones.Normalize(*s)
			}
		}
	}
	return nil
}

// applyTo copies the set fields of in onto p.
func (in *Input) applyTo(p *model.Patient) {
	set(&p.Codigo, in.Codigo)
	set(&p.NombreCompleto, in.NombreCompleto)
	set(&p.NumeroIdentidad, in.NumeroIdentidad)
	set(&p.FechaNacimiento, in.FechaNacimiento)
	set(&p.Sexo, in.Sexo)
	set(&p.Telefono, in.Telefono)
	set(&p.TelefonoAlterno, in.TelefonoAlterno)
	set(&p.Email, in.Email)
	set(&p.Direccion, in.Direccion)
	set(&p.Ocupacion, in.Ocupacion)
	set(&p.ContactoEmergencia, in.ContactoEmergencia)
	set(&p.TelefonoEmergencia, in.TelefonoEmergencia)
	set(&p.Alergias, in.Alergias)
	set(&p.Medicamentos, in.Medicamentos)
	set(&p.Enfermedades, in.Enfermedades)
	set(&p.Fuma, in.Fuma)
	set(&p.Alcohol, in.Alcohol)
	set(&p.Bruxismo, in.Bruxismo)
	set(&p.HigieneOral, in.HigieneOral)
	set(&p.MotivoConsulta, in.MotivoConsulta)
	set(&p.ExamenExtraoral, in.ExamenExtraoral)
	set(&p.ExamenIntraoral, in.ExamenIntraoral)
	set(&p.Observaciones, in.Observaciones)
	set(&p.Embarazo, in.Embarazo)
	set(&p.FechaInicio, in.FechaInicio)
	set(&p.FirmaURL, in.FirmaURL)
	if in.SemanasEmbarazo != nil {
		w := *in.SemanasEmbarazo
		p.SemanasEmbarazo = &w
	}
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}
