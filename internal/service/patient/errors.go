package patient

import "errors"

var (
	ErrPatientNotFound  = errors.New("patient not found")
	ErrInvalidInput     = errors.New("invalid patient input")
	ErrNameRequired     = errors.New("nombre_completo is required")
	ErrInvalidEmbarazo  = errors.New("embarazo must be si, no or empty")
	ErrInvalidStartDate = errors.New("fecha_inicio must be a YYYY-MM-DD date")
	ErrInvalidWeeks     = errors.New("semanas_embarazo must be between 1 and 42")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrInvalidFileKind  = errors.New("file kind must be archivo or radiografia")
	ErrFileNotFound     = errors.New("file not attached to patient")
)
