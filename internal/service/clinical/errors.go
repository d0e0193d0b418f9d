package clinical

import "errors"

var (
	ErrTreatmentNotFound          = errors.New("treatment not found")
	ErrCompletedTreatmentNotFound = errors.New("completed treatment not found")
	ErrOdontogramNotFound         = errors.New("odontogram not found")
	ErrConsentNotFound            = errors.New("consent not found")
	ErrConsentAlreadySigned       = errors.New("consent already signed")
	ErrPatientNotFound            = errors.New("patient not found")
	ErrInvalidInput               = errors.New("invalid input")
	ErrEmptySignature             = errors.New("signature image is empty")
)
