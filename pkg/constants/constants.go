package constants

const (
	AppName = "diamond"

	ConfigName   = "config"
	ConfigFormat = "yaml"

	// EnvPrefix prefixes environment overrides, e.g. DIAMOND_DATABASE_HOST.
	EnvPrefix = "DIAMOND"

	// NATS subject roots
	SubjectEventCreated   = "diamond.event.created"
	SubjectConsentSigned  = "diamond.consent.signed"
	SubjectPatientCreated = "diamond.patient.created"
)
