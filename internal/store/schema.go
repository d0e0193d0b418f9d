package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// textSize makes string columns map to TEXT on Postgres.
const textSize = 2147483647

func text(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeString, Size: textSize, Default: ""}
}

func flag(name string, def bool) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeBool, Default: def}
}

func ts(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeTime}
}

func columnNames(cols []*schema.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}

func id() *schema.Column {
	return &schema.Column{Name: "id", Type: field.TypeUUID, Unique: true}
}

var (
	// UsersColumns holds the columns for the "users" table.
	UsersColumns = []*schema.Column{
		id(),
		{Name: "email", Type: field.TypeString, Unique: true},
		text("full_name"),
		text("password_hash"),
		{Name: "role", Type: field.TypeString, Default: "staff"},
		flag("is_active", true),
		{Name: "tutorials_seen", Type: field.TypeJSON, Nullable: true},
		ts("created_at"),
		ts("updated_at"),
	}
	UsersTable = &schema.Table{
		Name:       "users",
		Columns:    UsersColumns,
		PrimaryKey: []*schema.Column{UsersColumns[0]},
		Indexes: []*schema.Index{
			{Name: "user_role", Columns: []*schema.Column{UsersColumns[4]}},
		},
	}

	// PatientsColumns holds the columns for the "patients" table.
	PatientsColumns = []*schema.Column{
		id(),
		text("codigo"),
		text("nombre_completo"),
		text("numero_identidad"),
		text("fecha_nacimiento"),
		text("sexo"),
		text("telefono"),
		text("telefono_alterno"),
		text("email"),
		text("direccion"),
		text("ocupacion"),
		text("contacto_emergencia"),
		text("telefono_emergencia"),
		text("alergias"),
		text("medicamentos"),
		text("enfermedades"),
		flag("fuma", false),
		flag("alcohol", false),
		flag("bruxismo", false),
		text("higiene_oral"),
		text("motivo_consulta"),
		text("examen_extraoral"),
		text("examen_intraoral"),
		text("observaciones"),
		text("embarazo"),
		text("fecha_inicio"),
		{Name: "semanas_embarazo", Type: field.TypeInt, Nullable: true},
		flag("embarazo_activo", false),
		{Name: "embarazo_fecha_fin", Type: field.TypeString, Nullable: true},
		{Name: "archivos_urls", Type: field.TypeJSON, Nullable: true},
		{Name: "radiografias_urls", Type: field.TypeJSON, Nullable: true},
		text("firma_url"),
		ts("created_at"),
		ts("updated_at"),
	}
	PatientsTable = &schema.Table{
		Name:       "patients",
		Columns:    PatientsColumns,
		PrimaryKey: []*schema.Column{PatientsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "patient_nombre_completo", Columns: []*schema.Column{PatientsColumns[2]}},
			{Name: "patient_numero_identidad", Columns: []*schema.Column{PatientsColumns[3]}},
			{Name: "patient_embarazo", Columns: []*schema.Column{PatientsColumns[24]}},
		},
	}

	// TreatmentsColumns holds the columns for the "treatments" table.
	TreatmentsColumns = []*schema.Column{
		id(),
		text("codigo"),
		text("nombre"),
		text("descripcion"),
		text("categoria"),
		{Name: "precio", Type: field.TypeFloat64, Default: 0},
		flag("activo", true),
		ts("created_at"),
	}
	TreatmentsTable = &schema.Table{
		Name:       "treatments",
		Columns:    TreatmentsColumns,
		PrimaryKey: []*schema.Column{TreatmentsColumns[0]},
	}

	// CompletedTreatmentsColumns holds the columns for the "completed_treatments" table.
	CompletedTreatmentsColumns = []*schema.Column{
		id(),
		{Name: "patient_id", Type: field.TypeUUID},
		text("patient_name"),
		{Name: "treatment_id", Type: field.TypeUUID, Nullable: true},
		text("treatment_name"),
		text("doctor_name"),
		text("fecha"),
		text("notas"),
		{Name: "precio", Type: field.TypeFloat64, Default: 0},
		ts("created_at"),
	}
	CompletedTreatmentsTable = &schema.Table{
		Name:       "completed_treatments",
		Columns:    CompletedTreatmentsColumns,
		PrimaryKey: []*schema.Column{CompletedTreatmentsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "completedtreatment_patient_id", Columns: []*schema.Column{CompletedTreatmentsColumns[1]}},
			{Name: "completedtreatment_patient_name", Columns: []*schema.Column{CompletedTreatmentsColumns[2]}},
		},
	}

	// OdontogramsColumns holds the columns for the "odontograms" table.
	OdontogramsColumns = []*schema.Column{
		id(),
		{Name: "patient_id", Type: field.TypeUUID},
		text("doctor_name"),
		{Name: "piezas", Type: field.TypeJSON, Nullable: true},
		text("notas"),
		ts("created_at"),
	}
	OdontogramsTable = &schema.Table{
		Name:       "odontograms",
		Columns:    OdontogramsColumns,
		PrimaryKey: []*schema.Column{OdontogramsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "odontogram_patient_id", Columns: []*schema.Column{OdontogramsColumns[1]}},
		},
	}

	// ConsentsColumns holds the columns for the "consents" table.
	ConsentsColumns = []*schema.Column{
		id(),
		{Name: "patient_id", Type: field.TypeUUID},
		text("tipo"),
		text("titulo"),
		text("contenido"),
		text("firma_url"),
		flag("firmado", false),
		{Name: "firmado_at", Type: field.TypeTime, Nullable: true},
		ts("created_at"),
	}
	ConsentsTable = &schema.Table{
		Name:       "consents",
		Columns:    ConsentsColumns,
		PrimaryKey: []*schema.Column{ConsentsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "consent_patient_id", Columns: []*schema.Column{ConsentsColumns[1]}},
		},
	}

	// PromotionsColumns holds the columns for the "promotions" table.
	PromotionsColumns = []*schema.Column{
		id(),
		text("titulo"),
		text("descripcion"),
		{Name: "descuento", Type: field.TypeFloat64, Default: 0},
		text("codigo"),
		text("fecha_inicio"),
		text("fecha_fin"),
		flag("activa", true),
		ts("created_at"),
	}
	PromotionsTable = &schema.Table{
		Name:       "promotions",
		Columns:    PromotionsColumns,
		PrimaryKey: []*schema.Column{PromotionsColumns[0]},
	}

	// NotificationsColumns holds the columns for the "notifications" table.
	NotificationsColumns = []*schema.Column{
		id(),
		{Name: "user_id", Type: field.TypeUUID},
		{Name: "type", Type: field.TypeString},
		text("title"),
		text("body"),
		{Name: "data", Type: field.TypeJSON, Nullable: true},
		flag("is_read", false),
		ts("created_at"),
	}
	NotificationsTable = &schema.Table{
		Name:       "notifications",
		Columns:    NotificationsColumns,
		PrimaryKey: []*schema.Column{NotificationsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "notification_user_id_is_read", Columns: []*schema.Column{NotificationsColumns[1], NotificationsColumns[6]}},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		UsersTable,
		PatientsTable,
		TreatmentsTable,
		CompletedTreatmentsTable,
		OdontogramsTable,
		ConsentsTable,
		PromotionsTable,
		NotificationsTable,
	}
)
