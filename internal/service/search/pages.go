package search

import "github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/model"

// Pages are the navigable screens of the web client. Search shows only the
// ones the caller's role may open.
var Pages = []model.PageDescriptor{
	{
		Title:       "Panel principal",
		Path:        "/dashboard",
		Description: "Resumen de la clínica y accesos rápidos",
		Keywords:    []string{"inicio", "dashboard", "resumen", "estadísticas"},
	},
	{
		Title:       "Pacientes",
		Path:        "/patients",
		Description: "Listado y fichas de pacientes",
		Keywords:    []string{"pacientes", "expedientes", "historia clínica"},
	},
	{
		Title:       "Nuevo paciente",
		Path:        "/patients/new",
		Description: "Formulario de ingreso de pacientes",
		Keywords:    []string{"registrar", "crear", "ingreso", "nuevo"},
	},
	{
		Title:       "Odontogramas",
		Path:        "/odontograms",
		Description: "Estado dental por pieza",
		Keywords:    []string{"dientes", "piezas", "odontograma"},
	},
	{
		Title:       "Tratamientos",
		Path:        "/treatments",
		Description: "Catálogo de tratamientos y precios",
		Keywords:    []string{"catálogo", "precios", "procedimientos"},
	},
	{
		Title:       "Tratamientos realizados",
		Path:        "/completed-treatments",
		Description: "Historial de tratamientos por paciente",
		Keywords:    []string{"historial", "realizados", "completados"},
	},
	{
		Title:       "Calendario",
		Path:        "/calendar",
		Description: "Citas y agenda de la clínica",
		Keywords:    []string{"citas", "agenda", "eventos", "calendario"},
	},
	{
		Title:       "Consentimientos",
		Path:        "/consents",
		Description: "Consentimientos informados y firmas",
		Keywords:    []string{"firmas", "consentimiento", "documentos"},
	},
	{
		Title:       "Promociones",
		Path:        "/promotions",
		Description: "Descuentos y campañas vigentes",
		Keywords:    []string{"descuentos", "ofertas", "promociones"},
	},
	{
		Title:       "Administración",
		Path:        "/admin",
		Description: "Configuración general de la clínica",
		Keywords:    []string{"administración", "configuración"},
	},
	{
		Title:       "Usuarios",
		Path:        "/settings/users",
		Description: "Cuentas de usuario y roles",
		Keywords:    []string{"usuarios", "roles", "permisos"},
	},
}
