package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/api/http/handler"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/authorize"
)

func (r *Router) registerPatientRoutes(
	api fiber.Router,
	ph *handler.PatientHandler,
	fh *handler.FileHandler,
	ch *handler.ClinicalHandler,
	authRequired fiber.Handler,
	requirePerm permFunc,
) {
	patients := api.Group("/patients", authRequired)

	// Patient CRUD
	patients.Get("/", requirePerm(authorize.ResourcePatient, authorize.ActionList), ph.List)
	patients.Post("/", requirePerm(authorize.ResourcePatient, authorize.ActionCreate), ph.Create)

	p := patients.Group("/:id")
	p.Get("/", requirePerm(authorize.ResourcePatient, authorize.ActionRead), ph.Get)
	p.Patch("/", requirePerm(authorize.ResourcePatient, authorize.ActionUpdate), ph.Update)
	p.Delete("/", requirePerm(authorize.ResourcePatient, authorize.ActionDelete), ph.Delete)
	p.Get("/pregnancy", requirePerm(authorize.ResourcePatient, authorize.ActionRead), ph.Pregnancy)
	p.Get("/summary", requirePerm(authorize.ResourcePatient, authorize.ActionRead), ph.Summary)

	// Files
	p.Post("/files", requirePerm(authorize.ResourcePatientFile, authorize.ActionCreate), fh.Upload)
	p.Get("/files/download", requirePerm(authorize.ResourcePatientFile, authorize.ActionRead), fh.Download)
	p.Delete("/files", requirePerm(authorize.ResourcePatientFile, authorize.ActionDelete), fh.Delete)

	// Clinical records
	p.Get("/completed-treatments", requirePerm(authorize.ResourceCompletedTreatment, authorize.ActionList), ch.ListCompleted)
	p.Post("/completed-treatments", requirePerm(authorize.ResourceCompletedTreatment, authorize.ActionCreate), ch.CreateCompleted)
	p.Get("/odontograms", requirePerm(authorize.ResourceOdontogram, authorize.ActionList), ch.ListOdontograms)
	p.Post("/odontograms", requirePerm(authorize.ResourceOdontogram, authorize.ActionCreate), ch.CreateOdontogram)
	p.Get("/consents", requirePerm(authorize.ResourceConsent, authorize.ActionList), ch.ListConsents)
	p.Post("/consents", requirePerm(authorize.ResourceConsent, authorize.ActionCreate), ch.CreateConsent)
}
