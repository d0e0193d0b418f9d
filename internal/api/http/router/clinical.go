package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/api/http/handler"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/authorize"
)

func (r *Router) registerClinicalRoutes(api fiber.Router, h *handler.ClinicalHandler, authRequired fiber.Handler, requirePerm permFunc) {
	treatments := api.Group("/treatments", authRequired)
	treatments.Get("/", requirePerm(authorize.ResourceTreatment, authorize.ActionList), h.ListTreatments)
	treatments.Post("/", requirePerm(authorize.ResourceTreatment, authorize.ActionCreate), h.CreateTreatment)
	treatments.Get("/:id", requirePerm(authorize.ResourceTreatment, authorize.ActionRead), h.GetTreatment)
	treatments.Patch("/:id", requirePerm(authorize.ResourceTreatment, authorize.ActionUpdate), h.UpdateTreatment)
	treatments.Delete("/:id", requirePerm(authorize.ResourceTreatment, authorize.ActionDelete), h.DeleteTreatment)

	api.Delete("/completed-treatments/:id", authRequired,
		requirePerm(authorize.ResourceCompletedTreatment, authorize.ActionDelete), h.DeleteCompleted)

	api.Get("/odontograms/:id", authRequired,
		requirePerm(authorize.ResourceOdontogram, authorize.ActionRead), h.GetOdontogram)

	api.Post("/consents/:id/sign", authRequired,
		requirePerm(authorize.ResourceConsent, authorize.ActionSign), h.SignConsent)
}
