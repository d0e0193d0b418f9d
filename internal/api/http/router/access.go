package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/api/http/handler"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/authorize"
)

func (r *Router) registerAccessRoutes(api fiber.Router, h *handler.AccessHandler, authRequired fiber.Handler, requirePerm permFunc) {
	access := api.Group("/access", authRequired)
	access.Get("/permissions", h.Permissions)
	access.Get("/route", h.Route)

	api.Get("/search", authRequired, requirePerm(authorize.ResourceSearch, authorize.ActionRead), h.Search)
	api.Get("/dashboard", authRequired, requirePerm(authorize.ResourceDashboard, authorize.ActionRead), h.Dashboard)
}
