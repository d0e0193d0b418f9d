package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/api/http/handler"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/authorize"
)

func (r *Router) registerCalendarRoutes(api fiber.Router, h *handler.CalendarHandler, authRequired fiber.Handler, requirePerm permFunc) {
	events := api.Group("/calendar/events", authRequired)
	events.Get("/", requirePerm(authorize.ResourceCalendarEvent, authorize.ActionList), h.List)
	events.Get("/today", requirePerm(authorize.ResourceCalendarEvent, authorize.ActionList), h.Today)
	events.Post("/", requirePerm(authorize.ResourceCalendarEvent, authorize.ActionCreate), h.Create)
	events.Get("/:id", requirePerm(authorize.ResourceCalendarEvent, authorize.ActionRead), h.Get)
	events.Patch("/:id", requirePerm(authorize.ResourceCalendarEvent, authorize.ActionUpdate), h.Update)
	events.Delete("/:id", requirePerm(authorize.ResourceCalendarEvent, authorize.ActionDelete), h.Delete)
}
