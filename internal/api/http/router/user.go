package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/api/http/handler"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/authorize"
)

func (r *Router) registerUserRoutes(api fiber.Router, h *handler.UserHandler, authRequired fiber.Handler, requirePerm permFunc) {
	me := api.Group("/me", authRequired)
	me.Get("/", h.Me)
	me.Post("/tutorials/:key", h.MarkTutorialSeen)

	users := api.Group("/users", authRequired)
	users.Get("/", requirePerm(authorize.ResourceUser, authorize.ActionList), h.List)
	users.Post("/", requirePerm(authorize.ResourceUser, authorize.ActionCreate), h.Create)
	users.Patch("/:id/role", requirePerm(authorize.ResourceUser, authorize.ActionUpdate), h.ChangeRole)
	users.Patch("/:id/active", requirePerm(authorize.ResourceUser, authorize.ActionUpdate), h.SetActive)
}
