package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/api/http/handler"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/authorize"
)

func (r *Router) registerPromotionRoutes(api fiber.Router, h *handler.PromotionHandler, authRequired fiber.Handler, requirePerm permFunc) {
	promos := api.Group("/promotions", authRequired)
	promos.Get("/", requirePerm(authorize.ResourcePromotion, authorize.ActionList), h.List)
	promos.Get("/active", requirePerm(authorize.ResourcePromotion, authorize.ActionList), h.Active)
	promos.Post("/", requirePerm(authorize.ResourcePromotion, authorize.ActionCreate), h.Create)
	promos.Get("/:id", requirePerm(authorize.ResourcePromotion, authorize.ActionRead), h.Get)
	promos.Patch("/:id", requirePerm(authorize.ResourcePromotion, authorize.ActionUpdate), h.Update)
	promos.Delete("/:id", requirePerm(authorize.ResourcePromotion, authorize.ActionDelete), h.Delete)
}
