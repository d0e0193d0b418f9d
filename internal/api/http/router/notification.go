package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/api/http/handler"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/authorize"
)

func (r *Router) registerNotificationRoutes(api fiber.Router, nh *handler.NotificationHandler, authRequired fiber.Handler, requirePerm permFunc) {
	notifs := api.Group("/notifications", authRequired)

	notifs.Get("/", requirePerm(authorize.ResourceNotification, authorize.ActionList), nh.List)
	notifs.Get("/unread-count", requirePerm(authorize.ResourceNotification, authorize.ActionRead), nh.UnreadCount)
	notifs.Patch("/read-all", requirePerm(authorize.ResourceNotification, authorize.ActionUpdate), nh.MarkAllRead)
	notifs.Patch("/:id/read", requirePerm(authorize.ResourceNotification, authorize.ActionUpdate), nh.MarkRead)
}
