package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/dashboard"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/search"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/authorize"
)

// AccessHandler serves the role-driven read endpoints: capabilities, route
// checks, global search and the dashboard.
type AccessHandler struct {
	search    search.Service
	dashboard dashboard.Service
}

func NewAccessHandler(searchSvc search.Service, dashboardSvc dashboard.Service) *AccessHandler {
	return &AccessHandler{search: searchSvc, dashboard: dashboardSvc}
}

// GET /access/permissions
func (h *AccessHandler) Permissions(c fiber.Ctx) error {
	role, valid := callerRole(c)
	if !valid {
		return unauthorized(c)
	}
	caps, err := authorize.CapabilitiesFromContext(c.Context())
	if err != nil {
		return unauthorized(c)
	}
	routes := []string{}
	for _, r := range authorize.RouteTable() {
		if authorize.CanAccessRoute(string(role), r.Path) {
			routes = append(routes, r.Path)
		}
	}
	return ok(c, fiber.Map{
		"role":         role,
		"capabilities": caps,
		"granted":      caps.Granted(),
		"routes":       routes,
	})
}

// GET /access/route?path=/patients/new
func (h *AccessHandler) Route(c fiber.Ctx) error {
	role, valid := callerRole(c)
	if !valid {
		return unauthorized(c)
	}
	path := c.Query("path")
	if path == "" {
		return badRequest(c, "path is required")
	}
	return ok(c, fiber.Map{
		"path":    path,
		"allowed": authorize.CanAccessRoute(string(role), path),
	})
}

// GET /search?q=
func (h *AccessHandler) Search(c fiber.Ctx) error {
	role, valid := callerRole(c)
	if !valid {
		return unauthorized(c)
	}
	res := h.search.Search(c.Context(), string(role), c.Query("q"))
	return ok(c, fiber.Map{
		"results": res,
		"groups":  res.Groups(),
		"total":   res.Total(),
	})
}

// GET /dashboard
func (h *AccessHandler) Dashboard(c fiber.Ctx) error {
	role, valid := callerRole(c)
	if !valid {
		return unauthorized(c)
	}
	return ok(c, h.dashboard.Overview(c.Context(), string(role)))
}
