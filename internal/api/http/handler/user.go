package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/user"
	pasetotoken "github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/paseto"
)

type UserHandler struct {
	svc user.Service
}

func NewUserHandler(svc user.Service) *UserHandler {
	return &UserHandler{svc: svc}
}

func mapUserError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, user.ErrEmailAlreadyExists),
		errors.Is(err, user.ErrLastAdmin):
		return conflict(c, err.Error())
	case errors.Is(err, user.ErrSelfModification):
		return forbidden(c)
	case errors.Is(err, user.ErrInvalidEmail),
		errors.Is(err, user.ErrNameRequired),
		errors.Is(err, user.ErrPasswordTooShort),
		errors.Is(err, user.ErrInvalidRole),
		errors.Is(err, user.ErrInvalidTutorial):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

// GET /api/v1/me
func (h *UserHandler) Me(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	profile, err := h.svc.Me(c.Context(), claims.UserID)
	if err != nil {
		return mapUserError(c, err)
	}
	return ok(c, profile)
}

// POST /api/v1/me/tutorials/:key
func (h *UserHandler) MarkTutorialSeen(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	seen, err := h.svc.MarkTutorialSeen(c.Context(), claims.UserID, c.Params("key"))
	if err != nil {
		return mapUserError(c, err)
	}
	return ok(c, fiber.Map{"tutorials_seen": seen})
}

// GET /api/v1/users
func (h *UserHandler) List(c fiber.Ctx) error {
	var q struct {
		Page    int `query:"page"`
		PerPage int `query:"per_page"`
	}
	_ = c.Bind().Query(&q)

	result, err := h.svc.List(c.Context(), q.Page, q.PerPage)
	if err != nil {
		return mapUserError(c, err)
	}
	return ok(c, result)
}

// POST /api/v1/users
func (h *UserHandler) Create(c fiber.Ctx) error {
	var body user.CreateRequest
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	u, err := h.svc.Create(c.Context(), body)
	if err != nil {
		return mapUserError(c, err)
	}
	return created(c, u)
}

// PATCH /api/v1/users/:id/role
func (h *UserHandler) ChangeRole(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "invalid user id")
	}

	var body struct {
		Role string `json:"role"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	u, err := h.svc.ChangeRole(c.Context(), claims.UserID, id, body.Role)
	if err != nil {
		return mapUserError(c, err)
	}
	return ok(c, u)
}

// PATCH /api/v1/users/:id/active
func (h *UserHandler) SetActive(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "invalid user id")
	}

	var body struct {
		Active *bool `json:"active"`
	}
	if err := c.Bind().JSON(&body); err != nil || body.Active == nil {
		return badRequest(c, "active is required")
	}

	u, err := h.svc.SetActive(c.Context(), claims.UserID, id, *body.Active)
	if err != nil {
		return mapUserError(c, err)
	}
	return ok(c, u)
}
