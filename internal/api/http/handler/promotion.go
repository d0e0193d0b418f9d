package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/promotion"
)

type PromotionHandler struct {
	svc promotion.Service
}

func NewPromotionHandler(svc promotion.Service) *PromotionHandler {
	return &PromotionHandler{svc: svc}
}

func mapPromotionError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, promotion.ErrPromotionNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, promotion.ErrInvalidPromotion):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

// GET /promotions
func (h *PromotionHandler) List(c fiber.Ctx) error {
	items, err := h.svc.List(c.Context())
	if err != nil {
		return mapPromotionError(c, err)
	}
	return ok(c, items)
}

// GET /promotions/active
func (h *PromotionHandler) Active(c fiber.Ctx) error {
	items, err := h.svc.Active(c.Context())
	if err != nil {
		return mapPromotionError(c, err)
	}
	return ok(c, items)
}

// GET /promotions/:id
func (h *PromotionHandler) Get(c fiber.Ctx) error {
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "invalid promotion id")
	}
	p, err := h.svc.Get(c.Context(), id)
	if err != nil {
		return mapPromotionError(c, err)
	}
	return ok(c, p)
}

// POST /promotions
func (h *PromotionHandler) Create(c fiber.Ctx) error {
	var in promotion.Input
	if err := c.Bind().JSON(&in); err != nil {
		return badRequest(c, "invalid request body")
	}
	p, err := h.svc.Create(c.Context(), in)
	if err != nil {
		return mapPromotionError(c, err)
	}
	return created(c, p)
}

// PATCH /promotions/:id
func (h *PromotionHandler) Update(c fiber.Ctx) error {
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "invalid promotion id")
	}
	var in promotion.Input
	if err := c.Bind().JSON(&in); err != nil {
		return badRequest(c, "invalid request body")
	}
	p, err := h.svc.Update(c.Context(), id, in)
	if err != nil {
		return mapPromotionError(c, err)
	}
	return ok(c, p)
}

// DELETE /promotions/:id
func (h *PromotionHandler) Delete(c fiber.Ctx) error {
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "invalid promotion id")
	}
	if err := h.svc.Delete(c.Context(), id); err != nil {
		return mapPromotionError(c, err)
	}
	return noContent(c)
}
