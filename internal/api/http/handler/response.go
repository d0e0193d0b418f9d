package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/authorize"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/reqctx"
)

func ok(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"data": data})
}

func created(c fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": data})
}

func noContent(c fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func unauthorized(c fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
}

func unauthorizedMsg(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
}

func forbidden(c fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
}

func notFound(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msg})
}

func conflict(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": msg})
}

func tooLarge(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": msg})
}

func tooManyRequests(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": msg})
}

func serviceUnavailable(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": msg})
}

// internalError hides the cause; the request id lets support find it in logs.
func internalError(c fiber.Ctx) error {
	body := fiber.Map{"error": "internal server error"}
	if rid := reqctx.RequestIDFromContext(c.Context()); rid != "" {
		body["request_id"] = rid
	}
	return c.Status(fiber.StatusInternalServerError).JSON(body)
}

// ---------------------------------------------------------------------------
// Request helpers
// ---------------------------------------------------------------------------

func paramID(c fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

// callerRole is the normalised role of the authenticated caller.
func callerRole(c fiber.Ctx) (authorize.Role, bool) {
	role, err := authorize.RoleFromContext(c.Context())
	return role, err == nil
}

// callerID is the authenticated caller's user id.
func callerID(c fiber.Ctx) (uuid.UUID, bool) {
	id, err := authorize.UserIDFromContext(c.Context())
	return id, err == nil
}
