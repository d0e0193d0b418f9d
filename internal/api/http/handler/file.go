package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	svcfile "github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/file"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/patient"
)

type FileHandler struct {
	svc svcfile.Service
}

func NewFileHandler(svc svcfile.Service) *FileHandler {
	return &FileHandler{svc: svc}
}

func mapFileError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, svcfile.ErrFileNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, svcfile.ErrAccessDenied):
		return forbidden(c)
	case errors.Is(err, svcfile.ErrFileTooLarge):
		return tooLarge(c, err.Error())
	case errors.Is(err, svcfile.ErrEmptyFile):
		return badRequest(c, err.Error())
	default:
		return mapPatientError(c, err)
	}
}

// POST /patients/:id/files
// Multipart upload; form fields "file" and optional "kind" (archivo|radiografia).
func (h *FileHandler) Upload(c fiber.Ctx) error {
	patientID, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "invalid patient id")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file field is required")
	}

	result, err := h.svc.Upload(c.Context(), patientID, c.FormValue("kind", patient.KindArchivo), fh)
	if err != nil {
		return mapFileError(c, err)
	}

	return created(c, result)
}

// GET /patients/:id/files/download?key=
// Returns a presigned download URL.
func (h *FileHandler) Download(c fiber.Ctx) error {
	patientID, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "invalid patient id")
	}
	key := c.Query("key")
	if key == "" {
		return badRequest(c, "key is required")
	}

	url, err := h.svc.GetDownloadURL(c.Context(), patientID, key)
	if err != nil {
		return mapFileError(c, err)
	}

	return ok(c, fiber.Map{"url": url})
}

// DELETE /patients/:id/files?key=
func (h *FileHandler) Delete(c fiber.Ctx) error {
	patientID, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "invalid patient id")
	}
	key := c.Query("key")
	if key == "" {
		return badRequest(c, "key is required")
	}

	p, err := h.svc.Delete(c.Context(), patientID, key)
	if err != nil {
		return mapFileError(c, err)
	}
	return ok(c, p)
}
