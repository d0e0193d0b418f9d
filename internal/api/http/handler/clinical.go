package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/clinical"
)

// maxSignatureBytes bounds the signature image of a consent.
const maxSignatureBytes = 2 << 20

type ClinicalHandler struct {
	svc clinical.Service
}

func NewClinicalHandler(svc clinical.Service) *ClinicalHandler {
	return &ClinicalHandler{svc: svc}
}

func mapClinicalError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, clinical.ErrTreatmentNotFound),
		errors.Is(err, clinical.ErrCompletedTreatmentNotFound),
		errors.Is(err, clinical.ErrOdontogramNotFound),
		errors.Is(err, clinical.ErrConsentNotFound),
		errors.Is(err, clinical.ErrPatientNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, clinical.ErrConsentAlreadySigned):
		return conflict(c, err.Error())
	case errors.Is(err, clinical.ErrInvalidInput),
		errors.Is(err, clinical.ErrEmptySignature):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

// ---------------------------------------------------------------------------
// Treatment catalogue
// ---------------------------------------------------------------------------

// GET /treatments?active=true
func (h *ClinicalHandler) ListTreatments(c fiber.Ctx) error {
	items, err := h.svc.ListTreatments(c.Context(), fiber.Query[bool](c, "active"))
	if err != nil {
		return mapClinicalError(c, err)
	}
	return ok(c, items)
}

// GET /treatments/:id
func (h *ClinicalHandler) GetTreatment(c fiber.Ctx) error {
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "invalid treatment id")
	}
	t, err := h.svc.GetTreatment(c.Context(), id)
	if err != nil {
		return mapClinicalError(c, err)
	}
	return ok(c, t)
}

// POST /treatments
func (h *ClinicalHandler) CreateTreatment(c fiber.Ctx) error {
	var in clinical.TreatmentInput
	if err := c.Bind().JSON(&in); err != nil {
		return badRequest(c, "invalid request body")
	}
	t, err := h.svc.CreateTreatment(c.Context(), in)
	if err != nil {
		return mapClinicalError(c, err)
	}
	return created(c, t)
}

// PATCH /treatments/:id
func (h *ClinicalHandler) UpdateTreatment(c fiber.Ctx) error {
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "invalid treatment id")
	}
	var in clinical.TreatmentInput
	if err := c.Bind().JSON(&in); err != nil {
		return badRequest(c, "invalid request body")
	}
	t, err := h.svc.UpdateTreatment(c.Context(), id, in)
	if err != nil {
		return mapClinicalError(c, err)
	}
	return ok(c, t)
}

// DELETE /treatments/:id
func (h *ClinicalHandler) DeleteTreatment(c fiber.Ctx) error {
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "invalid treatment id")
	}
	if err := h.svc.DeleteTreatment(c.Context(), id); err != nil {
		return mapClinicalError(c, err)
	}
	return noContent(c)
}

// ---------------------------------------------------------------------------
// Completed treatments
// ---------------------------------------------------------------------------

// GET /patients/:id/completed-treatments
func (h *ClinicalHandler) ListCompleted(c fiber.Ctx) error {
	patientID, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "invalid patient id")
	}
	items, err := h.svc.ListCompleted(c.Context(), patientID)
	if err != nil {
		return mapClinicalError(c, err)
	}
	return ok(c, items)
}

// POST /patients/:id/completed-treatments
func (h *ClinicalHandler) CreateCompleted(c fiber.Ctx) error {
	patientID, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "invalid patient id")
	}
	var req clinical.CreateCompletedRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	req.PatientID = patientID

	ct, err := h.svc.CreateCompleted(c.Context(), req)
	if err != nil {
		return mapClinicalError(c, err)
	}
	return created(c, ct)
}

// DELETE /completed-treatments/:id
func (h *ClinicalHandler) DeleteCompleted(c fiber.Ctx) error {
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "invalid completed treatment id")
	}
	if err := h.svc.DeleteCompleted(c.Context(), id); err != nil {
		return mapClinicalError(c, err)
	}
	return noContent(c)
}

// ---------------------------------------------------------------------------
// Odontograms
// ---------------------------------------------------------------------------

// GET /patients/:id/odontograms
func (h *ClinicalHandler) ListOdontograms(c fiber.Ctx) error {
	patientID, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "invalid patient id")
	}
	items, err := h.svc.ListOdontograms(c.Context(), patientID)
	if err != nil {
		return mapClinicalError(c, err)
	}
	return ok(c, items)
}

// POST /patients/:id/odontograms
func (h *ClinicalHandler) CreateOdontogram(c fiber.Ctx) error {
	patientID, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "invalid patient id")
	}
	var req clinical.CreateOdontogramRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	req.PatientID = patientID

	o, err := h.svc.CreateOdontogram(c.Context(), req)
	if err != nil {
		return mapClinicalError(c, err)
	}
	return created(c, o)
}

// GET /odontograms/:id
func (h *ClinicalHandler) GetOdontogram(c fiber.Ctx) error {
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "invalid odontogram id")
	}
	o, err := h.svc.GetOdontogram(c.Context(), id)
	if err != nil {
		return mapClinicalError(c, err)
	}
	return ok(c, o)
}

// ---------------------------------------------------------------------------
// Consents
// ---------------------------------------------------------------------------

// GET /patients/:id/consents
func (h *ClinicalHandler) ListConsents(c fiber.Ctx) error {
	patientID, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "invalid patient id")
	}
	items, err := h.svc.ListConsents(c.Context(), patientID)
	if err != nil {
		return mapClinicalError(c, err)
	}
	return ok(c, items)
}

// POST /patients/:id/consents
func (h *ClinicalHandler) CreateConsent(c fiber.Ctx) error {
	patientID, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "invalid patient id")
	}
	var req clinical.CreateConsentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	req.PatientID = patientID

	consent, err := h.svc.CreateConsent(c.Context(), req)
	if err != nil {
		return mapClinicalError(c, err)
	}
	return created(c, consent)
}

// POST /consents/:id/sign
// Multipart with the signature image in the "signature" field.
func (h *ClinicalHandler) SignConsent(c fiber.Ctx) error {
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "invalid consent id")
	}

	fh, err := c.FormFile("signature")
	if err != nil {
		return badRequest(c, "signature field is required")
	}
	if fh.Size > maxSignatureBytes {
		return tooLarge(c, "signature image is too large")
	}

	src, err := fh.Open()
	if err != nil {
		return badRequest(c, "unreadable signature")
	}
	defer src.Close()

	consent, err := h.svc.SignConsent(c.Context(), id, clinical.Signature{
		Body:        src,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
	})
	if err != nil {
		return mapClinicalError(c, err)
	}
	return ok(c, consent)
}
