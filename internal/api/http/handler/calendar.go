package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/calendar"
)

// defaultEventWindow is used when the client sends no range.
const defaultEventWindow = 7 * 24 * time.Hour

type CalendarHandler struct {
	svc calendar.Service
	now func() time.Time
}

func NewCalendarHandler(svc calendar.Service) *CalendarHandler {
	return &CalendarHandler{svc: svc, now: time.Now}
}

func mapCalendarError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, calendar.ErrCalendarDisabled):
		return serviceUnavailable(c, err.Error())
	case errors.Is(err, calendar.ErrEventNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, calendar.ErrInvalidEvent),
		errors.Is(err, calendar.ErrInvalidRange):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

// GET /calendar/events?from=RFC3339&to=RFC3339
func (h *CalendarHandler) List(c fiber.Ctx) error {
	from, to := h.now(), time.Time{}
	if s := c.Query("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return badRequest(c, "from must be an RFC 3339 timestamp")
		}
		from = t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return badRequest(c, "to must be an RFC 3339 timestamp")
		}
		to = t
	} else {
		to = from.Add(defaultEventWindow)
	}

	events, err := h.svc.ListEvents(c.Context(), from, to)
	if err != nil {
		return mapCalendarError(c, err)
	}
	return ok(c, events)
}

// GET /calendar/events/today
func (h *CalendarHandler) Today(c fiber.Ctx) error {
	events, err := h.svc.Today(c.Context())
	if err != nil {
		return mapCalendarError(c, err)
	}
	return ok(c, events)
}

// GET /calendar/events/:id
func (h *CalendarHandler) Get(c fiber.Ctx) error {
	ev, err := h.svc.GetEvent(c.Context(), c.Params("id"))
	if err != nil {
		return mapCalendarError(c, err)
	}
	return ok(c, ev)
}

// POST /calendar/events
func (h *CalendarHandler) Create(c fiber.Ctx) error {
	var in calendar.EventInput
	if err := c.Bind().JSON(&in); err != nil {
		return badRequest(c, "invalid request body")
	}
	ev, err := h.svc.CreateEvent(c.Context(), in)
	if err != nil {
		return mapCalendarError(c, err)
	}
	return created(c, ev)
}

// PATCH /calendar/events/:id
func (h *CalendarHandler) Update(c fiber.Ctx) error {
	var in calendar.EventInput
	if err := c.Bind().JSON(&in); err != nil {
		return badRequest(c, "invalid request body")
	}
	ev, err := h.svc.UpdateEvent(c.Context(), c.Params("id"), in)
	if err != nil {
		return mapCalendarError(c, err)
	}
	return ok(c, ev)
}

// DELETE /calendar/events/:id
func (h *CalendarHandler) Delete(c fiber.Ctx) error {
	if err := h.svc.DeleteEvent(c.Context(), c.Params("id")); err != nil {
		return mapCalendarError(c, err)
	}
	return noContent(c)
}
