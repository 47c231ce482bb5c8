package appointments

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careledger/careledger/internal/errs"
	"github.com/careledger/careledger/internal/platform/auth"
	"github.com/careledger/careledger/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/appointments", h.Schedule)
	api.GET("/appointments", h.List)
	api.GET("/appointments/:id", h.Get)
	api.POST("/appointments/:id/confirm", h.Confirm)
	api.POST("/appointments/:id/cancel", h.Cancel)
	api.POST("/appointments/:id/payment", h.SendPayment)
}

func appointmentID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	return id, nil
}

type scheduleRequest struct {
	DoctorID    uuid.UUID `json:"doctor_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Description string    `json:"description"`
	Fee         int64     `json:"fee"`
}

func (h *Handler) Schedule(c echo.Context) error {
	var req scheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.DoctorID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "doctor_id is required")
	}
	caller := auth.ParticipantFromContext(c.Request().Context())
	a, err := h.svc.Schedule(c.Request().Context(), caller, req.DoctorID, req.ScheduledAt, req.Description, req.Fee)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := appointmentID(c)
	if err != nil {
		return err
	}
	caller := auth.ParticipantFromContext(c.Request().Context())
	a, err := h.svc.Get(c.Request().Context(), caller, id)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

// List returns the caller's appointments, as patient by default or as
// doctor with ?as=doctor.
func (h *Handler) List(c echo.Context) error {
	caller := auth.ParticipantFromContext(c.Request().Context())
	pg := pagination.FromContext(c)
	var (
		items []*Appointment
		total int
		err   error
	)
	if c.QueryParam("as") == "doctor" {
		items, total, err = h.svc.ListByDoctor(c.Request().Context(), caller, pg.Limit, pg.Offset)
	} else {
		items, total, err = h.svc.ListByPatient(c.Request().Context(), caller, pg.Limit, pg.Offset)
	}
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Confirm(c echo.Context) error {
	return h.transition(c, h.svc.Confirm)
}

func (h *Handler) Cancel(c echo.Context) error {
	return h.transition(c, h.svc.Cancel)
}

func (h *Handler) SendPayment(c echo.Context) error {
	return h.transition(c, h.svc.SendPayment)
}

func (h *Handler) transition(c echo.Context, op func(ctx context.Context, caller uuid.UUID, id uint64) error) error {
	id, err := appointmentID(c)
	if err != nil {
		return err
	}
	caller := auth.ParticipantFromContext(c.Request().Context())
	if err := op(c.Request().Context(), caller, id); err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
