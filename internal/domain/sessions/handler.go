package sessions

import (
	"net/http"
	"strconv"

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
	api.POST("/appointments/:id/sessions", h.Start)
	api.GET("/appointments/:id/sessions", h.List)
	api.POST("/sessions/:id/end", h.End)
}

func pathID(c echo.Context, what string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+what+" id")
	}
	return id, nil
}

type startRequest struct {
	Link string `json:"link"`
}

func (h *Handler) Start(c echo.Context) error {
	appointmentID, err := pathID(c, "appointment")
	if err != nil {
		return err
	}
	var req startRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Link == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "link is required")
	}
	caller := auth.ParticipantFromContext(c.Request().Context())
	sess, err := h.svc.Start(c.Request().Context(), caller, appointmentID, req.Link)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, sess)
}

func (h *Handler) End(c echo.Context) error {
	id, err := pathID(c, "session")
	if err != nil {
		return err
	}
	caller := auth.ParticipantFromContext(c.Request().Context())
	if err := h.svc.End(c.Request().Context(), caller, id); err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) List(c echo.Context) error {
	appointmentID, err := pathID(c, "appointment")
	if err != nil {
		return err
	}
	caller := auth.ParticipantFromContext(c.Request().Context())
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByAppointment(c.Request().Context(), caller, appointmentID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
