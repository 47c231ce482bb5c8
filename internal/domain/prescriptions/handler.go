package prescriptions

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
	api.POST("/appointments/:id/prescriptions", h.Add)
	api.GET("/appointments/:id/prescriptions", h.List)
}

func appointmentID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	return id, nil
}

type addRequest struct {
	ContentHash string `json:"content_hash"`
}

func (h *Handler) Add(c echo.Context) error {
	id, err := appointmentID(c)
	if err != nil {
		return err
	}
	var req addRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.ContentHash == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "content_hash is required")
	}
	caller := auth.ParticipantFromContext(c.Request().Context())
	p, err := h.svc.Add(c.Request().Context(), caller, id, req.ContentHash)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) List(c echo.Context) error {
	id, err := appointmentID(c)
	if err != nil {
		return err
	}
	caller := auth.ParticipantFromContext(c.Request().Context())
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByAppointment(c.Request().Context(), caller, id, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
