package records

import (
	"net/http"

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
	api.POST("/records", h.AddRecord)
	api.GET("/patients/:id/records", h.GetRecords)
	api.POST("/permissions", h.GrantAccess)
	api.DELETE("/permissions/:doctor_id", h.RevokeAccess)
}

type addRecordRequest struct {
	ContentHash string `json:"content_hash"`
}

func (h *Handler) AddRecord(c echo.Context) error {
	var req addRecordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.ContentHash == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "content_hash is required")
	}
	caller := auth.ParticipantFromContext(c.Request().Context())
	rec, err := h.svc.AddRecord(c.Request().Context(), caller, req.ContentHash)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) GetRecords(c echo.Context) error {
	patient, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	caller := auth.ParticipantFromContext(c.Request().Context())
	pg := pagination.FromContext(c)
	items, total, err := h.svc.GetRecords(c.Request().Context(), caller, patient, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type grantRequest struct {
	DoctorID uuid.UUID `json:"doctor_id"`
}

func (h *Handler) GrantAccess(c echo.Context) error {
	var req grantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.DoctorID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "doctor_id is required")
	}
	caller := auth.ParticipantFromContext(c.Request().Context())
	if err := h.svc.GrantAccess(c.Request().Context(), caller, req.DoctorID); err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) RevokeAccess(c echo.Context) error {
	doctor, err := uuid.Parse(c.Param("doctor_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	caller := auth.ParticipantFromContext(c.Request().Context())
	if err := h.svc.RevokeAccess(c.Request().Context(), caller, doctor); err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
