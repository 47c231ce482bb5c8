package funds

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/careledger/careledger/internal/errs"
	"github.com/careledger/careledger/internal/platform/auth"
)

// Handler exposes the caller's ledger account over HTTP. Deposit stands in
// for the external payment rail that tops up participant accounts.
type Handler struct {
	ledger Ledger
}

func NewHandler(ledger Ledger) *Handler {
	return &Handler{ledger: ledger}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/funds/balance", h.GetBalance)
	api.POST("/funds/deposit", h.Deposit)
}

func (h *Handler) GetBalance(c echo.Context) error {
	caller := auth.ParticipantFromContext(c.Request().Context())
	balance, err := h.ledger.Balance(c.Request().Context(), ParticipantAccount(caller))
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int64{"balance": balance})
}

type depositRequest struct {
	Amount int64 `json:"amount"`
}

func (h *Handler) Deposit(c echo.Context) error {
	var req depositRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Amount <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "amount must be positive")
	}
	caller := auth.ParticipantFromContext(c.Request().Context())
	if err := h.ledger.Credit(c.Request().Context(), ParticipantAccount(caller), req.Amount); err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	balance, err := h.ledger.Balance(c.Request().Context(), ParticipantAccount(caller))
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int64{"balance": balance})
}
