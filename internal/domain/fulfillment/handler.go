package fulfillment

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medihub/pharmacy/internal/platform/auth"
	"github.com/medihub/pharmacy/internal/records"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Dispensing is pharmacist work end to end.
	g := api.Group("", auth.RequireRole(records.RolePharmacist))
	g.POST("/prescriptions/:id/validate", h.Validate)
	g.POST("/bills/:id/pay", h.Pay)
}

func (h *Handler) Validate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	res, err := h.svc.Validate(c.Request().Context(), id)
	switch {
	case errors.Is(err, records.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "prescription not found")
	case errors.Is(err, records.ErrAlreadyProcessed):
		return echo.NewHTTPError(http.StatusConflict, "prescription already processed")
	case errors.Is(err, records.ErrUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "fulfillment store unavailable, try again later")
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if !res.Approved {
		return c.JSON(http.StatusUnprocessableEntity, res)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) Pay(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	alreadyPaid, err := h.svc.RecordPayment(c.Request().Context(), id)
	switch {
	case errors.Is(err, records.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "bill not found")
	case errors.Is(err, records.ErrUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "fulfillment store unavailable, try again later")
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"bill_id":      id,
		"already_paid": alreadyPaid,
	})
}
