package billing

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medihub/pharmacy/internal/platform/auth"
	"github.com/medihub/pharmacy/internal/records"
	"github.com/medihub/pharmacy/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/bills/:id", h.Get,
		auth.RequireRole(records.RoleAdmin, records.RolePharmacist))
	api.GET("/bills/:id/invoice", h.Invoice,
		auth.RequireRole(records.RoleAdmin, records.RolePharmacist))

	api.GET("/sales", h.RecentSales, auth.RequireRole(records.RoleAdmin))
	api.DELETE("/sales/:id", h.DeleteSale, auth.RequireRole(records.RoleAdmin))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	b, err := h.svc.Get(c.Request().Context(), id)
	if errors.Is(err, records.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "bill not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) Invoice(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	inv, err := h.svc.Invoice(c.Request().Context(), id)
	if errors.Is(err, records.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "bill not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, inv)
}

func (h *Handler) RecentSales(c echo.Context) error {
	sales, err := h.svc.RecentSales(c.Request().Context(), pagination.FromContext(c).Limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, sales)
}

func (h *Handler) DeleteSale(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	err = h.svc.RemoveSale(c.Request().Context(), id)
	if errors.Is(err, records.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "sale record not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
