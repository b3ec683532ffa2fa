// Package reporting assembles the admin dashboard report: revenue, the
// prescription status histogram, low-stock medicines and the most prescribed
// medicines.
package reporting

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medihub/pharmacy/internal/platform/auth"
	"github.com/medihub/pharmacy/internal/platform/db"
	"github.com/medihub/pharmacy/internal/records"
)

// TopMedicinesLimit caps the most-prescribed ranking.
const TopMedicinesLimit = 5

// Store is the aggregate-query contract behind the report.
type Store interface {
	Revenue(ctx context.Context) (float64, error)
	StatusCounts(ctx context.Context) ([]records.StatusCount, error)
	LowStock(ctx context.Context, threshold int) ([]*records.Medicine, error)
	TopMedicines(ctx context.Context, n int) ([]records.MedicineUsage, error)
}

// Report is one dashboard snapshot.
type Report struct {
	GeneratedAt  time.Time               `json:"generated_at"`
	Revenue      float64                 `json:"revenue"`
	StatusCounts []records.StatusCount   `json:"status_counts"`
	LowStock     []*records.Medicine     `json:"low_stock"`
	TopMedicines []records.MedicineUsage `json:"top_medicines"`
}

type Service struct {
	durable  Store
	fallback Store
	logger   zerolog.Logger
}

func NewService(durable, fallback Store, logger zerolog.Logger) *Service {
	return &Service{durable: durable, fallback: fallback, logger: logger}
}

func (s *Service) store() Store {
	if s.durable != nil {
		return s.durable
	}
	return s.fallback
}

func (s *Service) degraded(op string, err error) bool {
	if s.durable == nil || !db.Unavailable(err) {
		return false
	}
	s.logger.Warn().Err(err).Str("op", op).Msg("durable store unavailable, using fallback")
	return true
}

// Build assembles the full report. Each aggregate degrades to the fallback
// store independently.
func (s *Service) Build(ctx context.Context) (*Report, error) {
	r := &Report{GeneratedAt: time.Now()}

	revenue, err := s.store().Revenue(ctx)
	if s.degraded("revenue", err) {
		revenue, err = s.fallback.Revenue(ctx)
	}
	if err != nil {
		return nil, err
	}
	r.Revenue = revenue

	counts, err := s.store().StatusCounts(ctx)
	if s.degraded("status counts", err) {
		counts, err = s.fallback.StatusCounts(ctx)
	}
	if err != nil {
		return nil, err
	}
	r.StatusCounts = counts

	low, err := s.store().LowStock(ctx, records.LowStockThreshold)
	if s.degraded("low stock", err) {
		low, err = s.fallback.LowStock(ctx, records.LowStockThreshold)
	}
	if err != nil {
		return nil, err
	}
	r.LowStock = low

	top, err := s.store().TopMedicines(ctx, TopMedicinesLimit)
	if s.degraded("top medicines", err) {
		top, err = s.fallback.TopMedicines(ctx, TopMedicinesLimit)
	}
	if err != nil {
		return nil, err
	}
	r.TopMedicines = top

	return r, nil
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/reports", h.Report, auth.RequireRole(records.RoleAdmin))
}

func (h *Handler) Report(c echo.Context) error {
	r, err := h.svc.Build(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, r)
}
