// Package billing serves the read side of billing: printable invoices and
// the recent-sales listing, plus the admin's sale-record cleanup.
package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medihub/pharmacy/internal/platform/db"
	"github.com/medihub/pharmacy/internal/records"
)

type Service struct {
	durable  Repository
	fallback Repository
	logger   zerolog.Logger
}

func NewService(durable, fallback Repository, logger zerolog.Logger) *Service {
	return &Service{durable: durable, fallback: fallback, logger: logger}
}

func (s *Service) repo() Repository {
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

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*records.Bill, error) {
	b, err := s.repo().ByID(ctx, id)
	if s.degraded("get bill", err) {
		return s.fallback.ByID(ctx, id)
	}
	return b, err
}

func (s *Service) Invoice(ctx context.Context, billID uuid.UUID) (*records.Invoice, error) {
	inv, err := s.repo().Invoice(ctx, billID)
	if s.degraded("invoice", err) {
		return s.fallback.Invoice(ctx, billID)
	}
	return inv, err
}

func (s *Service) RecentSales(ctx context.Context, limit int) ([]*records.SaleRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	sales, err := s.repo().RecentSales(ctx, limit)
	if s.degraded("recent sales", err) {
		return s.fallback.RecentSales(ctx, limit)
	}
	return sales, err
}

// RemoveSale deletes a bill record. Housekeeping only: the prescription and
// its dispensed stock are left as they are.
func (s *Service) RemoveSale(ctx context.Context, id uuid.UUID) error {
	err := s.repo().Delete(ctx, id)
	if s.degraded("delete sale", err) {
		return s.fallback.Delete(ctx, id)
	}
	return err
}
