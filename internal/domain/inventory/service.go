package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medihub/pharmacy/internal/platform/db"
	"github.com/medihub/pharmacy/internal/records"
)

// Service exposes the medicine stock. All operations degrade to the fallback
// store when the database is unreachable.
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

func (s *Service) Add(ctx context.Context, m *records.Medicine) error {
	if m.Name == "" {
		return errors.New("medicine name is required")
	}
	if m.Quantity < 0 || m.Price < 0 {
		return errors.New("quantity and price cannot be negative")
	}
	err := s.repo().Create(ctx, m)
	if s.degraded("add medicine", err) {
		return s.fallback.Create(ctx, m)
	}
	return err
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*records.Medicine, error) {
	m, err := s.repo().ByID(ctx, id)
	if s.degraded("get medicine", err) {
		return s.fallback.ByID(ctx, id)
	}
	return m, err
}

func (s *Service) List(ctx context.Context) ([]*records.Medicine, error) {
	out, err := s.repo().List(ctx)
	if s.degraded("list medicines", err) {
		return s.fallback.List(ctx)
	}
	return out, err
}

// LowStock lists medicines whose on-hand quantity has dropped below the
// reorder threshold.
func (s *Service) LowStock(ctx context.Context) ([]*records.Medicine, error) {
	out, err := s.repo().LowStock(ctx, records.LowStockThreshold)
	if s.degraded("low stock", err) {
		return s.fallback.LowStock(ctx, records.LowStockThreshold)
	}
	return out, err
}
