package prescription

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medihub/pharmacy/internal/platform/db"
	"github.com/medihub/pharmacy/internal/records"
)

// Service covers writing prescriptions and the pharmacist's read views.
// Reads degrade to the fallback store; creation is durable-only, because a
// prescription written only to process memory would silently vanish.
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

// Write records a new prescription with its lines, status pending.
func (s *Service) Write(ctx context.Context, p *records.Prescription, lines []records.PrescriptionLine) error {
	if len(lines) == 0 {
		return errors.New("a prescription needs at least one medicine")
	}
	for _, l := range lines {
		if l.MedicineID == uuid.Nil {
			return errors.New("every line needs a medicine")
		}
		if l.Days <= 0 {
			return errors.New("days must be positive")
		}
	}

	err := s.repo().Create(ctx, p, lines)
	if s.durable != nil && db.Unavailable(err) {
		return fmt.Errorf("%w: %v", records.ErrUnavailable, err)
	}
	return err
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*records.Prescription, error) {
	p, err := s.repo().ByID(ctx, id)
	if s.degraded("get prescription", err) {
		return s.fallback.ByID(ctx, id)
	}
	return p, err
}

// Detail is the pharmacist's review view: lines with live stock, patient and
// prescriber names, and the bill once one exists.
func (s *Service) Detail(ctx context.Context, id uuid.UUID) (*records.PrescriptionDetail, error) {
	d, err := s.repo().Detail(ctx, id)
	if s.degraded("prescription detail", err) {
		return s.fallback.Detail(ctx, id)
	}
	return d, err
}

func (s *Service) Recent(ctx context.Context, limit int) ([]*records.Prescription, error) {
	if limit <= 0 {
		limit = 20
	}
	out, err := s.repo().Recent(ctx, limit)
	if s.degraded("recent prescriptions", err) {
		return s.fallback.Recent(ctx, limit)
	}
	return out, err
}
