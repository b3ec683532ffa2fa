package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medihub/pharmacy/internal/platform/db"
	"github.com/medihub/pharmacy/internal/records"
)

// Service manages patient records. Reads and registration degrade to the
// fallback store when the database is unreachable; the cascade delete does
// too, though a fallback delete only affects fallback data.
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

func (s *Service) Register(ctx context.Context, p *records.Patient) error {
	if p.Name == "" {
		return errors.New("patient name is required")
	}
	if p.Age < 0 {
		return errors.New("patient age cannot be negative")
	}
	err := s.repo().Create(ctx, p)
	if s.degraded("register patient", err) {
		return s.fallback.Create(ctx, p)
	}
	return err
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*records.Patient, error) {
	p, err := s.repo().ByID(ctx, id)
	if s.degraded("get patient", err) {
		return s.fallback.ByID(ctx, id)
	}
	return p, err
}

func (s *Service) List(ctx context.Context) ([]*records.Patient, error) {
	out, err := s.repo().List(ctx)
	if s.degraded("list patients", err) {
		return s.fallback.List(ctx)
	}
	return out, err
}

// Remove deletes the patient together with their prescriptions, lines and
// bills.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	err := s.repo().DeleteCascade(ctx, id)
	if s.degraded("remove patient", err) {
		return s.fallback.DeleteCascade(ctx, id)
	}
	return err
}

func (s *Service) History(ctx context.Context, patientID uuid.UUID) ([]*records.HistoryEntry, error) {
	out, err := s.repo().History(ctx, patientID)
	if s.degraded("patient history", err) {
		return s.fallback.History(ctx, patientID)
	}
	return out, err
}
