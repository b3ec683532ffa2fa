// Package fulfillment runs the dispensing workflow: safety validation of a
// pending prescription, the atomic stock-deduct-and-bill commit, and payment
// settlement.
package fulfillment

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medihub/pharmacy/internal/domain/safety"
	"github.com/medihub/pharmacy/internal/platform/db"
	"github.com/medihub/pharmacy/internal/records"
)

// Result is the outcome of a validation attempt. When Approved is false the
// violations explain why and nothing was mutated.
type Result struct {
	PrescriptionID uuid.UUID `json:"prescription_id"`
	Approved       bool      `json:"approved"`
	Violations     []string  `json:"violations,omitempty"`
	BillID         uuid.UUID `json:"bill_id,omitempty"`
	TotalAmount    float64   `json:"total_amount,omitempty"`
}

type Service struct {
	durable   Store
	fallback  Store
	validator *safety.Validator
	logger    zerolog.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewService(durable, fallback Store, validator *safety.Validator, logger zerolog.Logger) *Service {
	return &Service{
		durable:   durable,
		fallback:  fallback,
		validator: validator,
		logger:    logger,
		locks:     make(map[uuid.UUID]*sync.Mutex),
	}
}

// lockFor serializes fulfillment per prescription so a check-then-commit pair
// never interleaves with another attempt on the same prescription.
func (s *Service) lockFor(id uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
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

// Validate checks a pending prescription against the safety catalog. Any
// violation rejects the whole prescription untouched; a clean pass commits
// the stock deduction and opens an unpaid bill in one transaction.
//
// The commit never falls back to the in-memory store: a stock deduction the
// database did not see would be silently undone on restart.
func (s *Service) Validate(ctx context.Context, prescriptionID uuid.UUID) (*Result, error) {
	lock := s.lockFor(prescriptionID)
	lock.Lock()
	defer lock.Unlock()

	pctx, err := s.store().Context(ctx, prescriptionID)
	if s.degraded("fulfillment context", err) {
		pctx, err = s.fallback.Context(ctx, prescriptionID)
	}
	if err != nil {
		return nil, err
	}
	if pctx.Status != records.StatusPending {
		return nil, records.ErrAlreadyProcessed
	}

	if violations := s.validator.Evaluate(pctx); len(violations) > 0 {
		s.logger.Info().
			Stringer("prescription_id", prescriptionID).
			Int("violations", len(violations)).
			Msg("prescription rejected by safety check")
		return &Result{PrescriptionID: prescriptionID, Violations: violations}, nil
	}

	var total float64
	for _, l := range pctx.Lines {
		total += l.UnitPrice * float64(l.Days)
	}

	billID, err := s.store().Commit(ctx, prescriptionID, pctx.Lines, total)
	if s.durable != nil && db.Unavailable(err) {
		return nil, fmt.Errorf("%w: %v", records.ErrUnavailable, err)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Stringer("prescription_id", prescriptionID).
		Stringer("bill_id", billID).
		Float64("total", total).
		Msg("prescription validated and billed")
	return &Result{PrescriptionID: prescriptionID, Approved: true, BillID: billID, TotalAmount: total}, nil
}

// RecordPayment settles a bill and marks its prescription dispensed. Like the
// commit it is durable-only; paying twice reports alreadyPaid instead of
// failing.
func (s *Service) RecordPayment(ctx context.Context, billID uuid.UUID) (alreadyPaid bool, err error) {
	prescriptionID, alreadyPaid, err := s.store().MarkPaid(ctx, billID)
	if s.durable != nil && db.Unavailable(err) {
		return false, fmt.Errorf("%w: %v", records.ErrUnavailable, err)
	}
	if err != nil {
		return false, err
	}

	if alreadyPaid {
		s.logger.Info().Stringer("bill_id", billID).Msg("bill was already settled")
	} else {
		s.logger.Info().
			Stringer("bill_id", billID).
			Stringer("prescription_id", prescriptionID).
			Msg("bill paid, prescription dispensed")
	}
	return alreadyPaid, nil
}
