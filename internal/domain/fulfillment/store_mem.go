package fulfillment

import (
	"context"

	"github.com/google/uuid"

	"github.com/medihub/pharmacy/internal/records"
)

type storeMem struct{ mem *records.Memory }

func NewStoreMem(mem *records.Memory) Store { return &storeMem{mem: mem} }

func (s *storeMem) Context(_ context.Context, id uuid.UUID) (*records.PrescriptionContext, error) {
	return s.mem.PrescriptionContext(id)
}

func (s *storeMem) Commit(_ context.Context, id uuid.UUID, lines []records.ContextLine, total float64) (uuid.UUID, error) {
	return s.mem.CommitFulfillment(id, lines, total)
}

func (s *storeMem) MarkPaid(_ context.Context, billID uuid.UUID) (uuid.UUID, bool, error) {
	return s.mem.MarkPaid(billID)
}
