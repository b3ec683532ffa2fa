package prescription

import (
	"context"

	"github.com/google/uuid"

	"github.com/medihub/pharmacy/internal/records"
)

type repoMem struct{ mem *records.Memory }

func NewRepoMem(mem *records.Memory) Repository { return &repoMem{mem: mem} }

func (r *repoMem) Create(_ context.Context, p *records.Prescription, lines []records.PrescriptionLine) error {
	return r.mem.CreatePrescription(p, lines)
}

func (r *repoMem) ByID(_ context.Context, id uuid.UUID) (*records.Prescription, error) {
	return r.mem.PrescriptionByID(id)
}

func (r *repoMem) Detail(_ context.Context, id uuid.UUID) (*records.PrescriptionDetail, error) {
	return r.mem.PrescriptionDetail(id)
}

func (r *repoMem) Recent(_ context.Context, limit int) ([]*records.Prescription, error) {
	return r.mem.RecentPrescriptions(limit)
}
