package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/medihub/pharmacy/internal/records"
)

type repoMem struct{ mem *records.Memory }

func NewRepoMem(mem *records.Memory) Repository { return &repoMem{mem: mem} }

func (r *repoMem) Create(_ context.Context, m *records.Medicine) error {
	return r.mem.CreateMedicine(m)
}

func (r *repoMem) ByID(_ context.Context, id uuid.UUID) (*records.Medicine, error) {
	return r.mem.MedicineByID(id)
}

func (r *repoMem) List(_ context.Context) ([]*records.Medicine, error) {
	return r.mem.ListMedicines()
}

func (r *repoMem) LowStock(_ context.Context, threshold int) ([]*records.Medicine, error) {
	return r.mem.LowStock(threshold)
}
