package reporting

import (
	"context"

	"github.com/medihub/pharmacy/internal/records"
)

type storeMem struct{ mem *records.Memory }

func NewStoreMem(mem *records.Memory) Store { return &storeMem{mem: mem} }

func (s *storeMem) Revenue(context.Context) (float64, error) {
	return s.mem.Revenue()
}

func (s *storeMem) StatusCounts(context.Context) ([]records.StatusCount, error) {
	return s.mem.StatusCounts()
}

func (s *storeMem) LowStock(_ context.Context, threshold int) ([]*records.Medicine, error) {
	return s.mem.LowStock(threshold)
}

func (s *storeMem) TopMedicines(_ context.Context, n int) ([]records.MedicineUsage, error) {
	return s.mem.TopMedicines(n)
}
