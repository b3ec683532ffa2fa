package billing

import (
	"context"

	"github.com/google/uuid"

	"github.com/medihub/pharmacy/internal/records"
)

type repoMem struct{ mem *records.Memory }

func NewRepoMem(mem *records.Memory) Repository { return &repoMem{mem: mem} }

func (r *repoMem) ByID(_ context.Context, id uuid.UUID) (*records.Bill, error) {
	return r.mem.BillByID(id)
}

func (r *repoMem) Invoice(_ context.Context, billID uuid.UUID) (*records.Invoice, error) {
	return r.mem.Invoice(billID)
}

func (r *repoMem) RecentSales(_ context.Context, limit int) ([]*records.SaleRecord, error) {
	return r.mem.RecentSales(limit)
}

func (r *repoMem) Delete(_ context.Context, id uuid.UUID) error {
	return r.mem.DeleteBill(id)
}
