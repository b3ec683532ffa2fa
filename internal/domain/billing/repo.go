package billing

import (
	"context"

	"github.com/google/uuid"

	"github.com/medihub/pharmacy/internal/records"
)

// Repository is the billing read-and-housekeeping contract. Bills are opened
// and settled by the fulfillment workflow; this side only views and deletes
// them.
type Repository interface {
	ByID(ctx context.Context, id uuid.UUID) (*records.Bill, error)
	Invoice(ctx context.Context, billID uuid.UUID) (*records.Invoice, error)
	RecentSales(ctx context.Context, limit int) ([]*records.SaleRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
