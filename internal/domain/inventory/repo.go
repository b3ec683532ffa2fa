package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/medihub/pharmacy/internal/records"
)

// Repository is the medicine stock contract shared by the Postgres backend
// and the in-memory fallback. Stock deduction is not here: it only ever
// happens inside the fulfillment commit.
type Repository interface {
	Create(ctx context.Context, m *records.Medicine) error
	ByID(ctx context.Context, id uuid.UUID) (*records.Medicine, error)
	List(ctx context.Context) ([]*records.Medicine, error)
	LowStock(ctx context.Context, threshold int) ([]*records.Medicine, error)
}
