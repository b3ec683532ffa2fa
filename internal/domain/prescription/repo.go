package prescription

import (
	"context"

	"github.com/google/uuid"

	"github.com/medihub/pharmacy/internal/records"
)

// Repository is the prescription store contract shared by the Postgres
// backend and the in-memory fallback.
type Repository interface {
	Create(ctx context.Context, p *records.Prescription, lines []records.PrescriptionLine) error
	ByID(ctx context.Context, id uuid.UUID) (*records.Prescription, error)
	Detail(ctx context.Context, id uuid.UUID) (*records.PrescriptionDetail, error)
	Recent(ctx context.Context, limit int) ([]*records.Prescription, error)
}
