package patient

import (
	"context"

	"github.com/google/uuid"

	"github.com/medihub/pharmacy/internal/records"
)

// Repository is the patient store contract shared by the Postgres backend
// and the in-memory fallback.
type Repository interface {
	Create(ctx context.Context, p *records.Patient) error
	ByID(ctx context.Context, id uuid.UUID) (*records.Patient, error)
	List(ctx context.Context) ([]*records.Patient, error)
	// DeleteCascade removes the patient and all dependent records in
	// dependency order: bills, then prescription lines, then prescriptions,
	// then the patient row itself.
	DeleteCascade(ctx context.Context, id uuid.UUID) error
	History(ctx context.Context, patientID uuid.UUID) ([]*records.HistoryEntry, error)
}
