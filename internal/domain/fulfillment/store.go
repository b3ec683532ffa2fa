package fulfillment

import (
	"context"

	"github.com/google/uuid"

	"github.com/medihub/pharmacy/internal/records"
)

// Store is the fulfillment contract shared by the Postgres backend and the
// in-memory fallback. Commit and MarkPaid are the only two mutations in the
// dispensing workflow and both must be atomic within a backend.
type Store interface {
	// Context loads everything the safety check needs for one prescription.
	Context(ctx context.Context, prescriptionID uuid.UUID) (*records.PrescriptionContext, error)
	// Commit deducts stock, marks the prescription validated and opens an
	// unpaid bill, returning the bill id. A prescription that is no longer
	// pending yields ErrAlreadyProcessed and no mutation.
	Commit(ctx context.Context, prescriptionID uuid.UUID, lines []records.ContextLine, total float64) (uuid.UUID, error)
	// MarkPaid settles a bill and moves its prescription to dispensed.
	// Paying an already-settled bill is a no-op reported via alreadyPaid.
	MarkPaid(ctx context.Context, billID uuid.UUID) (prescriptionID uuid.UUID, alreadyPaid bool, err error)
}
