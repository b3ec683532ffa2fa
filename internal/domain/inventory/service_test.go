package inventory

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medihub/pharmacy/internal/records"
)

var errConnRefused = &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}

type downRepo struct{}

func (downRepo) Create(context.Context, *records.Medicine) error { return errConnRefused }
func (downRepo) ByID(context.Context, uuid.UUID) (*records.Medicine, error) {
	return nil, errConnRefused
}
func (downRepo) List(context.Context) ([]*records.Medicine, error) { return nil, errConnRefused }
func (downRepo) LowStock(context.Context, int) ([]*records.Medicine, error) {
	return nil, errConnRefused
}

func TestListSeeded(t *testing.T) {
	svc := NewService(NewRepoMem(records.SeededMemory()), NewRepoMem(records.NewMemory()), zerolog.Nop())

	meds, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(meds) != 11 {
		t.Errorf("medicines = %d, want 11", len(meds))
	}
}

func TestListFallsBackWhenDatabaseDown(t *testing.T) {
	svc := NewService(downRepo{}, NewRepoMem(records.SeededMemory()), zerolog.Nop())

	meds, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List via fallback: %v", err)
	}
	if len(meds) != 11 {
		t.Errorf("fallback medicines = %d, want 11", len(meds))
	}
}

func TestLowStockThreshold(t *testing.T) {
	mem := records.SeededMemory()
	svc := NewService(NewRepoMem(mem), NewRepoMem(records.NewMemory()), zerolog.Nop())

	low, err := svc.LowStock(context.Background())
	if err != nil {
		t.Fatalf("LowStock: %v", err)
	}
	// Only Ibuprofen (50) starts below 100; Paracetamol sits exactly at the
	// threshold and is excluded.
	if len(low) != 1 || low[0].Name != "Ibuprofen 400mg" {
		t.Errorf("low stock = %+v", low)
	}
}

func TestAddValidation(t *testing.T) {
	svc := NewService(NewRepoMem(records.NewMemory()), NewRepoMem(records.NewMemory()), zerolog.Nop())

	if err := svc.Add(context.Background(), &records.Medicine{}); err == nil {
		t.Error("expected error for missing name")
	}
	if err := svc.Add(context.Background(), &records.Medicine{Name: "X", Quantity: -1}); err == nil {
		t.Error("expected error for negative quantity")
	}
	if err := svc.Add(context.Background(), &records.Medicine{Name: "X", Quantity: 10, Price: 2}); err != nil {
		t.Errorf("Add: %v", err)
	}
}
