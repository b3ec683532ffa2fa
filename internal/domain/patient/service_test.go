package patient

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

func (downRepo) Create(context.Context, *records.Patient) error { return errConnRefused }
func (downRepo) ByID(context.Context, uuid.UUID) (*records.Patient, error) {
	return nil, errConnRefused
}
func (downRepo) List(context.Context) ([]*records.Patient, error)  { return nil, errConnRefused }
func (downRepo) DeleteCascade(context.Context, uuid.UUID) error    { return errConnRefused }
func (downRepo) History(context.Context, uuid.UUID) ([]*records.HistoryEntry, error) {
	return nil, errConnRefused
}

func TestRegisterAndList(t *testing.T) {
	mem := records.SeededMemory()
	svc := NewService(NewRepoMem(mem), NewRepoMem(records.NewMemory()), zerolog.Nop())

	p := &records.Patient{Name: "Jane Roe", Age: 42, Gender: "F", Allergies: "Penicillin"}
	if err := svc.Register(context.Background(), p); err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, err := svc.Get(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Allergies != "Penicillin" {
		t.Errorf("allergies = %q", got.Allergies)
	}

	list, err := svc.List(context.Background())
	if err != nil || len(list) != 1 {
		t.Fatalf("List = %v, %v", list, err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(NewRepoMem(records.NewMemory()), NewRepoMem(records.NewMemory()), zerolog.Nop())

	if err := svc.Register(context.Background(), &records.Patient{}); err == nil {
		t.Error("expected error for missing name")
	}
	if err := svc.Register(context.Background(), &records.Patient{Name: "X", Age: -1}); err == nil {
		t.Error("expected error for negative age")
	}
}

func TestRegisterFallsBackWhenDatabaseDown(t *testing.T) {
	fallback := records.NewMemory()
	svc := NewService(downRepo{}, NewRepoMem(fallback), zerolog.Nop())

	p := &records.Patient{Name: "Jane Roe", Age: 42}
	if err := svc.Register(context.Background(), p); err != nil {
		t.Fatalf("Register via fallback: %v", err)
	}
	if _, err := fallback.PatientByID(p.ID); err != nil {
		t.Errorf("patient not in fallback store: %v", err)
	}
}

func TestRemoveCascades(t *testing.T) {
	mem := records.SeededMemory()
	svc := NewService(NewRepoMem(mem), NewRepoMem(records.NewMemory()), zerolog.Nop())

	p := &records.Patient{Name: "Jane Roe", Age: 42}
	if err := mem.CreatePatient(p); err != nil {
		t.Fatalf("CreatePatient: %v", err)
	}
	meds, _ := mem.ListMedicines()
	rx := &records.Prescription{PatientID: p.ID}
	if err := mem.CreatePrescription(rx, []records.PrescriptionLine{
		{MedicineID: meds[0].ID, Dosage: "1", Days: 2},
	}); err != nil {
		t.Fatalf("CreatePrescription: %v", err)
	}

	if err := svc.Remove(context.Background(), p.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := mem.PrescriptionByID(rx.ID); !errors.Is(err, records.ErrNotFound) {
		t.Errorf("prescription survived cascade: %v", err)
	}
}

func TestHistoryUnknownPatient(t *testing.T) {
	svc := NewService(NewRepoMem(records.NewMemory()), NewRepoMem(records.NewMemory()), zerolog.Nop())

	_, err := svc.History(context.Background(), uuid.New())
	if !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
