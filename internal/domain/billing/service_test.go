package billing

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

func (downRepo) ByID(context.Context, uuid.UUID) (*records.Bill, error) { return nil, errConnRefused }
func (downRepo) Invoice(context.Context, uuid.UUID) (*records.Invoice, error) {
	return nil, errConnRefused
}
func (downRepo) RecentSales(context.Context, int) ([]*records.SaleRecord, error) {
	return nil, errConnRefused
}
func (downRepo) Delete(context.Context, uuid.UUID) error { return errConnRefused }

// billFor seeds a committed prescription and returns its bill id.
func billFor(t *testing.T, mem *records.Memory) uuid.UUID {
	t.Helper()
	pat := &records.Patient{Name: "Ravi Kumar", Age: 45, Gender: "male"}
	if err := mem.CreatePatient(pat); err != nil {
		t.Fatalf("CreatePatient: %v", err)
	}
	meds, _ := mem.ListMedicines()
	p := &records.Prescription{PatientID: pat.ID}
	if err := mem.CreatePrescription(p, []records.PrescriptionLine{
		{MedicineID: meds[3].ID, Dosage: "1", Days: 4},
	}); err != nil {
		t.Fatalf("CreatePrescription: %v", err)
	}
	lines, err := mem.PrescriptionContext(p.ID)
	if err != nil {
		t.Fatalf("PrescriptionContext: %v", err)
	}
	total := 0.0
	for _, l := range lines.Lines {
		total += l.UnitPrice * float64(l.Days)
	}
	billID, err := mem.CommitFulfillment(p.ID, lines.Lines, total)
	if err != nil {
		t.Fatalf("CommitFulfillment: %v", err)
	}
	return billID
}

func TestInvoice(t *testing.T) {
	mem := records.SeededMemory()
	billID := billFor(t, mem)
	svc := NewService(NewRepoMem(mem), NewRepoMem(records.NewMemory()), zerolog.Nop())

	inv, err := svc.Invoice(context.Background(), billID)
	if err != nil {
		t.Fatalf("Invoice: %v", err)
	}
	if inv.PatientName != "Ravi Kumar" {
		t.Errorf("patient = %q", inv.PatientName)
	}
	if len(inv.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(inv.Items))
	}
	if inv.PaymentStatus != records.PaymentUnpaid {
		t.Errorf("payment status = %q, want Unpaid", inv.PaymentStatus)
	}
	if want := inv.Items[0].UnitPrice * 4; inv.TotalAmount != want {
		t.Errorf("total = %v, want %v", inv.TotalAmount, want)
	}
}

func TestRecentSalesAndRemove(t *testing.T) {
	mem := records.SeededMemory()
	billID := billFor(t, mem)
	svc := NewService(NewRepoMem(mem), NewRepoMem(records.NewMemory()), zerolog.Nop())

	sales, err := svc.RecentSales(context.Background(), 0)
	if err != nil {
		t.Fatalf("RecentSales: %v", err)
	}
	if len(sales) != 1 || sales[0].BillID != billID {
		t.Fatalf("sales = %+v", sales)
	}

	if err := svc.RemoveSale(context.Background(), billID); err != nil {
		t.Fatalf("RemoveSale: %v", err)
	}
	sales, _ = svc.RecentSales(context.Background(), 0)
	if len(sales) != 0 {
		t.Errorf("sales after delete = %d, want 0", len(sales))
	}

	if err := svc.RemoveSale(context.Background(), billID); !errors.Is(err, records.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestReadsFallBackWhenDatabaseDown(t *testing.T) {
	mem := records.SeededMemory()
	billID := billFor(t, mem)
	svc := NewService(downRepo{}, NewRepoMem(mem), zerolog.Nop())

	if _, err := svc.Invoice(context.Background(), billID); err != nil {
		t.Errorf("Invoice via fallback: %v", err)
	}
	sales, err := svc.RecentSales(context.Background(), 0)
	if err != nil {
		t.Fatalf("RecentSales via fallback: %v", err)
	}
	if len(sales) != 1 {
		t.Errorf("sales = %d, want 1", len(sales))
	}
}
