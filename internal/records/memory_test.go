package records

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func seedPatient(t *testing.T, m *Memory, allergies string) *Patient {
	t.Helper()
	p := &Patient{Name: "Jane Roe", Age: 42, Gender: "F", Contact: "555-0100", Allergies: allergies}
	if err := m.CreatePatient(p); err != nil {
		t.Fatalf("CreatePatient: %v", err)
	}
	return p
}

func seedPrescription(t *testing.T, m *Memory, patientID uuid.UUID, lines []PrescriptionLine) *Prescription {
	t.Helper()
	p := &Prescription{PatientID: patientID}
	if err := m.CreatePrescription(p, lines); err != nil {
		t.Fatalf("CreatePrescription: %v", err)
	}
	return p
}

func TestSeededMemoryDefaults(t *testing.T) {
	m := SeededMemory()
	meds, err := m.ListMedicines()
	if err != nil {
		t.Fatalf("ListMedicines: %v", err)
	}
	if len(meds) != 11 {
		t.Fatalf("seeded medicines = %d, want 11", len(meds))
	}
	if meds[0].Name != "Paracetamol 500mg" {
		t.Errorf("first medicine = %q, want Paracetamol 500mg", meds[0].Name)
	}
	u, err := m.UserByCredentials("admin", "pass123")
	if err != nil {
		t.Fatalf("UserByCredentials: %v", err)
	}
	if u.Role != RoleAdmin {
		t.Errorf("admin role = %q", u.Role)
	}
	if _, err := m.UserByCredentials("admin", "wrong"); !errors.Is(err, ErrNotFound) {
		t.Errorf("bad password err = %v, want ErrNotFound", err)
	}
}

func TestCommitFulfillment(t *testing.T) {
	m := SeededMemory()
	meds, _ := m.ListMedicines()
	para := meds[0]
	pat := seedPatient(t, m, "")
	rx := seedPrescription(t, m, pat.ID, []PrescriptionLine{
		{MedicineID: para.ID, Dosage: "1-0-1", Days: 5},
	})

	pctx, err := m.PrescriptionContext(rx.ID)
	if err != nil {
		t.Fatalf("PrescriptionContext: %v", err)
	}
	if len(pctx.Lines) != 1 || pctx.Lines[0].MedicineName != para.Name {
		t.Fatalf("context lines = %+v", pctx.Lines)
	}

	billID, err := m.CommitFulfillment(rx.ID, pctx.Lines, 25)
	if err != nil {
		t.Fatalf("CommitFulfillment: %v", err)
	}

	after, _ := m.MedicineByID(para.ID)
	if after.Quantity != para.Quantity-5 {
		t.Errorf("stock = %d, want %d", after.Quantity, para.Quantity-5)
	}
	got, _ := m.PrescriptionByID(rx.ID)
	if got.Status != StatusValidated {
		t.Errorf("status = %q, want validated", got.Status)
	}
	bill, err := m.BillByID(billID)
	if err != nil {
		t.Fatalf("BillByID: %v", err)
	}
	if bill.PaymentStatus != PaymentUnpaid || bill.TotalAmount != 25 {
		t.Errorf("bill = %+v", bill)
	}

	if _, err := m.CommitFulfillment(rx.ID, pctx.Lines, 25); !errors.Is(err, ErrAlreadyProcessed) {
		t.Errorf("second commit err = %v, want ErrAlreadyProcessed", err)
	}
}

func TestMarkPaidIdempotent(t *testing.T) {
	m := SeededMemory()
	meds, _ := m.ListMedicines()
	pat := seedPatient(t, m, "")
	rx := seedPrescription(t, m, pat.ID, []PrescriptionLine{
		{MedicineID: meds[1].ID, Dosage: "2", Days: 3},
	})
	pctx, _ := m.PrescriptionContext(rx.ID)
	billID, err := m.CommitFulfillment(rx.ID, pctx.Lines, 24)
	if err != nil {
		t.Fatalf("CommitFulfillment: %v", err)
	}

	rxID, already, err := m.MarkPaid(billID)
	if err != nil || already {
		t.Fatalf("first MarkPaid = (%v, %v, %v)", rxID, already, err)
	}
	got, _ := m.PrescriptionByID(rx.ID)
	if got.Status != StatusDispensed {
		t.Errorf("status after pay = %q, want dispensed", got.Status)
	}

	_, already, err = m.MarkPaid(billID)
	if err != nil {
		t.Fatalf("second MarkPaid: %v", err)
	}
	if !already {
		t.Error("second MarkPaid should report already paid")
	}

	if _, _, err := m.MarkPaid(uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown bill err = %v, want ErrNotFound", err)
	}
}

func TestDeletePatientCascade(t *testing.T) {
	m := SeededMemory()
	meds, _ := m.ListMedicines()
	pat := seedPatient(t, m, "Penicillin")
	rx := seedPrescription(t, m, pat.ID, []PrescriptionLine{
		{MedicineID: meds[0].ID, Dosage: "1", Days: 2},
	})
	pctx, _ := m.PrescriptionContext(rx.ID)
	billID, _ := m.CommitFulfillment(rx.ID, pctx.Lines, 10)

	if err := m.DeletePatientCascade(pat.ID); err != nil {
		t.Fatalf("DeletePatientCascade: %v", err)
	}
	if _, err := m.PatientByID(pat.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("patient err = %v, want ErrNotFound", err)
	}
	if _, err := m.PrescriptionByID(rx.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("prescription err = %v, want ErrNotFound", err)
	}
	if _, err := m.BillByID(billID); !errors.Is(err, ErrNotFound) {
		t.Errorf("bill err = %v, want ErrNotFound", err)
	}
}

func TestDeleteUserDetachesPrescriber(t *testing.T) {
	m := SeededMemory()
	meds, _ := m.ListMedicines()
	doc, err := m.UserByCredentials("doc1", "pass123")
	if err != nil {
		t.Fatalf("UserByCredentials: %v", err)
	}
	pat := seedPatient(t, m, "")
	rx := &Prescription{PatientID: pat.ID, PrescriberID: &doc.ID}
	if err := m.CreatePrescription(rx, []PrescriptionLine{{MedicineID: meds[0].ID, Dosage: "1", Days: 1}}); err != nil {
		t.Fatalf("CreatePrescription: %v", err)
	}

	if err := m.DeleteUser(doc.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	got, _ := m.PrescriptionByID(rx.ID)
	if got.PrescriberID != nil {
		t.Errorf("prescriber id = %v, want nil", got.PrescriberID)
	}
}

func TestReportingAggregates(t *testing.T) {
	m := SeededMemory()
	meds, _ := m.ListMedicines()
	pat := seedPatient(t, m, "")

	// One paid prescription, one left pending.
	rx1 := seedPrescription(t, m, pat.ID, []PrescriptionLine{
		{MedicineID: meds[0].ID, Dosage: "1-0-1", Days: 4},
		{MedicineID: meds[1].ID, Dosage: "1", Days: 2},
	})
	pctx, _ := m.PrescriptionContext(rx1.ID)
	billID, _ := m.CommitFulfillment(rx1.ID, pctx.Lines, 36)
	if _, _, err := m.MarkPaid(billID); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	seedPrescription(t, m, pat.ID, []PrescriptionLine{
		{MedicineID: meds[0].ID, Dosage: "1", Days: 3},
	})

	rev, err := m.Revenue()
	if err != nil {
		t.Fatalf("Revenue: %v", err)
	}
	if rev != 36 {
		t.Errorf("revenue = %v, want 36", rev)
	}

	counts, _ := m.StatusCounts()
	byStatus := map[string]int{}
	for _, c := range counts {
		byStatus[c.Status] = c.Count
	}
	if byStatus[StatusDispensed] != 1 || byStatus[StatusPending] != 1 {
		t.Errorf("status counts = %+v", byStatus)
	}

	top, _ := m.TopMedicines(5)
	if len(top) != 2 {
		t.Fatalf("top medicines = %+v", top)
	}
	if top[0].Name != meds[0].Name || top[0].Days != 7 {
		t.Errorf("top entry = %+v, want %s with 7 days", top[0], meds[0].Name)
	}

	low, _ := m.LowStock(LowStockThreshold)
	// Paracetamol started at 100 and lost 4, Ibuprofen started at 50 and lost 2.
	if len(low) != 2 {
		t.Errorf("low stock = %+v", low)
	}
}
