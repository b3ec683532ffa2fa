// Package records defines the pharmacy data model and the record-store
// contract shared by the durable (Postgres) backend and the process-local
// in-memory fallback. The fallback is lossy and non-durable: nothing written
// to one backend is ever replayed into the other.
package records

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Prescription statuses. Transitions are strictly forward:
// pending -> validated -> dispensed.
const (
	StatusPending   = "pending"
	StatusValidated = "validated"
	StatusDispensed = "dispensed"
)

// Bill payment statuses.
const (
	PaymentUnpaid = "Unpaid"
	PaymentPaid   = "Paid"
)

// User roles.
const (
	RoleAdmin      = "admin"
	RoleDoctor     = "doctor"
	RolePharmacist = "pharmacist"
)

// LowStockThreshold is the on-hand quantity below which a medicine is
// reported as low stock.
const LowStockThreshold = 100

var (
	// ErrNotFound means the referenced record is absent from the backend.
	ErrNotFound = errors.New("record not found")
	// ErrUnavailable means the durable backend could not be reached.
	ErrUnavailable = errors.New("durable store unavailable")
	// ErrAlreadyProcessed means a prescription has already moved past the
	// status a mutation expected.
	ErrAlreadyProcessed = errors.New("prescription already processed")
)

type User struct {
	ID        uuid.UUID `db:"id" json:"id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Username  string    `db:"username" json:"username"`
	Email     string    `db:"email" json:"email"`
	Password  string    `db:"password" json:"-"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Patient struct {
	ID      uuid.UUID `db:"id" json:"id"`
	Name    string    `db:"name" json:"name"`
	Age     int       `db:"age" json:"age"`
	Gender  string    `db:"gender" json:"gender"`
	Contact string    `db:"contact" json:"contact"`
	// Allergies is free text: comma-separated tokens, matched
	// case-insensitively against medicine names.
	Allergies string    `db:"allergies" json:"allergies"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Medicine struct {
	ID uuid.UUID `db:"id" json:"id"`
	// Name is a display name and may embed the dose, e.g. "Paracetamol 500mg".
	// Catalog lookups match it by case-insensitive substring, not by id.
	Name     string  `db:"name" json:"name"`
	Quantity int     `db:"quantity" json:"quantity"`
	Price    float64 `db:"price" json:"price"`
}

type Prescription struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	PatientID    uuid.UUID  `db:"patient_id" json:"patient_id"`
	PrescriberID *uuid.UUID `db:"prescriber_id" json:"prescriber_id,omitempty"`
	Status       string     `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

type PrescriptionLine struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PrescriptionID uuid.UUID `db:"prescription_id" json:"prescription_id"`
	MedicineID     uuid.UUID `db:"medicine_id" json:"medicine_id"`
	// Dosage is either a bare integer count or a hyphen-separated per-period
	// sequence such as "1-0-1".
	Dosage string `db:"dosage" json:"dosage"`
	Days   int    `db:"days" json:"days"`
}

type Bill struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PrescriptionID uuid.UUID `db:"prescription_id" json:"prescription_id"`
	TotalAmount    float64   `db:"total_amount" json:"total_amount"`
	PaymentStatus  string    `db:"payment_status" json:"payment_status"`
	GeneratedAt    time.Time `db:"generated_at" json:"generated_at"`
}

// ContextLine is one prescription line resolved against its medicine.
type ContextLine struct {
	MedicineID   uuid.UUID `json:"medicine_id"`
	MedicineName string    `json:"medicine_name"`
	Dosage       string    `json:"dosage"`
	Days         int       `json:"days"`
	UnitPrice    float64   `json:"unit_price"`
}

// PrescriptionContext is everything the safety validator needs for one
// prescription: the patient's allergy text plus the resolved line items.
type PrescriptionContext struct {
	PrescriptionID uuid.UUID     `json:"prescription_id"`
	Status         string        `json:"status"`
	Allergies      string        `json:"allergies"`
	Lines          []ContextLine `json:"lines"`
}

// DetailLine is a resolved line enriched with current stock for the
// pharmacist's review screen.
type DetailLine struct {
	ContextLine
	Stock int `json:"stock"`
}

// PrescriptionDetail is the pharmacist's view of one prescription.
type PrescriptionDetail struct {
	Prescription
	PatientName    string       `json:"patient_name"`
	PrescriberName string       `json:"prescriber_name"`
	Lines          []DetailLine `json:"lines"`
	Bill           *Bill        `json:"bill,omitempty"`
}

// HistoryEntry is one past prescription in a patient's history.
type HistoryEntry struct {
	Prescription
	PrescriberName string        `json:"prescriber_name"`
	Lines          []ContextLine `json:"lines"`
}

// Invoice is the printable view of a bill.
type Invoice struct {
	Bill
	PatientName    string        `json:"patient_name"`
	PrescriberName string        `json:"prescriber_name"`
	Items          []ContextLine `json:"items"`
}

// SaleRecord is one row of the recent-sales listing.
type SaleRecord struct {
	BillID         uuid.UUID `json:"bill_id"`
	PrescriptionID uuid.UUID `json:"prescription_id"`
	PatientName    string    `json:"patient_name"`
	TotalAmount    float64   `json:"total_amount"`
	PaymentStatus  string    `json:"payment_status"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// StatusCount is one bucket of the prescription status histogram.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// MedicineUsage ranks a medicine by the total prescribed day count.
type MedicineUsage struct {
	Name string `json:"name"`
	Days int    `json:"days"`
}

// DefaultMedicines returns the stock the pharmacy opens with.
func DefaultMedicines() []Medicine {
	names := []struct {
		name     string
		quantity int
		price    float64
	}{
		{"Paracetamol 500mg", 100, 5.00},
		{"Ibuprofen 400mg", 50, 8.00},
		{"Amoxicillin 500mg", 500, 12.50},
		{"Cetirizine 10mg", 600, 3.00},
		{"Aspirin 75mg", 400, 4.50},
		{"Metformin 500mg", 1000, 2.50},
		{"Atorvastatin 20mg", 700, 15.00},
		{"Omeprazole 20mg", 600, 6.00},
		{"Azithromycin 500mg", 300, 45.00},
		{"Pantoprazole 40mg", 800, 7.00},
		{"Diclofenac 50mg", 500, 4.00},
	}
	meds := make([]Medicine, 0, len(names))
	for _, n := range names {
		meds = append(meds, Medicine{ID: uuid.New(), Name: n.name, Quantity: n.quantity, Price: n.price})
	}
	return meds
}

// DefaultUsers returns the bootstrap accounts: one per role.
func DefaultUsers() []User {
	return []User{
		{ID: uuid.New(), FullName: "Admin", Username: "admin", Email: "admin@medihub.com", Password: "pass123", Role: RoleAdmin},
		{ID: uuid.New(), FullName: "Dr. Smith", Username: "doc1", Email: "doc1@medihub.com", Password: "pass123", Role: RoleDoctor},
		{ID: uuid.New(), FullName: "Pharma. Jones", Username: "pharm1", Email: "pharm1@medihub.com", Password: "pass123", Role: RolePharmacist},
	}
}
