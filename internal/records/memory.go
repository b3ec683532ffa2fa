package records

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is the process-local fallback store. It holds every record type
// behind one mutex so cross-table operations (cascade delete, fulfillment
// commit) stay consistent. It is intentionally lossy: contents vanish on
// restart and are never reconciled with the durable backend.
type Memory struct {
	mu            sync.RWMutex
	users         map[uuid.UUID]*User
	patients      map[uuid.UUID]*Patient
	medicines     map[uuid.UUID]*Medicine
	medicineOrder []uuid.UUID
	prescriptions map[uuid.UUID]*Prescription
	lines         []*PrescriptionLine
	bills         map[uuid.UUID]*Bill
}

// NewMemory returns an empty fallback store.
func NewMemory() *Memory {
	return &Memory{
		users:         make(map[uuid.UUID]*User),
		patients:      make(map[uuid.UUID]*Patient),
		medicines:     make(map[uuid.UUID]*Medicine),
		prescriptions: make(map[uuid.UUID]*Prescription),
		bills:         make(map[uuid.UUID]*Bill),
	}
}

// SeededMemory returns a fallback store preloaded with the default medicines
// and bootstrap users, so the service stays usable when the durable backend
// is down from the first request.
func SeededMemory() *Memory {
	m := NewMemory()
	for _, med := range DefaultMedicines() {
		med := med
		m.medicines[med.ID] = &med
		m.medicineOrder = append(m.medicineOrder, med.ID)
	}
	for _, u := range DefaultUsers() {
		u := u
		u.CreatedAt = time.Now()
		m.users[u.ID] = &u
	}
	return m
}

// -- Users --

func (m *Memory) CreateUser(u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = time.Now()
	stored := *u
	m.users[u.ID] = &stored
	return nil
}

func (m *Memory) UserByCredentials(username, password string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == username && u.Password == password {
			copy := *u
			return &copy, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) UserByUsernameEmail(username, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == username && u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) SetUserPassword(id uuid.UUID, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Password = password
	return nil
}

func (m *Memory) DeleteUser(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	for _, p := range m.prescriptions {
		if p.PrescriberID != nil && *p.PrescriberID == id {
			p.PrescriberID = nil
		}
	}
	return nil
}

func (m *Memory) ListUsers() ([]*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*User, 0, len(m.users))
	for _, u := range m.users {
		copy := *u
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// -- Patients --

func (m *Memory) CreatePatient(p *Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	stored := *p
	m.patients[p.ID] = &stored
	return nil
}

func (m *Memory) PatientByID(id uuid.UUID) (*Patient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	copy := *p
	return &copy, nil
}

func (m *Memory) ListPatients() ([]*Patient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Patient, 0, len(m.patients))
	for _, p := range m.patients {
		copy := *p
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// DeletePatientCascade removes the patient and every dependent record:
// bills first, then prescription lines, then prescriptions, then the patient.
func (m *Memory) DeletePatientCascade(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.patients[id]; !ok {
		return ErrNotFound
	}
	owned := make(map[uuid.UUID]bool)
	for pid, p := range m.prescriptions {
		if p.PatientID == id {
			owned[pid] = true
		}
	}
	for bid, b := range m.bills {
		if owned[b.PrescriptionID] {
			delete(m.bills, bid)
		}
	}
	kept := m.lines[:0]
	for _, l := range m.lines {
		if !owned[l.PrescriptionID] {
			kept = append(kept, l)
		}
	}
	m.lines = kept
	for pid := range owned {
		delete(m.prescriptions, pid)
	}
	delete(m.patients, id)
	return nil
}

// -- Medicines --

func (m *Memory) CreateMedicine(med *Medicine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if med.ID == uuid.Nil {
		med.ID = uuid.New()
	}
	stored := *med
	m.medicines[med.ID] = &stored
	m.medicineOrder = append(m.medicineOrder, med.ID)
	return nil
}

func (m *Memory) MedicineByID(id uuid.UUID) (*Medicine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	med, ok := m.medicines[id]
	if !ok {
		return nil, ErrNotFound
	}
	copy := *med
	return &copy, nil
}

func (m *Memory) ListMedicines() ([]*Medicine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Medicine, 0, len(m.medicineOrder))
	for _, id := range m.medicineOrder {
		if med, ok := m.medicines[id]; ok {
			copy := *med
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (m *Memory) LowStock(threshold int) ([]*Medicine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Medicine
	for _, id := range m.medicineOrder {
		if med, ok := m.medicines[id]; ok && med.Quantity < threshold {
			copy := *med
			out = append(out, &copy)
		}
	}
	return out, nil
}

// -- Prescriptions --

func (m *Memory) CreatePrescription(p *Prescription, lines []PrescriptionLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.patients[p.PatientID]; !ok {
		return ErrNotFound
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Status = StatusPending
	p.CreatedAt = time.Now()
	stored := *p
	m.prescriptions[p.ID] = &stored
	for i := range lines {
		l := lines[i]
		if l.ID == uuid.Nil {
			l.ID = uuid.New()
		}
		l.PrescriptionID = p.ID
		m.lines = append(m.lines, &l)
	}
	return nil
}

func (m *Memory) PrescriptionByID(id uuid.UUID) (*Prescription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.prescriptions[id]
	if !ok {
		return nil, ErrNotFound
	}
	copy := *p
	return &copy, nil
}

func (m *Memory) RecentPrescriptions(limit int) ([]*Prescription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Prescription, 0, len(m.prescriptions))
	for _, p := range m.prescriptions {
		copy := *p
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) contextLinesLocked(prescriptionID uuid.UUID) []ContextLine {
	var out []ContextLine
	for _, l := range m.lines {
		if l.PrescriptionID != prescriptionID {
			continue
		}
		cl := ContextLine{MedicineID: l.MedicineID, Dosage: l.Dosage, Days: l.Days}
		if med, ok := m.medicines[l.MedicineID]; ok {
			cl.MedicineName = med.Name
			cl.UnitPrice = med.Price
		}
		out = append(out, cl)
	}
	return out
}

func (m *Memory) PrescriptionContext(id uuid.UUID) (*PrescriptionContext, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.prescriptions[id]
	if !ok {
		return nil, ErrNotFound
	}
	pctx := &PrescriptionContext{PrescriptionID: id, Status: p.Status, Lines: m.contextLinesLocked(id)}
	if pat, ok := m.patients[p.PatientID]; ok {
		pctx.Allergies = pat.Allergies
	}
	return pctx, nil
}

func (m *Memory) PrescriptionDetail(id uuid.UUID) (*PrescriptionDetail, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.prescriptions[id]
	if !ok {
		return nil, ErrNotFound
	}
	d := &PrescriptionDetail{Prescription: *p}
	if pat, ok := m.patients[p.PatientID]; ok {
		d.PatientName = pat.Name
	}
	if p.PrescriberID != nil {
		if u, ok := m.users[*p.PrescriberID]; ok {
			d.PrescriberName = u.FullName
		}
	}
	for _, cl := range m.contextLinesLocked(id) {
		dl := DetailLine{ContextLine: cl}
		if med, ok := m.medicines[cl.MedicineID]; ok {
			dl.Stock = med.Quantity
		}
		d.Lines = append(d.Lines, dl)
	}
	for _, b := range m.bills {
		if b.PrescriptionID == id {
			bill := *b
			d.Bill = &bill
			break
		}
	}
	return d, nil
}

func (m *Memory) PatientHistory(patientID uuid.UUID) ([]*HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.patients[patientID]; !ok {
		return nil, ErrNotFound
	}
	var out []*HistoryEntry
	for _, p := range m.prescriptions {
		if p.PatientID != patientID {
			continue
		}
		e := &HistoryEntry{Prescription: *p, Lines: m.contextLinesLocked(p.ID)}
		if p.PrescriberID != nil {
			if u, ok := m.users[*p.PrescriberID]; ok {
				e.PrescriberName = u.FullName
			}
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// -- Fulfillment --

// CommitFulfillment applies the three fulfillment mutations as one unit under
// the store mutex: deduct each line's day count from stock, advance the
// prescription to validated, and create the single Unpaid bill.
func (m *Memory) CommitFulfillment(prescriptionID uuid.UUID, lines []ContextLine, total float64) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.prescriptions[prescriptionID]
	if !ok {
		return uuid.Nil, ErrNotFound
	}
	if p.Status != StatusPending {
		return uuid.Nil, ErrAlreadyProcessed
	}
	for _, l := range lines {
		if med, ok := m.medicines[l.MedicineID]; ok {
			med.Quantity -= l.Days
		}
	}
	p.Status = StatusValidated
	bill := &Bill{
		ID:             uuid.New(),
		PrescriptionID: prescriptionID,
		TotalAmount:    total,
		PaymentStatus:  PaymentUnpaid,
		GeneratedAt:    time.Now(),
	}
	m.bills[bill.ID] = bill
	return bill.ID, nil
}

// MarkPaid settles a bill and advances its prescription to dispensed as one
// unit. A bill that is already Paid is a no-op and reports alreadyPaid.
func (m *Memory) MarkPaid(billID uuid.UUID) (prescriptionID uuid.UUID, alreadyPaid bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bills[billID]
	if !ok {
		return uuid.Nil, false, ErrNotFound
	}
	if b.PaymentStatus == PaymentPaid {
		return b.PrescriptionID, true, nil
	}
	b.PaymentStatus = PaymentPaid
	if p, ok := m.prescriptions[b.PrescriptionID]; ok {
		p.Status = StatusDispensed
	}
	return b.PrescriptionID, false, nil
}

// -- Bills --

func (m *Memory) BillByID(id uuid.UUID) (*Bill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bills[id]
	if !ok {
		return nil, ErrNotFound
	}
	copy := *b
	return &copy, nil
}

func (m *Memory) DeleteBill(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bills[id]; !ok {
		return ErrNotFound
	}
	delete(m.bills, id)
	return nil
}

func (m *Memory) Invoice(billID uuid.UUID) (*Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bills[billID]
	if !ok {
		return nil, ErrNotFound
	}
	inv := &Invoice{Bill: *b, Items: m.contextLinesLocked(b.PrescriptionID)}
	if p, ok := m.prescriptions[b.PrescriptionID]; ok {
		if pat, ok := m.patients[p.PatientID]; ok {
			inv.PatientName = pat.Name
		}
		if p.PrescriberID != nil {
			if u, ok := m.users[*p.PrescriberID]; ok {
				inv.PrescriberName = u.FullName
			}
		}
	}
	return inv, nil
}

func (m *Memory) RecentSales(limit int) ([]*SaleRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*SaleRecord, 0, len(m.bills))
	for _, b := range m.bills {
		s := &SaleRecord{
			BillID:         b.ID,
			PrescriptionID: b.PrescriptionID,
			TotalAmount:    b.TotalAmount,
			PaymentStatus:  b.PaymentStatus,
			GeneratedAt:    b.GeneratedAt,
		}
		if p, ok := m.prescriptions[b.PrescriptionID]; ok {
			if pat, ok := m.patients[p.PatientID]; ok {
				s.PatientName = pat.Name
			}
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GeneratedAt.After(out[j].GeneratedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// -- Reporting --

func (m *Memory) Revenue() (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var total float64
	for _, b := range m.bills {
		if b.PaymentStatus == PaymentPaid {
			total += b.TotalAmount
		}
	}
	return total, nil
}

func (m *Memory) StatusCounts() ([]StatusCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := map[string]int{}
	for _, p := range m.prescriptions {
		counts[p.Status]++
	}
	out := make([]StatusCount, 0, 3)
	for _, s := range []string{StatusPending, StatusValidated, StatusDispensed} {
		out = append(out, StatusCount{Status: s, Count: counts[s]})
	}
	return out, nil
}

func (m *Memory) TopMedicines(n int) ([]MedicineUsage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	totals := map[string]int{}
	var order []string
	for _, l := range m.lines {
		med, ok := m.medicines[l.MedicineID]
		if !ok {
			continue
		}
		if _, seen := totals[med.Name]; !seen {
			order = append(order, med.Name)
		}
		totals[med.Name] += l.Days
	}
	out := make([]MedicineUsage, 0, len(order))
	for _, name := range order {
		out = append(out, MedicineUsage{Name: name, Days: totals[name]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Days > out[j].Days })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}
