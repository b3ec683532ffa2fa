package patient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medihub/pharmacy/internal/platform/db"
	"github.com/medihub/pharmacy/internal/records"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const patientCols = `id, name, age, gender, contact, allergies, created_at`

func scanPatient(row pgx.Row) (*records.Patient, error) {
	var p records.Patient
	err := row.Scan(&p.ID, &p.Name, &p.Age, &p.Gender, &p.Contact, &p.Allergies, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, records.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) Create(ctx context.Context, p *records.Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patients (id, name, age, gender, contact, allergies, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.Name, p.Age, p.Gender, p.Contact, p.Allergies, p.CreatedAt)
	return err
}

func (r *repoPG) ByID(ctx context.Context, id uuid.UUID) (*records.Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *repoPG) List(ctx context.Context) ([]*records.Patient, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patients ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*records.Patient
	for rows.Next() {
		var p records.Patient
		if err := rows.Scan(&p.ID, &p.Name, &p.Age, &p.Gender, &p.Contact, &p.Allergies, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// DeleteCascade removes the patient and every dependent record in one
// transaction, children first so no FK is ever violated mid-way.
func (r *repoPG) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return db.RunInTx(ctx, r.pool, func(ctx context.Context) error {
		conn := r.conn(ctx)

		var exists bool
		if err := conn.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM patients WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return records.ErrNotFound
		}

		if _, err := conn.Exec(ctx, `
			DELETE FROM billing WHERE prescription_id IN
				(SELECT id FROM prescriptions WHERE patient_id = $1)`, id); err != nil {
			return fmt.Errorf("delete bills: %w", err)
		}
		if _, err := conn.Exec(ctx, `
			DELETE FROM prescription_details WHERE prescription_id IN
				(SELECT id FROM prescriptions WHERE patient_id = $1)`, id); err != nil {
			return fmt.Errorf("delete prescription lines: %w", err)
		}
		if _, err := conn.Exec(ctx,
			`DELETE FROM prescriptions WHERE patient_id = $1`, id); err != nil {
			return fmt.Errorf("delete prescriptions: %w", err)
		}
		if _, err := conn.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete patient: %w", err)
		}
		return nil
	})
}

func (r *repoPG) History(ctx context.Context, patientID uuid.UUID) ([]*records.HistoryEntry, error) {
	if _, err := r.ByID(ctx, patientID); err != nil {
		return nil, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT p.id, p.patient_id, p.prescriber_id, p.status, p.created_at,
		       COALESCE(u.full_name, ''),
		       pd.medicine_id, m.name, pd.dosage, pd.days, m.price
		FROM prescriptions p
		LEFT JOIN users u ON p.prescriber_id = u.id
		JOIN prescription_details pd ON pd.prescription_id = p.id
		JOIN medicines m ON pd.medicine_id = m.id
		WHERE p.patient_id = $1
		ORDER BY p.created_at DESC, pd.id`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*records.HistoryEntry
	byID := make(map[uuid.UUID]*records.HistoryEntry)
	for rows.Next() {
		var (
			rx   records.Prescription
			name string
			line records.ContextLine
		)
		if err := rows.Scan(&rx.ID, &rx.PatientID, &rx.PrescriberID, &rx.Status, &rx.CreatedAt,
			&name, &line.MedicineID, &line.MedicineName, &line.Dosage, &line.Days, &line.UnitPrice); err != nil {
			return nil, err
		}
		entry, ok := byID[rx.ID]
		if !ok {
			entry = &records.HistoryEntry{Prescription: rx, PrescriberName: name}
			byID[rx.ID] = entry
			out = append(out, entry)
		}
		entry.Lines = append(entry.Lines, line)
	}
	return out, rows.Err()
}
