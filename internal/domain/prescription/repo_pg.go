package prescription

import (
	"context"
	"errors"
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

// Create inserts the prescription header and all its lines in one
// transaction.
func (r *repoPG) Create(ctx context.Context, p *records.Prescription, lines []records.PrescriptionLine) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Status = records.StatusPending
	p.CreatedAt = time.Now()

	return db.RunInTx(ctx, r.pool, func(ctx context.Context) error {
		conn := r.conn(ctx)
		if _, err := conn.Exec(ctx, `
			INSERT INTO prescriptions (id, patient_id, prescriber_id, status, created_at)
			VALUES ($1,$2,$3,$4,$5)`,
			p.ID, p.PatientID, p.PrescriberID, p.Status, p.CreatedAt); err != nil {
			return err
		}
		for i := range lines {
			l := &lines[i]
			if l.ID == uuid.Nil {
				l.ID = uuid.New()
			}
			l.PrescriptionID = p.ID
			if _, err := conn.Exec(ctx, `
				INSERT INTO prescription_details (id, prescription_id, medicine_id, dosage, days)
				VALUES ($1,$2,$3,$4,$5)`,
				l.ID, l.PrescriptionID, l.MedicineID, l.Dosage, l.Days); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repoPG) ByID(ctx context.Context, id uuid.UUID) (*records.Prescription, error) {
	var p records.Prescription
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, patient_id, prescriber_id, status, created_at
		FROM prescriptions WHERE id = $1`, id).
		Scan(&p.ID, &p.PatientID, &p.PrescriberID, &p.Status, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, records.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) Detail(ctx context.Context, id uuid.UUID) (*records.PrescriptionDetail, error) {
	p, err := r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	d := &records.PrescriptionDetail{Prescription: *p}
	conn := r.conn(ctx)

	if err := conn.QueryRow(ctx,
		`SELECT name FROM patients WHERE id = $1`, p.PatientID).Scan(&d.PatientName); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if p.PrescriberID != nil {
		if err := conn.QueryRow(ctx,
			`SELECT full_name FROM users WHERE id = $1`, *p.PrescriberID).Scan(&d.PrescriberName); err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}

	rows, err := conn.Query(ctx, `
		SELECT pd.medicine_id, m.name, pd.dosage, pd.days, m.price, m.quantity
		FROM prescription_details pd
		JOIN medicines m ON pd.medicine_id = m.id
		WHERE pd.prescription_id = $1
		ORDER BY pd.id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var l records.DetailLine
		if err := rows.Scan(&l.MedicineID, &l.MedicineName, &l.Dosage, &l.Days, &l.UnitPrice, &l.Stock); err != nil {
			return nil, err
		}
		d.Lines = append(d.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var b records.Bill
	err = conn.QueryRow(ctx, `
		SELECT id, prescription_id, total_amount, payment_status, generated_at
		FROM billing WHERE prescription_id = $1`, id).
		Scan(&b.ID, &b.PrescriptionID, &b.TotalAmount, &b.PaymentStatus, &b.GeneratedAt)
	if err == nil {
		d.Bill = &b
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	return d, nil
}

func (r *repoPG) Recent(ctx context.Context, limit int) ([]*records.Prescription, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, prescriber_id, status, created_at
		FROM prescriptions ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*records.Prescription
	for rows.Next() {
		var p records.Prescription
		if err := rows.Scan(&p.ID, &p.PatientID, &p.PrescriberID, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
