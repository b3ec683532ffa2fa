package billing

import (
	"context"
	"errors"

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

func (r *repoPG) ByID(ctx context.Context, id uuid.UUID) (*records.Bill, error) {
	var b records.Bill
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, prescription_id, total_amount, payment_status, generated_at
		FROM billing WHERE id = $1`, id).
		Scan(&b.ID, &b.PrescriptionID, &b.TotalAmount, &b.PaymentStatus, &b.GeneratedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, records.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repoPG) Invoice(ctx context.Context, billID uuid.UUID) (*records.Invoice, error) {
	conn := r.conn(ctx)

	var inv records.Invoice
	err := conn.QueryRow(ctx, `
		SELECT b.id, b.prescription_id, b.total_amount, b.payment_status, b.generated_at,
		       pat.name, COALESCE(u.full_name, '')
		FROM billing b
		JOIN prescriptions p ON b.prescription_id = p.id
		JOIN patients pat ON p.patient_id = pat.id
		LEFT JOIN users u ON p.prescriber_id = u.id
		WHERE b.id = $1`, billID).
		Scan(&inv.ID, &inv.PrescriptionID, &inv.TotalAmount, &inv.PaymentStatus, &inv.GeneratedAt,
			&inv.PatientName, &inv.PrescriberName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, records.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := conn.Query(ctx, `
		SELECT pd.medicine_id, m.name, pd.dosage, pd.days, m.price
		FROM prescription_details pd
		JOIN medicines m ON pd.medicine_id = m.id
		WHERE pd.prescription_id = $1
		ORDER BY pd.id`, inv.PrescriptionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var l records.ContextLine
		if err := rows.Scan(&l.MedicineID, &l.MedicineName, &l.Dosage, &l.Days, &l.UnitPrice); err != nil {
			return nil, err
		}
		inv.Items = append(inv.Items, l)
	}
	return &inv, rows.Err()
}

func (r *repoPG) RecentSales(ctx context.Context, limit int) ([]*records.SaleRecord, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT b.id, b.prescription_id, pat.name, b.total_amount, b.payment_status, b.generated_at
		FROM billing b
		JOIN prescriptions p ON b.prescription_id = p.id
		JOIN patients pat ON p.patient_id = pat.id
		ORDER BY b.generated_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*records.SaleRecord
	for rows.Next() {
		var s records.SaleRecord
		if err := rows.Scan(&s.BillID, &s.PrescriptionID, &s.PatientName, &s.TotalAmount, &s.PaymentStatus, &s.GeneratedAt); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM billing WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return records.ErrNotFound
	}
	return nil
}
