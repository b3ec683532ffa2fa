package fulfillment

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

type storePG struct{ pool *pgxpool.Pool }

func NewStorePG(pool *pgxpool.Pool) Store { return &storePG{pool: pool} }

func (s *storePG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return s.pool
}

func (s *storePG) Context(ctx context.Context, id uuid.UUID) (*records.PrescriptionContext, error) {
	conn := s.conn(ctx)

	pctx := &records.PrescriptionContext{PrescriptionID: id}
	err := conn.QueryRow(ctx, `
		SELECT p.status, pat.allergies
		FROM prescriptions p
		JOIN patients pat ON p.patient_id = pat.id
		WHERE p.id = $1`, id).
		Scan(&pctx.Status, &pctx.Allergies)
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
		ORDER BY pd.id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var l records.ContextLine
		if err := rows.Scan(&l.MedicineID, &l.MedicineName, &l.Dosage, &l.Days, &l.UnitPrice); err != nil {
			return nil, err
		}
		pctx.Lines = append(pctx.Lines, l)
	}
	return pctx, rows.Err()
}

func (s *storePG) Commit(ctx context.Context, id uuid.UUID, lines []records.ContextLine, total float64) (uuid.UUID, error) {
	billID := uuid.New()

	err := db.RunInTx(ctx, s.pool, func(ctx context.Context) error {
		conn := s.conn(ctx)

		// Lock the header row so two pharmacists cannot dispense the same
		// prescription concurrently.
		var status string
		err := conn.QueryRow(ctx,
			`SELECT status FROM prescriptions WHERE id = $1 FOR UPDATE`, id).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return records.ErrNotFound
		}
		if err != nil {
			return err
		}
		if status != records.StatusPending {
			return records.ErrAlreadyProcessed
		}

		for _, l := range lines {
			if _, err := conn.Exec(ctx,
				`UPDATE medicines SET quantity = quantity - $1 WHERE id = $2`,
				l.Days, l.MedicineID); err != nil {
				return err
			}
		}

		if _, err := conn.Exec(ctx,
			`UPDATE prescriptions SET status = $1 WHERE id = $2`,
			records.StatusValidated, id); err != nil {
			return err
		}

		_, err = conn.Exec(ctx, `
			INSERT INTO billing (id, prescription_id, total_amount, payment_status, generated_at)
			VALUES ($1,$2,$3,$4,$5)`,
			billID, id, total, records.PaymentUnpaid, time.Now())
		return err
	})
	if err != nil {
		return uuid.Nil, err
	}
	return billID, nil
}

func (s *storePG) MarkPaid(ctx context.Context, billID uuid.UUID) (uuid.UUID, bool, error) {
	var prescriptionID uuid.UUID
	var alreadyPaid bool

	err := db.RunInTx(ctx, s.pool, func(ctx context.Context) error {
		conn := s.conn(ctx)

		var status string
		err := conn.QueryRow(ctx,
			`SELECT prescription_id, payment_status FROM billing WHERE id = $1 FOR UPDATE`, billID).
			Scan(&prescriptionID, &status)
		if errors.Is(err, pgx.ErrNoRows) {
			return records.ErrNotFound
		}
		if err != nil {
			return err
		}
		if status == records.PaymentPaid {
			alreadyPaid = true
			return nil
		}

		if _, err := conn.Exec(ctx,
			`UPDATE billing SET payment_status = $1 WHERE id = $2`,
			records.PaymentPaid, billID); err != nil {
			return err
		}
		_, err = conn.Exec(ctx,
			`UPDATE prescriptions SET status = $1 WHERE id = $2`,
			records.StatusDispensed, prescriptionID)
		return err
	})
	if err != nil {
		return uuid.Nil, false, err
	}
	return prescriptionID, alreadyPaid, nil
}
