package reporting

import (
	"context"

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

func (s *storePG) Revenue(ctx context.Context) (float64, error) {
	var total float64
	err := s.conn(ctx).QueryRow(ctx, `
		SELECT COALESCE(SUM(total_amount), 0)
		FROM billing WHERE payment_status = $1`, records.PaymentPaid).Scan(&total)
	return total, err
}

func (s *storePG) StatusCounts(ctx context.Context) ([]records.StatusCount, error) {
	rows, err := s.conn(ctx).Query(ctx, `
		SELECT status, COUNT(*) FROM prescriptions GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byStatus := map[string]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		byStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Fixed bucket order keeps the dashboard stable.
	out := make([]records.StatusCount, 0, 3)
	for _, status := range []string{records.StatusPending, records.StatusValidated, records.StatusDispensed} {
		out = append(out, records.StatusCount{Status: status, Count: byStatus[status]})
	}
	return out, nil
}

func (s *storePG) LowStock(ctx context.Context, threshold int) ([]*records.Medicine, error) {
	rows, err := s.conn(ctx).Query(ctx, `
		SELECT id, name, quantity, price
		FROM medicines WHERE quantity < $1 ORDER BY quantity ASC`, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*records.Medicine
	for rows.Next() {
		var m records.Medicine
		if err := rows.Scan(&m.ID, &m.Name, &m.Quantity, &m.Price); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (s *storePG) TopMedicines(ctx context.Context, n int) ([]records.MedicineUsage, error) {
	rows, err := s.conn(ctx).Query(ctx, `
		SELECT m.name, COALESCE(SUM(pd.days), 0) AS days
		FROM prescription_details pd
		JOIN medicines m ON pd.medicine_id = m.id
		GROUP BY m.name
		ORDER BY days DESC, m.name ASC
		LIMIT $1`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []records.MedicineUsage
	for rows.Next() {
		var u records.MedicineUsage
		if err := rows.Scan(&u.Name, &u.Days); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
