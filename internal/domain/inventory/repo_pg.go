package inventory

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

func (r *repoPG) Create(ctx context.Context, m *records.Medicine) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medicines (id, name, quantity, price)
		VALUES ($1,$2,$3,$4)`,
		m.ID, m.Name, m.Quantity, m.Price)
	return err
}

func (r *repoPG) ByID(ctx context.Context, id uuid.UUID) (*records.Medicine, error) {
	var m records.Medicine
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id, name, quantity, price FROM medicines WHERE id = $1`, id).
		Scan(&m.ID, &m.Name, &m.Quantity, &m.Price)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, records.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repoPG) List(ctx context.Context) ([]*records.Medicine, error) {
	return r.query(ctx, `SELECT id, name, quantity, price FROM medicines ORDER BY name`)
}

func (r *repoPG) LowStock(ctx context.Context, threshold int) ([]*records.Medicine, error) {
	return r.query(ctx,
		`SELECT id, name, quantity, price FROM medicines WHERE quantity < $1 ORDER BY quantity`,
		threshold)
}

func (r *repoPG) query(ctx context.Context, sql string, args ...interface{}) ([]*records.Medicine, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
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
