package identity

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

const userCols = `id, full_name, username, email, password, role, created_at`

func scanUser(row pgx.Row) (*records.User, error) {
	var u records.User
	err := row.Scan(&u.ID, &u.FullName, &u.Username, &u.Email, &u.Password, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, records.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repoPG) Create(ctx context.Context, u *records.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = time.Now()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO users (id, full_name, username, email, password, role, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		u.ID, u.FullName, u.Username, u.Email, u.Password, u.Role, u.CreatedAt)
	return err
}

func (r *repoPG) ByCredentials(ctx context.Context, username, password string) (*records.User, error) {
	return scanUser(r.conn(ctx).QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE username = $1 AND password = $2`,
		username, password))
}

func (r *repoPG) ByUsernameEmail(ctx context.Context, username, email string) (*records.User, error) {
	return scanUser(r.conn(ctx).QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE username = $1 AND email = $2`,
		username, email))
}

func (r *repoPG) SetPassword(ctx context.Context, id uuid.UUID, password string) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE users SET password = $2 WHERE id = $1`, id, password)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return records.ErrNotFound
	}
	return nil
}

// Delete removes the user. Prescriptions written by the user survive with
// their prescriber cleared (FK is ON DELETE SET NULL).
func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return records.ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context) ([]*records.User, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+userCols+` FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*records.User
	for rows.Next() {
		var u records.User
		if err := rows.Scan(&u.ID, &u.FullName, &u.Username, &u.Email, &u.Password, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}
