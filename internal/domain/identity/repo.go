package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/medihub/pharmacy/internal/records"
)

// Repository is the user store contract shared by the Postgres backend and
// the in-memory fallback.
type Repository interface {
	Create(ctx context.Context, u *records.User) error
	ByCredentials(ctx context.Context, username, password string) (*records.User, error)
	ByUsernameEmail(ctx context.Context, username, email string) (*records.User, error)
	SetPassword(ctx context.Context, id uuid.UUID, password string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*records.User, error)
}
