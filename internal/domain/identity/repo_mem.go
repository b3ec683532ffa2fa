package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/medihub/pharmacy/internal/records"
)

// repoMem adapts the process-local fallback store to the user repository.
type repoMem struct{ mem *records.Memory }

func NewRepoMem(mem *records.Memory) Repository { return &repoMem{mem: mem} }

func (r *repoMem) Create(_ context.Context, u *records.User) error {
	return r.mem.CreateUser(u)
}

func (r *repoMem) ByCredentials(_ context.Context, username, password string) (*records.User, error) {
	return r.mem.UserByCredentials(username, password)
}

func (r *repoMem) ByUsernameEmail(_ context.Context, username, email string) (*records.User, error) {
	return r.mem.UserByUsernameEmail(username, email)
}

func (r *repoMem) SetPassword(_ context.Context, id uuid.UUID, password string) error {
	return r.mem.SetUserPassword(id, password)
}

func (r *repoMem) Delete(_ context.Context, id uuid.UUID) error {
	return r.mem.DeleteUser(id)
}

func (r *repoMem) List(_ context.Context) ([]*records.User, error) {
	return r.mem.ListUsers()
}
