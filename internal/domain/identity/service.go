package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medihub/pharmacy/internal/platform/auth"
	"github.com/medihub/pharmacy/internal/platform/db"
	"github.com/medihub/pharmacy/internal/records"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrSelfDelete blocks an admin from deleting their own account.
	ErrSelfDelete = errors.New("cannot delete the account you are logged in with")
)

// Service handles login, account management and password resets. Operations
// run against the durable store and degrade to the in-memory fallback when
// the database is unreachable.
type Service struct {
	durable  Repository
	fallback Repository
	secret   []byte
	tokenTTL time.Duration
	logger   zerolog.Logger
}

func NewService(durable, fallback Repository, secret []byte, tokenTTL time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		durable:  durable,
		fallback: fallback,
		secret:   secret,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// repo returns the durable backend, or the fallback when no database is
// configured at all.
func (s *Service) repo() Repository {
	if s.durable != nil {
		return s.durable
	}
	return s.fallback
}

func (s *Service) degraded(op string, err error) bool {
	if s.durable == nil || !db.Unavailable(err) {
		return false
	}
	s.logger.Warn().Err(err).Str("op", op).Msg("durable store unavailable, using fallback")
	return true
}

// Login verifies credentials and issues a session token.
func (s *Service) Login(ctx context.Context, username, password string) (*records.User, string, error) {
	u, err := s.repo().ByCredentials(ctx, username, password)
	if s.degraded("login", err) {
		u, err = s.fallback.ByCredentials(ctx, username, password)
	}
	if errors.Is(err, records.ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("look up credentials: %w", err)
	}

	token, err := auth.IssueToken(s.secret, u.ID.String(), u.Username, u.FullName, u.Role, s.tokenTTL)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return u, token, nil
}

func (s *Service) CreateUser(ctx context.Context, u *records.User) error {
	if u.Username == "" || u.Password == "" {
		return errors.New("username and password are required")
	}
	switch u.Role {
	case records.RoleAdmin, records.RoleDoctor, records.RolePharmacist:
	default:
		return fmt.Errorf("unknown role %q", u.Role)
	}

	err := s.repo().Create(ctx, u)
	if s.degraded("create user", err) {
		return s.fallback.Create(ctx, u)
	}
	return err
}

// DeleteUser removes an account. The caller cannot remove themselves, and
// prescriptions written by the removed user keep their history with the
// prescriber cleared.
func (s *Service) DeleteUser(ctx context.Context, id, callerID uuid.UUID) error {
	if id == callerID {
		return ErrSelfDelete
	}
	err := s.repo().Delete(ctx, id)
	if s.degraded("delete user", err) {
		return s.fallback.Delete(ctx, id)
	}
	return err
}

// ResetPassword sets a new password when the username and email match an
// existing account.
func (s *Service) ResetPassword(ctx context.Context, username, email, newPassword string) error {
	if newPassword == "" {
		return errors.New("new password is required")
	}

	repo := s.repo()
	u, err := repo.ByUsernameEmail(ctx, username, email)
	if s.degraded("reset password", err) {
		repo = s.fallback
		u, err = repo.ByUsernameEmail(ctx, username, email)
	}
	if err != nil {
		return err
	}
	return repo.SetPassword(ctx, u.ID, newPassword)
}

func (s *Service) ListUsers(ctx context.Context) ([]*records.User, error) {
	out, err := s.repo().List(ctx)
	if s.degraded("list users", err) {
		return s.fallback.List(ctx)
	}
	return out, err
}
