package account

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"attendance-monitor/internal/apperrors"
	"attendance-monitor/internal/metrics"
	"attendance-monitor/internal/store"
)

// maxPasswordBytes is bcrypt's input limit.
const maxPasswordBytes = 72

var errInvalidCredentials = apperrors.Unauthenticated("Invalid username or password")

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// Service implements registration, login and the default admin bootstrap.
type Service struct {
	repo   *Repository
	hasher PasswordHasher
	lg     zerolog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewService creates a service backed by a repository.
func NewService(repo *Repository, hasher PasswordHasher, lg zerolog.Logger) *Service {
	return &Service{repo: repo, hasher: hasher, lg: lg.With().Str("component", "account").Logger()}
}

// Register creates a student or instructor account on behalf of an admin.
func (s *Service) Register(ctx context.Context, requester Account, username, password, role string) (Account, error) {
	if !IsAdmin(requester) {
		return Account{}, apperrors.Forbidden("Access denied. Only the admin can register new users.")
	}
	r, ok := ParseMemberRole(role)
	if !ok {
		return Account{}, apperrors.Validation("Invalid role. Only 'student' and 'instructor' roles are allowed.")
	}
	username = strings.TrimSpace(username)
	if username == "" || len(username) > 100 {
		return Account{}, apperrors.Validation("username must be between 1 and 100 characters")
	}
	if password == "" || len(password) > maxPasswordBytes {
		return Account{}, apperrors.Validation(fmt.Sprintf("password must be between 1 and %d bytes", maxPasswordBytes))
	}

	existing, err := s.repo.ByUsername(ctx, username)
	if err != nil {
		return Account{}, fmt.Errorf("lookup username: %w", err)
	}
	if existing != nil {
		return Account{}, usernameTaken()
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return Account{}, fmt.Errorf("hash password: %w", err)
	}
	a := Account{Username: username, PasswordHash: hash, Role: r}
	if err := s.repo.Create(ctx, &a); err != nil {
		if store.IsUniqueViolation(err) {
			return Account{}, usernameTaken()
		}
		return Account{}, fmt.Errorf("create account: %w", err)
	}

	metrics.Registrations.Inc()
	s.lg.Info().Uint("accountID", a.ID).Str("username", a.Username).Str("role", string(a.Role)).
		Uint("registeredBy", requester.ID).Msg("account registered")
	return a, nil
}

func usernameTaken() error {
	return apperrors.Conflict("Username already exists. Please choose another.")
}

// Authenticate checks username and password. Unknown users and wrong
// passwords fail identically, and both pay for one hash comparison.
func (s *Service) Authenticate(ctx context.Context, username, password string) (Account, error) {
	a, err := s.repo.ByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return Account{}, fmt.Errorf("lookup account: %w", err)
	}
	if a == nil {
		s.hasher.Verify(s.dummy(), password)
		metrics.Logins.WithLabelValues("failure").Inc()
		return Account{}, errInvalidCredentials
	}
	if !s.hasher.Verify(a.PasswordHash, password) {
		metrics.Logins.WithLabelValues("failure").Inc()
		s.lg.Warn().Str("username", a.Username).Msg("login rejected")
		return Account{}, errInvalidCredentials
	}
	metrics.Logins.WithLabelValues("success").Inc()
	return *a, nil
}

func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("not-a-real-password")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

// EnsureDefaultAdmin creates the admin account if no account has that
// username. Losing a creation race to another process is not an error.
func (s *Service) EnsureDefaultAdmin(ctx context.Context, username, password string) (bool, error) {
	existing, err := s.repo.ByUsername(ctx, username)
	if err != nil {
		return false, fmt.Errorf("lookup admin: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}
	admin := Account{Username: username, PasswordHash: hash, Role: RoleAdmin}
	if err := s.repo.Create(ctx, &admin); err != nil {
		if store.IsUniqueViolation(err) {
			s.lg.Debug().Str("username", username).Msg("default admin created concurrently")
			return false, nil
		}
		return false, fmt.Errorf("create admin: %w", err)
	}
	s.lg.Info().Str("username", username).Msg("default admin account created")
	return true, nil
}

// Get reloads an account by id.
func (s *Service) Get(ctx context.Context, id uint) (Account, error) {
	a, err := s.repo.ByID(ctx, id)
	if err != nil {
		return Account{}, fmt.Errorf("load account %d: %w", id, err)
	}
	if a == nil {
		return Account{}, apperrors.NotFound("account not found")
	}
	return *a, nil
}

// ListMembers returns every student and instructor.
func (s *Service) ListMembers(ctx context.Context) ([]Account, error) {
	members, err := s.repo.ListByRoles(ctx, MemberRoles...)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}
