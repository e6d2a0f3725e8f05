package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/gdmcare/gdmcare/internal/domain/audit"
	"github.com/gdmcare/gdmcare/internal/platform/auth"
)

// Auditor records audit entries without failing the caller.
type Auditor interface {
	Record(ctx context.Context, e *audit.Entry)
}

type Service struct {
	users     Repository
	auditor   Auditor
	jwtSecret []byte
}

func NewService(users Repository, auditor Auditor, jwtSecret []byte) *Service {
	return &Service{users: users, auditor: auditor, jwtSecret: jwtSecret}
}

const minPasswordLength = 8

var validRoles = map[string]bool{
	RoleAdmin:     true,
	RoleClinician: true,
}

// Register creates a new user account with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, name, email, password, role string) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if role == "" {
		role = RoleClinician
	}

	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("a valid email is required")
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	if !validRoles[role] {
		return nil, fmt.Errorf("invalid role: %s", role)
	}

	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, fmt.Errorf("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.auditor.Record(ctx, &audit.Entry{
		Action:   audit.ActionCreateUser,
		Entity:   strPtr("user"),
		EntityID: &u.ID,
		Details:  strPtr(fmt.Sprintf("Registered user %s (%s)", u.Email, u.Role)),
	})
	return u, nil
}

// EnsureAccount provisions an active account with a fixed id if none exists.
// The dev auth middleware assumes this identity, so the server seeds it at
// startup; the empty password hash means the account cannot log in directly.
func (s *Service) EnsureAccount(ctx context.Context, id uuid.UUID, name, email, role string) error {
	if _, err := s.users.GetByID(ctx, id); err == nil {
		return nil
	}
	u := &User{
		ID:     id,
		Name:   name,
		Email:  strings.ToLower(email),
		Role:   role,
		Active: true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return fmt.Errorf("provision account %s: %w", email, err)
	}
	s.auditor.Record(ctx, &audit.Entry{
		Action:   audit.ActionCreateUser,
		Entity:   strPtr("user"),
		EntityID: &u.ID,
		Details:  strPtr(fmt.Sprintf("Provisioned account %s (%s)", u.Email, u.Role)),
	})
	return nil
}

// Authenticate verifies credentials and issues a signed token. Both the
// success and the failure paths are audited.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil || u == nil {
		s.auditFailedLogin(ctx, email, "unknown email")
		return nil, "", fmt.Errorf("invalid credentials")
	}
	if !u.Active {
		s.auditFailedLogin(ctx, email, "deactivated account")
		return nil, "", fmt.Errorf("account is deactivated")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		s.auditFailedLogin(ctx, email, "wrong password")
		return nil, "", fmt.Errorf("invalid credentials")
	}

	token, err := auth.IssueToken(s.jwtSecret, u.ID.String(), u.Name, u.Role)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	s.auditor.Record(ctx, &audit.Entry{
		UserID:  &u.ID,
		Action:  audit.ActionLoginSuccess,
		Details: strPtr(fmt.Sprintf("User %s logged in", u.Email)),
	})
	return u, token, nil
}

func (s *Service) auditFailedLogin(ctx context.Context, email, reason string) {
	s.auditor.Record(ctx, &audit.Entry{
		Action:  audit.ActionLoginFailed,
		Details: strPtr(fmt.Sprintf("Failed login for %s: %s", email, reason)),
	})
}

// Logout only records the event. Tokens are stateless and expire on their own.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID) {
	s.auditor.Record(ctx, &audit.Entry{
		UserID: &userID,
		Action: audit.ActionLogout,
	})
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.users.List(ctx, limit, offset)
}

// Deactivate disables an account without deleting its history.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	u.Active = false
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	s.auditor.Record(ctx, &audit.Entry{
		Action:   audit.ActionUpdateUser,
		Entity:   strPtr("user"),
		EntityID: &u.ID,
		Details:  strPtr(fmt.Sprintf("Deactivated user %s", u.Email)),
	})
	return nil
}

func strPtr(s string) *string { return &s }
