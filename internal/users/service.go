package users

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"municipal-docs/internal/auth"
	"municipal-docs/internal/rbac"

	"golang.org/x/crypto/bcrypt"
)

// Service is the identity source: it checks passwords at login, feeds the
// session manager on refresh and resolves workspace memberships per request.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// HashPassword returns a bcrypt hash suitable for users.password_hash.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// dummyHash is compared against on unknown emails so both branches of
// Authenticate pay the same bcrypt cost.
var dummyHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("municipal-docs/no-such-user"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
})

// Authenticate checks email and password. Unknown email and wrong password
// both return ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	if !u.Active {
		return User{}, ErrInactive
	}
	return u, nil
}

// Principal implements auth.PrincipalSource. Unknown and inactive users
// are reported as auth.ErrPrincipalGone; repository failures pass through.
func (s *Service) Principal(ctx context.Context, userID string) (auth.Principal, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return auth.Principal{}, fmt.Errorf("%w: %w", auth.ErrPrincipalGone, err)
	}
	if err != nil {
		return auth.Principal{}, err
	}
	if !u.Active {
		return auth.Principal{}, fmt.Errorf("%w: %w", auth.ErrPrincipalGone, ErrInactive)
	}
	return PrincipalOf(u), nil
}

// Memberships implements rbac.MembershipResolver. Users without explicit
// rows fall back to the workspaces implied by their role.
func (s *Service) Memberships(ctx context.Context, userID string, role rbac.Role) ([]rbac.Workspace, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return rbac.DefaultWorkspaces(role), nil
	}
	if err != nil {
		return nil, err
	}
	if len(u.Workspaces) == 0 {
		return rbac.DefaultWorkspaces(role), nil
	}
	return u.Workspaces, nil
}

func PrincipalOf(u User) auth.Principal {
	return auth.Principal{UserID: u.ID, Email: u.Email, Role: u.Role}
}
