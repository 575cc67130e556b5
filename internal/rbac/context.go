package rbac

import (
	"context"
	"errors"
)

type ctxKey struct{}

var ErrNoIdentity = errors.New("rbac: identity not in context")

// WithIdentity stores the resolved caller on ctx. The authentication
// middleware is the only writer.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func IdentityFrom(ctx context.Context) (Identity, error) {
	if id, ok := ctx.Value(ctxKey{}).(Identity); ok && id.UserID != "" {
		return id, nil
	}
	return Identity{}, ErrNoIdentity
}

// MembershipResolver supplies the workspaces a user belongs to.
type MembershipResolver interface {
	Memberships(ctx context.Context, userID string, role Role) ([]Workspace, error)
}

// RoleDefaults resolves memberships purely from the role.
type RoleDefaults struct{}

func (RoleDefaults) Memberships(_ context.Context, _ string, role Role) ([]Workspace, error) {
	return DefaultWorkspaces(role), nil
}
