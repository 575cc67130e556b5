package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"municipal-docs/internal/rbac"
)

// Repository is the read contract the auth core needs from persistence.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
}

// PostgresRepo reads users through database/sql (pgx stdlib driver).
//
// Assumed table:
//
//	users(id text primary key, email text unique, password_hash text,
//	      role text, workspaces text[], active boolean)
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const selectUser = `
SELECT id, email, password_hash, role, coalesce(array_to_string(workspaces, ','), ''), active
FROM users
`

func (r *PostgresRepo) FindByEmail(ctx context.Context, email string) (User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, selectUser+`WHERE lower(email) = lower($1)`, strings.TrimSpace(email)))
}

func (r *PostgresRepo) FindByID(ctx context.Context, id string) (User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, selectUser+`WHERE id = $1`, id))
}

func (r *PostgresRepo) scanOne(row *sql.Row) (User, error) {
	var (
		u          User
		role       string
		workspaces string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &workspaces, &u.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return decodeUser(u, role, workspaces)
}

func decodeUser(u User, role, workspaces string) (User, error) {
	r, err := rbac.ParseRole(role)
	if err != nil {
		return User{}, fmt.Errorf("users: user %s: %w", u.ID, err)
	}
	ws, err := rbac.ParseWorkspaceList(workspaces)
	if err != nil {
		return User{}, fmt.Errorf("users: user %s: %w", u.ID, err)
	}
	u.Role = r
	u.Workspaces = ws
	return u, nil
}
