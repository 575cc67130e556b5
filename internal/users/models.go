package users

import (
	"errors"

	"municipal-docs/internal/rbac"
)

// User is the identity record consulted at login and on refresh.
type User struct {
	ID           string           `json:"id" db:"id"`
	Email        string           `json:"email" db:"email"`
	PasswordHash string           `json:"-" db:"password_hash"`
	Role         rbac.Role        `json:"role" db:"role"`
	Workspaces   []rbac.Workspace `json:"workspaces" db:"workspaces"`
	Active       bool             `json:"active" db:"active"`
}

var (
	ErrNotFound           = errors.New("users: not found")
	ErrInvalidCredentials = errors.New("users: invalid credentials")
	ErrInactive           = errors.New("users: account inactive")
)
