package auth

import (
	"municipal-docs/internal/rbac"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType selects the secret a credential is signed and verified with.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Principal is the identity payload carried by a credential.
// Refresh credentials carry only UserID and Email.
type Principal struct {
	UserID string    `json:"userId"`
	Email  string    `json:"email"`
	Role   rbac.Role `json:"role,omitempty"`
}

// Reduced drops everything but the fields a refresh credential may carry.
func (p Principal) Reduced() Principal {
	return Principal{UserID: p.UserID, Email: p.Email}
}

// Claims are the only supported JWT claims shape for this service.
// They are immutable once issued.
type Claims struct {
	Principal
	TokenType TokenType `json:"token_type"`

	jwt.RegisteredClaims
}
