package auth

import (
	"net/http"

	"municipal-docs/internal/rbac"
	"municipal-docs/pkg/logger"

	"github.com/gin-gonic/gin"
)

const authorizationHeader = "Authorization"

// MsgInvalidSession is the only text clients see for any credential failure.
const MsgInvalidSession = "invalid session, please log in again"

// RequireAccessToken authenticates the bearer credential, resolves workspace
// memberships and injects the identity into the request context.
// It does not perform RBAC checks; those belong to internal/rbac.
func RequireAccessToken(m *Manager, memberships rbac.MembershipResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, ok := ExtractBearer(c.GetHeader(authorizationHeader))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": MsgInvalidSession})
			return
		}

		ctx := c.Request.Context()
		claims, err := m.Authenticate(ctx, tok)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": MsgInvalidSession})
			return
		}

		workspaces, err := memberships.Memberships(ctx, claims.UserID, claims.Role)
		if err != nil {
			logger.FromGin(c).Error("membership lookup failed", "user_id", claims.UserID, "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		ctx = WithSession(ctx, claims, tok)
		ctx = rbac.WithIdentity(ctx, rbac.Identity{
			UserID:     claims.UserID,
			Email:      claims.Email,
			Role:       claims.Role,
			Workspaces: workspaces,
		})
		c.Request = c.Request.WithContext(ctx)

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role.String())

		c.Next()
	}
}
