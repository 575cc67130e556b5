package httpapi

import (
	"context"
	"errors"
	"net/http"

	"municipal-docs/internal/audit"
	"municipal-docs/internal/auth"
	"municipal-docs/internal/rbac"
	"municipal-docs/internal/users"
	"municipal-docs/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse input, call internal services, return JSON.
type Handlers struct {
	Sessions *auth.Manager
	Users    *users.Service
	Audit    *audit.Service
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func newTokenResponse(p auth.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(p.AccessTTL.Seconds()),
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login checks credentials against the identity source and issues a pair.
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
		return
	}
	ctx := c.Request.Context()

	u, err := h.Users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		outcome := "invalid_credentials"
		if errors.Is(err, users.ErrInactive) {
			outcome = "inactive"
		} else if !errors.Is(err, users.ErrInvalidCredentials) {
			logger.FromGin(c).Error("login lookup failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		h.record(ctx, func() error { return h.Audit.LogLoginFailed(ctx, req.Email, c.ClientIP(), outcome) })
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	pair, err := h.Sessions.IssuePair(users.PrincipalOf(u))
	if err != nil {
		logger.FromGin(c).Error("token issuance failed", "user_id", u.ID, "kind", auth.Kind(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	h.record(ctx, func() error { return h.Audit.LogLogin(ctx, u.ID, u.Email, u.Role.String(), c.ClientIP()) })
	c.JSON(http.StatusOK, newTokenResponse(pair))
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h Handlers) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "refresh_token required"})
		return
	}
	ctx := c.Request.Context()

	pair, err := h.Sessions.Refresh(ctx, req.RefreshToken)
	if err != nil {
		h.record(ctx, func() error { return h.Audit.LogRefresh(ctx, "", "", c.ClientIP(), auth.Kind(err)) })
		if errors.Is(err, auth.ErrPrincipalUnavailable) {
			logger.FromGin(c).Error("refresh principal lookup failed", "err", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "refresh unavailable, retry"})
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.MsgInvalidSession})
		return
	}
	if claims, ok := h.Sessions.Codec().DecodeUnsafe(pair.AccessToken); ok {
		h.record(ctx, func() error {
			return h.Audit.LogRefresh(ctx, claims.UserID, claims.Role.String(), c.ClientIP(), "ok")
		})
	}
	c.JSON(http.StatusOK, newTokenResponse(pair))
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Logout revokes the bearer access credential and the refresh credential in
// the body. It does not require the access credential to still be valid;
// credentials the server did not sign are ignored and still answered 204.
func (h Handlers) Logout(c *gin.Context) {
	var req logoutRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
	}
	access, _ := auth.ExtractBearer(c.GetHeader("Authorization"))
	if access == "" && req.RefreshToken == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "nothing to revoke"})
		return
	}
	ctx := c.Request.Context()

	if err := h.Sessions.Logout(ctx, access, req.RefreshToken); err != nil {
		logger.FromGin(c).Error("logout failed", "kind", auth.Kind(err), "err", err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "logout unavailable, retry"})
		return
	}

	var userID, email string
	if claims, err := h.Sessions.Codec().Authentic(access, auth.TokenTypeAccess); err == nil {
		userID, email = claims.UserID, claims.Email
	}
	h.record(ctx, func() error { return h.Audit.LogLogout(ctx, userID, email, c.ClientIP()) })
	c.Status(http.StatusNoContent)
}

// Me returns the caller identity resolved by the auth middleware.
func (h Handlers) Me(c *gin.Context) {
	id, err := rbac.IdentityFrom(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.MsgInvalidSession})
		return
	}
	resp := gin.H{
		"user_id":    id.UserID,
		"email":      id.Email,
		"role":       id.Role,
		"workspaces": id.Workspaces,
	}
	if claims, err := auth.ClaimsFrom(c.Request.Context()); err == nil && claims.ExpiresAt != nil {
		resp["expires_at"] = claims.ExpiresAt.Time.UTC()
	}
	c.JSON(http.StatusOK, resp)
}

// Stats exposes registry size and configured TTLs to administrators.
func (h Handlers) Stats(c *gin.Context) {
	s, err := h.Sessions.Stats(c.Request.Context())
	if err != nil {
		logger.FromGin(c).Error("stats failed", "err", err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "stats unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"blacklisted_count":   s.BlacklistedCount,
		"access_ttl_seconds":  int64(s.AccessTTL.Seconds()),
		"refresh_ttl_seconds": int64(s.RefreshTTL.Seconds()),
	})
}

// NotImplemented answers routes whose handlers live outside the auth core.
func NotImplemented(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotImplemented, gin.H{"error": "not implemented"})
}

func (h Handlers) record(ctx context.Context, fn func() error) {
	if h.Audit == nil {
		return
	}
	if err := fn(); err != nil {
		logger.From(ctx).Warn("audit append failed", "err", err)
	}
}
