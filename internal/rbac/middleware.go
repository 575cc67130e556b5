package rbac

import (
	"context"
	"net/http"

	"municipal-docs/internal/metrics"
	"municipal-docs/pkg/logger"

	"github.com/gin-gonic/gin"
)

const requirementKey = "rbac.requirement"

// DenialRecorder receives authorization denials for the internal audit trail.
// Recording is best-effort and never changes the response.
type DenialRecorder interface {
	LogAccessDenied(ctx context.Context, actorUserID, actorRole, workspace, ip, outcome string) error
}

// Guard turns Requirements into gin middleware. Guards stacked on nested
// route groups accumulate into one requirement, so the effective decision is
// the AND of every guard on the route.
type Guard struct {
	Metrics *metrics.Metrics
	Audit   DenialRecorder
}

// Require allows the request when the caller satisfies req together with any
// requirement installed by an outer guard.
func (g Guard) Require(req Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		g.enforce(c, req, "")
	}
}

// RequireAnyRole gates on role only.
func (g Guard) RequireAnyRole(roles ...Role) gin.HandlerFunc {
	return g.Require(RequireRoles(roles...))
}

// RequireWorkspace gates on membership in any of workspaces.
func (g Guard) RequireWorkspace(workspaces ...Workspace) gin.HandlerFunc {
	return g.Require(RequireWorkspaces(workspaces...))
}

// RequireWorkspaceParam reads the workspace from a path parameter.
// Unknown workspace names are answered with 404.
func (g Guard) RequireWorkspaceParam(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := ParseWorkspace(c.Param(param))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "workspace not found"})
			return
		}
		g.enforce(c, RequireWorkspaces(ws), ws)
	}
}

func (g Guard) enforce(c *gin.Context, req Requirement, ws Workspace) {
	id, err := IdentityFrom(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session, please log in again"})
		return
	}

	effective := req
	if prev, ok := c.Get(requirementKey); ok {
		if p, ok := prev.(Requirement); ok {
			effective = All(p, req)
		}
	}
	c.Set(requirementKey, effective)

	d := Evaluate(id, effective)
	g.Metrics.ObserveDecision(d.String())
	if d == Allow {
		c.Next()
		return
	}

	log := logger.FromGin(c)
	log.Warn("authorization denied",
		"user_id", id.UserID,
		"role", id.Role.String(),
		"outcome", d.String(),
		"path", c.FullPath(),
	)
	if g.Audit != nil {
		if err := g.Audit.LogAccessDenied(c.Request.Context(), id.UserID, id.Role.String(), ws.String(), c.ClientIP(), d.String()); err != nil {
			log.Warn("audit append failed", "err", err)
		}
	}
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
}
