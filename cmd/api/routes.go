package main

import (
	"net/http"

	"municipal-docs/internal/httpapi"
	"municipal-docs/internal/metrics"
	"municipal-docs/internal/rbac"
	"municipal-docs/pkg/store"

	"github.com/gin-gonic/gin"
)

type routeDeps struct {
	Handlers    httpapi.Handlers
	Guard       rbac.Guard
	AuthMW      gin.HandlerFunc
	Metrics     *metrics.Metrics
	Readiness   map[string]store.Check
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers delegate to internal modules;
// every authorization decision goes through rbac.Guard.
func registerRoutes(r *gin.Engine, d routeDeps) {
	h := d.Handlers
	g := d.Guard

	// public
	r.GET("/healthz", func(c *gin.Context) {
		checks, ok := store.Probe(c.Request.Context(), d.Readiness)
		if !ok {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "checks": checks})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": checks})
	})
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	// session endpoints authenticate with the credential in the body
	authGroup := r.Group("/v1/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/logout", h.Logout)
	}

	v1 := r.Group("/v1")
	v1.Use(d.AuthMW)
	{
		v1.GET("/me", h.Me)

		// Document CRUD, upload and export live outside the auth core; the
		// routes exist here so their guards are declared in one place.
		docs := v1.Group("/workspaces/:workspace/documents")
		docs.Use(g.RequireWorkspaceParam("workspace"))
		{
			docs.GET("", httpapi.NotImplemented)
			docs.GET("/:document_id", httpapi.NotImplemented)
			docs.POST("", httpapi.NotImplemented)

			editors := docs.Group("")
			editors.Use(g.RequireAnyRole(
				rbac.RoleAdministrator,
				rbac.RolePresident,
				rbac.RoleVicePresident,
				rbac.RoleSecretaryCAM,
				rbac.RoleSecretaryAMPP,
				rbac.RoleSecretaryCF,
				rbac.RoleIntendant,
			))
			editors.PUT("/:document_id", httpapi.NotImplemented)
			editors.DELETE("/:document_id", httpapi.NotImplemented)
		}

		reports := v1.Group("/reports")
		reports.Use(g.Require(rbac.All(
			rbac.RequireRoles(rbac.RoleAdministrator, rbac.RolePresident, rbac.RoleVicePresident),
			rbac.RequireWorkspaces(rbac.WorkspacePresidency),
		)))
		{
			reports.GET("/export", httpapi.NotImplemented)
		}

		// ADMIN routes
		admin := v1.Group("/admin")
		admin.Use(g.RequireAnyRole(rbac.RoleAdministrator))
		{
			admin.GET("/auth/stats", h.Stats)
			admin.GET("/users", httpapi.NotImplemented)
			admin.POST("/users", httpapi.NotImplemented)
		}
	}
}
