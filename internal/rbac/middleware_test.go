package rbac

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"municipal-docs/pkg/logger"

	"github.com/gin-gonic/gin"
)

type recordedDenial struct {
	userID, role, workspace, outcome string
}

type memDenials struct{ got []recordedDenial }

func (m *memDenials) LogAccessDenied(_ context.Context, userID, role, workspace, _ string, outcome string) error {
	m.got = append(m.got, recordedDenial{userID, role, workspace, outcome})
	return nil
}

type brokenDenials struct{}

func (brokenDenials) LogAccessDenied(context.Context, string, string, string, string, string) error {
	return errors.New("audit store down")
}

func withIdentity(id Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

func serve(r *gin.Engine, path string) int {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w.Code
}

func TestGuard_AdministratorBypassesWorkspace(t *testing.T) {
	gin.SetMode(gin.TestMode)
	g := Guard{}

	r := gin.New()
	r.GET("/x", withIdentity(admin), g.RequireAnyRole(RoleAdministrator), g.RequireWorkspace(WorkspaceCAM), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	if code := serve(r, "/x"); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
}

func TestGuard_MissingIdentityIsUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", Guard{}.RequireAnyRole(RoleAdministrator), func(c *gin.Context) { c.Status(http.StatusOK) })
	if code := serve(r, "/x"); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestGuard_NestedGroupsCompose(t *testing.T) {
	gin.SetMode(gin.TestMode)
	denials := &memDenials{}
	g := Guard{Audit: denials}

	build := func(id Identity) *gin.Engine {
		r := gin.New()
		outer := r.Group("/w/:workspace", withIdentity(id), g.RequireWorkspaceParam("workspace"))
		inner := outer.Group("/admin", g.RequireAnyRole(RoleSecretaryCAM, RoleAdministrator))
		inner.GET("/docs", func(c *gin.Context) { c.Status(http.StatusOK) })
		return r
	}

	if code := serve(build(secCAM), "/w/cam/admin/docs"); code != http.StatusOK {
		t.Fatalf("member with role: expected 200, got %d", code)
	}
	if code := serve(build(secCAM), "/w/ampp/admin/docs"); code != http.StatusForbidden {
		t.Fatalf("non-member: expected 403, got %d", code)
	}
	camIntendant := Identity{UserID: "i", Role: RoleIntendant, Workspaces: []Workspace{WorkspaceCAM}}
	if code := serve(build(camIntendant), "/w/cam/admin/docs"); code != http.StatusForbidden {
		t.Fatalf("wrong role: expected 403, got %d", code)
	}
	if code := serve(build(admin), "/w/presidencia/admin/docs"); code != http.StatusOK {
		t.Fatalf("admin: expected 200, got %d", code)
	}
	if code := serve(build(admin), "/w/finance/admin/docs"); code != http.StatusNotFound {
		t.Fatalf("unknown workspace: expected 404, got %d", code)
	}

	if len(denials.got) != 2 {
		t.Fatalf("expected 2 recorded denials, got %+v", denials.got)
	}
	if denials.got[0].outcome != "deny_workspace" || denials.got[0].workspace != "ampp" {
		t.Fatalf("unexpected first denial %+v", denials.got[0])
	}
	// Outer workspace guard passed, inner role guard re-evaluates the
	// accumulated requirement and reports the role failure.
	if denials.got[1].outcome != "deny_role" || denials.got[1].userID != "i" {
		t.Fatalf("unexpected second denial %+v", denials.got[1])
	}
}

func TestGuard_AuditFailureIsLoggedAndStillForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	g := Guard{Audit: brokenDenials{}}

	r := gin.New()
	r.Use(logger.Middleware(logger.NewWithWriter("test", &buf)))
	r.GET("/x", withIdentity(secCAM), g.RequireAnyRole(RoleAdministrator), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	if code := serve(r, "/x"); code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", code)
	}
	out := buf.String()
	if !strings.Contains(out, "audit append failed") || !strings.Contains(out, "audit store down") {
		t.Fatalf("expected audit failure in log, got %s", out)
	}
}
