package rbac

// Identity is the resolved caller an authorization decision is made for.
type Identity struct {
	UserID     string
	Email      string
	Role       Role
	Workspaces []Workspace
}

// Decision is the outcome of Evaluate. Deny outcomes are normal results,
// not errors; the HTTP layer maps both to 403.
type Decision int

const (
	Allow Decision = iota
	DenyRole
	DenyWorkspace
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyRole:
		return "deny_role"
	case DenyWorkspace:
		return "deny_workspace"
	default:
		return "unknown"
	}
}

// Requirement declares what a protected action demands.
//
// A nil Roles or Workspaces slice leaves that dimension unrestricted.
// A non-nil empty slice denies everyone on that dimension.
// Build requirements with RequireRoles, RequireWorkspaces and All.
type Requirement struct {
	Roles      []Role
	Workspaces []Workspace

	and []Requirement
}

// RequireRoles demands that the caller holds any of roles.
func RequireRoles(roles ...Role) Requirement {
	if roles == nil {
		roles = []Role{}
	}
	return Requirement{Roles: roles}
}

// RequireWorkspaces demands access to any of workspaces.
func RequireWorkspaces(workspaces ...Workspace) Requirement {
	if workspaces == nil {
		workspaces = []Workspace{}
	}
	return Requirement{Workspaces: workspaces}
}

// All composes requirements by logical AND. Evaluating the result is
// equivalent to evaluating every part and failing on the first denial,
// with all role clauses checked before any workspace clause.
func All(reqs ...Requirement) Requirement {
	var out Requirement
	for _, r := range reqs {
		out.and = append(out.and, r.clauses()...)
	}
	return out
}

func (r Requirement) clauses() []Requirement {
	out := make([]Requirement, 0, 1+len(r.and))
	if r.Roles != nil || r.Workspaces != nil {
		out = append(out, Requirement{Roles: r.Roles, Workspaces: r.Workspaces})
	}
	for _, c := range r.and {
		out = append(out, c.clauses()...)
	}
	return out
}

// HasRole is an exact match on the identity's role.
func HasRole(id Identity, role Role) bool {
	return id.Role == role
}

// HasAnyRole reports whether the identity's role is in roles.
// An empty set never matches.
func HasAnyRole(id Identity, roles []Role) bool {
	for _, r := range roles {
		if id.Role == r {
			return true
		}
	}
	return false
}

// HasWorkspaceAccess is true for administrators regardless of membership,
// otherwise only for explicit members of ws.
func HasWorkspaceAccess(id Identity, ws Workspace) bool {
	if IsAdministrator(id.Role) {
		return true
	}
	for _, m := range id.Workspaces {
		if m == ws {
			return true
		}
	}
	return false
}

func hasAnyWorkspace(id Identity, workspaces []Workspace) bool {
	for _, ws := range workspaces {
		if HasWorkspaceAccess(id, ws) {
			return true
		}
	}
	return false
}

// Evaluate decides whether id satisfies req. Role clauses are checked first,
// so a caller failing both dimensions gets DenyRole.
func Evaluate(id Identity, req Requirement) Decision {
	clauses := req.clauses()
	for _, c := range clauses {
		if c.Roles != nil && !HasAnyRole(id, c.Roles) {
			return DenyRole
		}
	}
	for _, c := range clauses {
		if c.Workspaces != nil && !hasAnyWorkspace(id, c.Workspaces) {
			return DenyWorkspace
		}
	}
	return Allow
}
