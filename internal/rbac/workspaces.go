package rbac

import (
	"fmt"
	"strings"
)

// Workspace is an organizational unit that gates documents and features
// independently of role.
type Workspace string

const (
	WorkspaceCAM          Workspace = "cam"
	WorkspaceAMPP         Workspace = "ampp"
	WorkspacePresidency   Workspace = "presidencia"
	WorkspaceIntendancy   Workspace = "intendencia"
	WorkspaceCommissionCF Workspace = "comisiones_cf"
)

var allWorkspaces = []Workspace{
	WorkspaceCAM,
	WorkspaceAMPP,
	WorkspacePresidency,
	WorkspaceIntendancy,
	WorkspaceCommissionCF,
}

// Workspaces returns every known workspace.
func Workspaces() []Workspace {
	out := make([]Workspace, len(allWorkspaces))
	copy(out, allWorkspaces)
	return out
}

func (w Workspace) Valid() bool {
	for _, known := range allWorkspaces {
		if w == known {
			return true
		}
	}
	return false
}

func (w Workspace) String() string { return string(w) }

func ParseWorkspace(s string) (Workspace, error) {
	w := Workspace(s)
	if !w.Valid() {
		return "", fmt.Errorf("rbac: unknown workspace %q", s)
	}
	return w, nil
}

// ParseWorkspaceList parses a comma separated list as stored by the users
// repository. Blank entries are skipped; unknown names fail the whole list.
func ParseWorkspaceList(s string) ([]Workspace, error) {
	var out []Workspace
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		w, err := ParseWorkspace(part)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

// DefaultWorkspaces is the membership implied by a role when the identity
// source has no explicit rows for the user.
func DefaultWorkspaces(r Role) []Workspace {
	switch r {
	case RoleAdministrator:
		return Workspaces()
	case RolePresident, RoleVicePresident:
		return []Workspace{WorkspacePresidency}
	case RoleSecretaryCAM:
		return []Workspace{WorkspaceCAM}
	case RoleSecretaryAMPP:
		return []Workspace{WorkspaceAMPP}
	case RoleSecretaryCF, RoleCommissionerCF:
		return []Workspace{WorkspaceCommissionCF}
	case RoleIntendant:
		return []Workspace{WorkspaceIntendancy}
	default:
		return nil
	}
}
