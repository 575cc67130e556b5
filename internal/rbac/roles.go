package rbac

import "fmt"

// Role is the closed set of municipal roles. Values are the wire form carried
// inside access credentials and stored in the users table; keep them stable.
type Role string

const (
	RoleAdministrator  Role = "administrador"
	RolePresident      Role = "presidente"
	RoleVicePresident  Role = "vicepresidente"
	RoleSecretaryCAM   Role = "secretario_cam"
	RoleSecretaryAMPP  Role = "secretario_ampp"
	RoleSecretaryCF    Role = "secretario_cf"
	RoleIntendant      Role = "intendente"
	RoleCommissionerCF Role = "miembro_cf"
)

var allRoles = []Role{
	RoleAdministrator,
	RolePresident,
	RoleVicePresident,
	RoleSecretaryCAM,
	RoleSecretaryAMPP,
	RoleSecretaryCF,
	RoleIntendant,
	RoleCommissionerCF,
}

// Roles returns every known role.
func Roles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles)
	return out
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	for _, known := range allRoles {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole converts a stored or transmitted role name into a Role.
// Unknown names are an error, never a silent zero value.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("rbac: unknown role %q", s)
	}
	return r, nil
}

func IsAdministrator(r Role) bool { return r == RoleAdministrator }
