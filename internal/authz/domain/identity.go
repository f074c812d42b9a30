package domain

// SuperAdminRole bypasses every permission check. This is a deliberate trust
// escape hatch: holders are effectively unrestricted, including for
// permissions never granted to any role.
const SuperAdminRole = "super_admin"

// Role is a named bundle of permissions.
type Role struct {
	ID    string
	Name  string
	Label string
}

// Identity is the resolved, read-only view of the requesting user for the
// duration of one request. It is recomputed on every session validation and
// never stored.
type Identity struct {
	UserID      string
	Username    string
	Status      string
	Roles       []string
	Permissions []string
	SessionID   string
}

// HasRole reports whether the identity holds the named role.
func (i *Identity) HasRole(name string) bool {
	for _, r := range i.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// Can reports whether the identity may exercise the permission.
// super_admin holders pass every check.
func (i *Identity) Can(permission string) bool {
	if i == nil {
		return false
	}
	if i.HasRole(SuperAdminRole) {
		return true
	}
	for _, p := range i.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}
