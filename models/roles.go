package models

import "strings"

// Role is a position in the site's total role order.
// guest < band < editor < manager < admin
type Role int

const (
	RoleGuest Role = iota
	RoleBand
	RoleEditor
	RoleManager
	RoleAdmin
)

var roleNames = []string{"guest", "band", "editor", "manager", "admin"}

func (r Role) String() string {
	if r < RoleGuest || r > RoleAdmin {
		return "guest"
	}
	return roleNames[r]
}

// ParseRole maps a group name to a Role. Unknown names map to guest.
func ParseRole(name string) (Role, bool) {
	for i, n := range roleNames {
		if strings.EqualFold(name, n) {
			return Role(i), true
		}
	}
	return RoleGuest, false
}

// HighestRole returns the strongest role carried by a set of group claims.
// Groups that are not role names (custom groups) are ignored.
func HighestRole(groups []string) Role {
	best := RoleGuest
	for _, g := range groups {
		if r, ok := ParseRole(g); ok && r > best {
			best = r
		}
	}
	return best
}

// Meets reports whether r satisfies the given minimum role.
func (r Role) Meets(min Role) bool {
	return r >= min
}
