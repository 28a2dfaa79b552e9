// Package permissions maps dashboard roles to capabilities and decides which
// users an actor may manage. Every function here is pure.
package permissions

import "github.com/dimitrije/admin-dashboard-api/internal/models"

// Capability names one boolean permission of the role table.
type Capability string

const (
	ManageUsers         Capability = "canManageUsers"
	DeleteUsers         Capability = "canDeleteUsers"
	ChangeRoles         Capability = "canChangeRoles"
	ViewAllData         Capability = "canViewAllData"
	ManageSettings      Capability = "canManageSettings"
	DeleteNotifications Capability = "canDeleteNotifications"
)

var AllCapabilities = []Capability{
	ManageUsers,
	DeleteUsers,
	ChangeRoles,
	ViewAllData,
	ManageSettings,
	DeleteNotifications,
}

// Set is the capability record of one role.
type Set struct {
	CanManageUsers         bool `json:"canManageUsers"`
	CanDeleteUsers         bool `json:"canDeleteUsers"`
	CanChangeRoles         bool `json:"canChangeRoles"`
	CanViewAllData         bool `json:"canViewAllData"`
	CanManageSettings      bool `json:"canManageSettings"`
	CanDeleteNotifications bool `json:"canDeleteNotifications"`
}

// Allows reports the value of c in the set. Unknown capabilities are denied.
func (s Set) Allows(c Capability) bool {
	switch c {
	case ManageUsers:
		return s.CanManageUsers
	case DeleteUsers:
		return s.CanDeleteUsers
	case ChangeRoles:
		return s.CanChangeRoles
	case ViewAllData:
		return s.CanViewAllData
	case ManageSettings:
		return s.CanManageSettings
	case DeleteNotifications:
		return s.CanDeleteNotifications
	}
	return false
}

var table = map[models.Role]Set{
	models.RoleSuperAdmin: {
		CanManageUsers:         true,
		CanDeleteUsers:         true,
		CanChangeRoles:         true,
		CanViewAllData:         true,
		CanManageSettings:      true,
		CanDeleteNotifications: true,
	},
	models.RoleAdmin: {
		CanManageUsers: true,
		// Admins cannot delete accounts; only a superadmin can.
		CanDeleteUsers:         false,
		CanChangeRoles:         true,
		CanViewAllData:         true,
		CanManageSettings:      true,
		CanDeleteNotifications: true,
	},
	models.RoleEmployee: {},
}

// For returns the capability record of role and whether the role is known.
func For(role models.Role) (Set, bool) {
	set, ok := table[role]
	return set, ok
}

// Capabilities returns the record for user's role, or the empty set for a
// nil user or an unknown role.
func Capabilities(user *models.User) Set {
	if user == nil {
		return Set{}
	}
	return table[user.Role]
}

func HasPermission(user *models.User, c Capability) bool {
	if user == nil {
		return false
	}
	set, ok := table[user.Role]
	if !ok {
		return false
	}
	return set.Allows(c)
}

// CanManageUser reports whether actor may edit target. A superadmin account
// can only be managed by itself, whatever the actor's capabilities.
func CanManageUser(actor *models.User, target models.User) bool {
	if actor == nil {
		return false
	}
	if target.Role == models.RoleSuperAdmin && actor.ID != target.ID {
		return false
	}
	return HasPermission(actor, ManageUsers)
}
