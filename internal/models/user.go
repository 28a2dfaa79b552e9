package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is one of the three fixed actor classes of the dashboard.
type Role string

const (
	RoleSuperAdmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleEmployee   Role = "employee"
)

// Roles lists every known role, highest privilege first.
var Roles = []Role{RoleSuperAdmin, RoleAdmin, RoleEmployee}

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleEmployee:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Role         Role       `json:"role"`
	AvatarURL    *string    `json:"avatar_url,omitempty"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// ProfileUpdate carries the editable profile fields. Nil fields are left untouched.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	AvatarURL *string
}

// NewUser is used by operator tooling to provision accounts.
type NewUser struct {
	Email     string
	FirstName string
	LastName  string
	Role      Role
	Password  string
}
