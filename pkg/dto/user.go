package dto

import (
	"time"

	"github.com/dimitrije/admin-dashboard-api/internal/models"
	"github.com/dimitrije/admin-dashboard-api/internal/permissions"
	"github.com/google/uuid"
)

type UserResponse struct {
	ID        uuid.UUID   `json:"id"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	FullName  string      `json:"full_name"`
	Role      models.Role `json:"role"`
	AvatarURL *string     `json:"avatar_url,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	LastLogin *time.Time  `json:"last_login,omitempty"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		Role:      u.Role,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}

// UserListItem is a row of the user management table.
type UserListItem struct {
	UserResponse
	CanManage bool `json:"can_manage"`
}

type UserListResponse struct {
	Users []UserListItem `json:"users"`
	Total int            `json:"total"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1,max=255"`
	LastName  *string `json:"last_name" validate:"omitempty,min=1,max=255"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url,max=500"`
}

type UpdateRoleRequest struct {
	Role models.Role `json:"role" validate:"required,oneof=superadmin admin employee"`
}

type PermissionsResponse struct {
	Role         models.Role         `json:"role"`
	Capabilities permissions.Set     `json:"capabilities"`
	Routes       []permissions.Route `json:"routes"`
}

type NavigationResponse struct {
	Routes []permissions.Route `json:"routes"`
}
