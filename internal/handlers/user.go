package handlers

import (
	"github.com/dimitrije/admin-dashboard-api/internal/middleware"
	"github.com/dimitrije/admin-dashboard-api/internal/models"
	"github.com/dimitrije/admin-dashboard-api/internal/permissions"
	"github.com/dimitrije/admin-dashboard-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

// UserHandler serves the profile, the user management table and the
// navigation derived from the caller's role. Every route runs behind
// middleware.CurrentUser.
type UserHandler struct {
	userService UserServiceInterface
}

func NewUserHandler(userService UserServiceInterface) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) GetMe(c *drift.Context) {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		c.Unauthorized("not authenticated")
		return
	}

	_ = c.JSON(200, dto.NewUserResponse(user))
}

func (h *UserHandler) UpdateMe(c *drift.Context) {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.UpdateProfileRequest
	if !bindAndValidate(c, &req) {
		return
	}

	updated, err := h.userService.UpdateProfile(c.Request.Context(), user.ID, models.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		respondError(c, err, "failed to update user")
		return
	}

	_ = c.JSON(200, dto.NewUserResponse(updated))
}

func (h *UserHandler) GetPermissions(c *drift.Context) {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		c.Unauthorized("not authenticated")
		return
	}

	_ = c.JSON(200, dto.PermissionsResponse{
		Role:         user.Role,
		Capabilities: permissions.Capabilities(user),
		Routes:       permissions.AccessibleRoutes(user),
	})
}

func (h *UserHandler) GetNavigation(c *drift.Context) {
	_ = c.JSON(200, dto.NavigationResponse{
		Routes: permissions.AccessibleRoutes(middleware.GetCurrentUser(c)),
	})
}

// List requires canManageUsers, enforced by the route.
func (h *UserHandler) List(c *drift.Context) {
	actor := middleware.GetCurrentUser(c)
	if actor == nil {
		c.Unauthorized("not authenticated")
		return
	}

	users, err := h.userService.List(c.Request.Context(), c.QueryParam("q"))
	if err != nil {
		respondError(c, err, "failed to list users")
		return
	}

	items := make([]dto.UserListItem, 0, len(users))
	for i := range users {
		items = append(items, dto.UserListItem{
			UserResponse: dto.NewUserResponse(&users[i]),
			CanManage:    permissions.CanManageUser(actor, users[i]),
		})
	}

	_ = c.JSON(200, dto.UserListResponse{Users: items, Total: len(items)})
}

func (h *UserHandler) UpdateRole(c *drift.Context) {
	actor := middleware.GetCurrentUser(c)
	if actor == nil {
		c.Unauthorized("not authenticated")
		return
	}

	targetID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateRoleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	updated, err := h.userService.UpdateRole(c.Request.Context(), actor, targetID, req.Role)
	if err != nil {
		respondError(c, err, "failed to update role")
		return
	}

	_ = c.JSON(200, dto.NewUserResponse(updated))
}

func (h *UserHandler) Delete(c *drift.Context) {
	actor := middleware.GetCurrentUser(c)
	if actor == nil {
		c.Unauthorized("not authenticated")
		return
	}

	targetID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), actor, targetID); err != nil {
		respondError(c, err, "failed to delete user")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "user deleted"})
}
