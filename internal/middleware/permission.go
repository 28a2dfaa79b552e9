package middleware

import (
	"context"
	"errors"

	"github.com/dimitrije/admin-dashboard-api/internal/models"
	"github.com/dimitrije/admin-dashboard-api/internal/permissions"
	"github.com/dimitrije/admin-dashboard-api/internal/services"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

const CurrentUserKey = "current_user"

type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// CurrentUser loads the authenticated profile so permission checks see the
// role as stored now. It must run after Auth.
func CurrentUser(users UserLookup) drift.HandlerFunc {
	return func(c *drift.Context) {
		userID := GetUserID(c)
		if userID == uuid.Nil {
			c.Unauthorized("not authenticated")
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				c.Unauthorized("account no longer exists")
				return
			}
			c.InternalServerError("failed to load user")
			return
		}

		c.Set(CurrentUserKey, user)
		c.Next()
	}
}

func GetCurrentUser(c *drift.Context) *models.User {
	if v, ok := c.Get(CurrentUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// RequirePermission answers 403 unless the current user holds capability.
func RequirePermission(capability permissions.Capability) drift.HandlerFunc {
	return func(c *drift.Context) {
		if !permissions.HasPermission(GetCurrentUser(c), capability) {
			c.Forbidden("insufficient permissions")
			return
		}
		c.Next()
	}
}
