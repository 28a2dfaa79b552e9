package middleware

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dimitrije/admin-dashboard-api/internal/models"
	"github.com/dimitrije/admin-dashboard-api/internal/permissions"
	"github.com/dimitrije/admin-dashboard-api/internal/services"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockUserLookup struct {
	mock.Mock
}

func (m *mockUserLookup) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func guardedApp(lookup UserLookup, capability permissions.Capability, handler drift.HandlerFunc) http.Handler {
	app := drift.New()
	app.Use(Auth(newTestJWTService()))
	app.Use(CurrentUser(lookup))
	guarded := app.Group("")
	guarded.Use(RequirePermission(capability))
	guarded.Get("/protected", handler)
	return app
}

func TestCurrentUser_LoadsProfile(t *testing.T) {
	lookup := new(mockUserLookup)
	user := &models.User{ID: uuid.New(), Role: models.RoleAdmin}
	lookup.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	var got *models.User
	app := drift.New()
	app.Use(Auth(newTestJWTService()))
	app.Use(CurrentUser(lookup))
	app.Get("/protected", func(c *drift.Context) {
		got = GetCurrentUser(c)
		okHandler(c)
	})

	rec := serve(app, "Bearer "+generateTestToken(t, newTestJWTService(), user.ID, models.RoleAdmin))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user, got)
	lookup.AssertExpectations(t)
}

func TestCurrentUser_DeletedAccount(t *testing.T) {
	lookup := new(mockUserLookup)
	userID := uuid.New()
	lookup.On("GetByID", mock.Anything, userID).Return(nil, services.ErrNotFound)

	app := guardedApp(lookup, permissions.ManageUsers, okHandler)
	rec := serve(app, "Bearer "+generateTestToken(t, newTestJWTService(), userID, models.RoleAdmin))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCurrentUser_LookupFailure(t *testing.T) {
	lookup := new(mockUserLookup)
	userID := uuid.New()
	lookup.On("GetByID", mock.Anything, userID).Return(nil, errors.New("pool closed"))

	app := guardedApp(lookup, permissions.ManageUsers, okHandler)
	rec := serve(app, "Bearer "+generateTestToken(t, newTestJWTService(), userID, models.RoleAdmin))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequirePermission(t *testing.T) {
	testCases := []struct {
		name       string
		role       models.Role
		capability permissions.Capability
		wantStatus int
	}{
		{"superadmin deletes users", models.RoleSuperAdmin, permissions.DeleteUsers, http.StatusOK},
		{"admin cannot delete users", models.RoleAdmin, permissions.DeleteUsers, http.StatusForbidden},
		{"admin manages users", models.RoleAdmin, permissions.ManageUsers, http.StatusOK},
		{"employee cannot manage users", models.RoleEmployee, permissions.ManageUsers, http.StatusForbidden},
		{"unknown role denied", models.Role("intern"), permissions.ManageUsers, http.StatusForbidden},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lookup := new(mockUserLookup)
			user := &models.User{ID: uuid.New(), Role: tc.role}
			lookup.On("GetByID", mock.Anything, user.ID).Return(user, nil)

			app := guardedApp(lookup, tc.capability, okHandler)
			rec := serve(app, "Bearer "+generateTestToken(t, newTestJWTService(), user.ID, tc.role))

			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

// The stored role wins over a stale token claim.
func TestRequirePermission_UsesStoredRole(t *testing.T) {
	lookup := new(mockUserLookup)
	user := &models.User{ID: uuid.New(), Role: models.RoleEmployee}
	lookup.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	app := guardedApp(lookup, permissions.ManageUsers, okHandler)
	rec := serve(app, "Bearer "+generateTestToken(t, newTestJWTService(), user.ID, models.RoleSuperAdmin))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
