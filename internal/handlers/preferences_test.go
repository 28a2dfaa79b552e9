package handlers

import (
	"net/http"
	"testing"

	"github.com/dimitrije/admin-dashboard-api/internal/models"
	"github.com/dimitrije/admin-dashboard-api/internal/services"
	"github.com/dimitrije/admin-dashboard-api/internal/testutil"
	"github.com/dimitrije/admin-dashboard-api/pkg/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupPreferencesTest(t *testing.T, actor *models.User) (*testutil.MockPreferencesService, *testutil.HTTPTestClient) {
	t.Helper()
	users := new(testutil.MockUserService)
	users.On("GetByID", mock.Anything, actor.ID).Return(actor, nil)
	svc := new(testutil.MockPreferencesService)
	h := NewPreferencesHandler(svc)

	jwtSvc := testutil.TestJWTService()
	app := protectedApp(jwtSvc, users, "",
		route{http.MethodGet, "/preferences", h.Get},
		route{http.MethodPatch, "/preferences", h.Update},
		route{http.MethodPost, "/preferences/theme/toggle", h.ToggleTheme},
		route{http.MethodPost, "/preferences/sidebar/toggle", h.ToggleSidebar},
	)
	return svc, testutil.NewHTTPTestClient(t, app).WithToken(testutil.GenerateTestToken(t, jwtSvc, actor))
}

func TestPreferencesHandler_Get_Direction(t *testing.T) {
	actor := testutil.NewUser(models.RoleEmployee)
	svc, client := setupPreferencesTest(t, actor)

	svc.On("Get", mock.Anything, actor.ID, "ar-MA").Return(models.Preferences{
		Theme:    models.ThemeLight,
		Language: models.LanguageArabic,
	}, nil)

	rec := client.GET("/preferences", map[string]string{"Accept-Language": "ar-MA"})

	testutil.AssertStatus(t, rec, http.StatusOK)
	var resp dto.PreferencesResponse
	testutil.ParseJSON(t, rec, &resp)
	assert.Equal(t, models.LanguageArabic, resp.Language)
	assert.Equal(t, "rtl", resp.Direction)
}

func TestPreferencesHandler_Update(t *testing.T) {
	actor := testutil.NewUser(models.RoleEmployee)
	svc, client := setupPreferencesTest(t, actor)

	collapsed := true
	svc.On("Update", mock.Anything, actor.ID, models.PreferencesPatch{SidebarCollapsed: &collapsed}, "").
		Return(models.Preferences{Theme: models.ThemeLight, Language: models.LanguageFrench, SidebarCollapsed: true}, nil)

	rec := client.PATCH("/preferences", dto.UpdatePreferencesRequest{SidebarCollapsed: &collapsed}, nil)

	testutil.AssertStatus(t, rec, http.StatusOK)
	var resp dto.PreferencesResponse
	testutil.ParseJSON(t, rec, &resp)
	assert.True(t, resp.SidebarCollapsed)
	assert.Equal(t, "ltr", resp.Direction)
}

func TestPreferencesHandler_Update_InvalidTheme(t *testing.T) {
	svc, client := setupPreferencesTest(t, testutil.NewUser(models.RoleEmployee))

	rec := client.PATCH("/preferences", map[string]string{"theme": "sepia"}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPreferencesHandler_ToggleTheme(t *testing.T) {
	actor := testutil.NewUser(models.RoleAdmin)
	svc, client := setupPreferencesTest(t, actor)

	svc.On("ToggleTheme", mock.Anything, actor.ID).
		Return(models.Preferences{Theme: models.ThemeDark, Language: models.LanguageEnglish}, nil)

	rec := client.POST("/preferences/theme/toggle", nil, nil)

	testutil.AssertStatus(t, rec, http.StatusOK)
	var resp dto.PreferencesResponse
	testutil.ParseJSON(t, rec, &resp)
	assert.Equal(t, models.ThemeDark, resp.Theme)
}

func TestPreferencesHandler_ToggleSidebar_UserGone(t *testing.T) {
	actor := testutil.NewUser(models.RoleAdmin)
	svc, client := setupPreferencesTest(t, actor)

	svc.On("ToggleSidebar", mock.Anything, actor.ID).Return(models.Preferences{}, services.ErrNotFound)

	rec := client.POST("/preferences/sidebar/toggle", nil, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
