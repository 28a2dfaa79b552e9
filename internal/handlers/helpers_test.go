package handlers

import (
	"net/http"

	"github.com/dimitrije/admin-dashboard-api/internal/middleware"
	"github.com/dimitrije/admin-dashboard-api/internal/permissions"
	"github.com/dimitrije/admin-dashboard-api/internal/services"
	"github.com/dimitrije/admin-dashboard-api/internal/testutil"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
)

type route struct {
	method  string
	path    string
	handler drift.HandlerFunc
}

// protectedApp mounts routes behind Auth and CurrentUser, plus
// RequirePermission when capability is set.
func protectedApp(jwtSvc *services.JWTService, users *testutil.MockUserService, capability permissions.Capability, routes ...route) http.Handler {
	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Use(middleware.CurrentUser(users))
	if capability != "" {
		app.Use(middleware.RequirePermission(capability))
	}
	for _, r := range routes {
		switch r.method {
		case http.MethodGet:
			app.Get(r.path, r.handler)
		case http.MethodPost:
			app.Post(r.path, r.handler)
		case http.MethodPatch:
			app.Patch(r.path, r.handler)
		case http.MethodDelete:
			app.Delete(r.path, r.handler)
		}
	}
	return app
}
