package permissions

import (
	"slices"

	"github.com/dimitrije/admin-dashboard-api/internal/models"
)

// Route identifies a dashboard page.
type Route string

const (
	RouteLogin         Route = "/login"
	RouteDashboard     Route = "/dashboard"
	RouteSettings      Route = "/settings"
	RouteNotifications Route = "/notifications"
	RouteUsers         Route = "/users"
)

// AccessibleRoutes lists the pages user may open, in navigation order.
func AccessibleRoutes(user *models.User) []Route {
	if user == nil {
		return []Route{RouteLogin}
	}

	routes := []Route{RouteDashboard, RouteSettings, RouteNotifications}
	if HasPermission(user, ManageUsers) {
		routes = append(routes, RouteUsers)
	}
	return routes
}

func RouteAllowed(user *models.User, route Route) bool {
	return slices.Contains(AccessibleRoutes(user), route)
}
