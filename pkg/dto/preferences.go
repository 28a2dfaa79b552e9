package dto

import "github.com/dimitrije/admin-dashboard-api/internal/models"

type UpdatePreferencesRequest struct {
	Theme            *models.Theme    `json:"theme" validate:"omitempty,oneof=light dark"`
	Language         *models.Language `json:"language" validate:"omitempty,oneof=fr en ar"`
	SidebarCollapsed *bool            `json:"sidebarCollapsed"`
}

func (r UpdatePreferencesRequest) Patch() models.PreferencesPatch {
	return models.PreferencesPatch{
		Theme:            r.Theme,
		Language:         r.Language,
		SidebarCollapsed: r.SidebarCollapsed,
	}
}

type PreferencesResponse struct {
	models.Preferences
	Direction string `json:"direction"`
}
