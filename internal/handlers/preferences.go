package handlers

import (
	"github.com/dimitrije/admin-dashboard-api/internal/middleware"
	"github.com/dimitrije/admin-dashboard-api/internal/models"
	"github.com/dimitrije/admin-dashboard-api/internal/services"
	"github.com/dimitrije/admin-dashboard-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type PreferencesHandler struct {
	preferencesService PreferencesServiceInterface
}

func NewPreferencesHandler(preferencesService PreferencesServiceInterface) *PreferencesHandler {
	return &PreferencesHandler{preferencesService: preferencesService}
}

func preferencesResponse(prefs models.Preferences) dto.PreferencesResponse {
	return dto.PreferencesResponse{
		Preferences: prefs,
		Direction:   services.Direction(prefs.Language),
	}
}

func (h *PreferencesHandler) Get(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	prefs, err := h.preferencesService.Get(c.Request.Context(), userID, c.GetHeader("Accept-Language"))
	if err != nil {
		respondError(c, err, "failed to load preferences")
		return
	}

	_ = c.JSON(200, preferencesResponse(prefs))
}

func (h *PreferencesHandler) Update(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.UpdatePreferencesRequest
	if !bindAndValidate(c, &req) {
		return
	}

	prefs, err := h.preferencesService.Update(c.Request.Context(), userID, req.Patch(), c.GetHeader("Accept-Language"))
	if err != nil {
		respondError(c, err, "failed to save preferences")
		return
	}

	_ = c.JSON(200, preferencesResponse(prefs))
}

func (h *PreferencesHandler) ToggleTheme(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	prefs, err := h.preferencesService.ToggleTheme(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "failed to save preferences")
		return
	}

	_ = c.JSON(200, preferencesResponse(prefs))
}

func (h *PreferencesHandler) ToggleSidebar(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	prefs, err := h.preferencesService.ToggleSidebar(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "failed to save preferences")
		return
	}

	_ = c.JSON(200, preferencesResponse(prefs))
}
