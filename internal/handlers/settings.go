package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tenderdesk/api/internal/middleware"
	"tenderdesk/api/internal/models"
)

type settingsResponse struct {
	Theme              string `json:"theme"`
	Language           string `json:"language"`
	Timezone           string `json:"timezone"`
	EmailNotifications bool   `json:"emailNotifications"`
	SecurityAlerts     bool   `json:"securityAlerts"`
}

func toSettingsResponse(s models.UserSettings) settingsResponse {
	return settingsResponse{
		Theme:              s.Theme,
		Language:           s.Language,
		Timezone:           s.Timezone,
		EmailNotifications: s.EmailNotifications,
		SecurityAlerts:     s.SecurityAlerts,
	}
}

func (h HandlerSet) GetSettings(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	settings, err := h.settings.Get(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("settings lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load settings."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": toSettingsResponse(settings)})
}

type updateSettingsRequest struct {
	Theme              *string `json:"theme"`
	Language           *string `json:"language"`
	Timezone           *string `json:"timezone"`
	EmailNotifications *bool   `json:"emailNotifications"`
	SecurityAlerts     *bool   `json:"securityAlerts"`
}

// UpdateSettings merges the posted fields over the stored row, so a partial
// payload leaves the other preferences alone.
func (h HandlerSet) UpdateSettings(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid settings payload."})
		return
	}

	settings, err := h.settings.Get(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("settings lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load settings."})
		return
	}

	if req.Theme != nil {
		settings.Theme = *req.Theme
	}
	if req.Language != nil {
		settings.Language = *req.Language
	}
	if req.Timezone != nil {
		settings.Timezone = *req.Timezone
	}
	if req.EmailNotifications != nil {
		settings.EmailNotifications = *req.EmailNotifications
	}
	if req.SecurityAlerts != nil {
		settings.SecurityAlerts = *req.SecurityAlerts
	}

	if err := h.settings.Upsert(c.Request.Context(), settings); err != nil {
		h.log.Error().Err(err).Msg("settings update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save settings."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": toSettingsResponse(settings)})
}
