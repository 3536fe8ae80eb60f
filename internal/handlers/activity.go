package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"tenderdesk/api/internal/middleware"
)

type activityResponse struct {
	ID          string    `json:"id"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	IPAddress   string    `json:"ipAddress"`
	UserAgent   string    `json:"userAgent"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (h HandlerSet) ListActivity(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := h.activity.ListByUser(c.Request.Context(), user.ID, limit, offset)
	if err != nil {
		h.log.Error().Err(err).Msg("activity listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list activity."})
		return
	}

	resp := make([]activityResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, activityResponse{
			ID:          entry.ID,
			Action:      entry.Action,
			Description: entry.Description,
			IPAddress:   entry.IPAddress,
			UserAgent:   entry.UserAgent,
			CreatedAt:   entry.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"activity": resp})
}
