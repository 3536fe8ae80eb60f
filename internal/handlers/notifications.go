package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"tenderdesk/api/internal/middleware"
	"tenderdesk/api/internal/models"
	"tenderdesk/api/internal/repository"
)

type notificationResponse struct {
	ID        string                  `json:"id"`
	Type      models.NotificationType `json:"type"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	Link      *string                 `json:"link,omitempty"`
	IsRead    bool                    `json:"isRead"`
	CreatedAt time.Time               `json:"createdAt"`
}

func (h HandlerSet) ListNotifications(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	notifications, err := h.notifications.ListByUser(c.Request.Context(), user.ID, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("notification listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list notifications."})
		return
	}

	resp := make([]notificationResponse, 0, len(notifications))
	unread := 0
	for _, n := range notifications {
		if !n.IsRead {
			unread++
		}
		resp = append(resp, notificationResponse{
			ID:        n.ID,
			Type:      n.Type,
			Title:     n.Title,
			Message:   n.Message,
			Link:      n.Link,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"notifications": resp, "unreadCount": unread})
}

func (h HandlerSet) MarkNotificationRead(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	if err := h.notifications.MarkRead(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found."})
			return
		}
		h.log.Error().Err(err).Msg("notification update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update notification."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read."})
}

func (h HandlerSet) MarkAllNotificationsRead(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	if err := h.notifications.MarkAllRead(c.Request.Context(), user.ID); err != nil {
		h.log.Error().Err(err).Msg("notification update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update notifications."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read."})
}

func (h HandlerSet) DeleteNotification(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	if err := h.notifications.Delete(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found."})
			return
		}
		h.log.Error().Err(err).Msg("notification deletion failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete notification."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted."})
}
