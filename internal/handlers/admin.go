package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tenderdesk/api/internal/middleware"
	"tenderdesk/api/internal/models"
	"tenderdesk/api/internal/repository"
)

func (h HandlerSet) AdminListUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	users, err := h.users.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.log.Error().Err(err).Msg("user listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list users."})
		return
	}

	resp := make([]models.PublicUser, 0, len(users))
	for _, user := range users {
		resp = append(resp, user.Public())
	}

	c.JSON(http.StatusOK, gin.H{"users": resp})
}

type updateRoleRequest struct {
	Role models.UserRole `json:"role" binding:"required"`
}

func (h HandlerSet) AdminUpdateUserRole(c *gin.Context) {
	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be one of: user, admin."})
		return
	}

	targetID := c.Param("id")

	admin, _ := middleware.CurrentUser(c)
	if admin.ID == targetID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot change your own role."})
		return
	}

	updated, err := h.users.UpdateRole(c.Request.Context(), targetID, req.Role)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found."})
			return
		}
		h.log.Error().Err(err).Msg("role update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Role update failed."})
		return
	}

	h.recordActivity(c, admin.ID, models.ActionRoleChange,
		fmt.Sprintf("Changed role of %s to %s", updated.Username, updated.Role))

	c.JSON(http.StatusOK, gin.H{"user": updated.Public()})
}

func (h HandlerSet) AdminDeleteUser(c *gin.Context) {
	targetID := c.Param("id")

	admin, _ := middleware.CurrentUser(c)
	if admin.ID == targetID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot delete your own account."})
		return
	}

	// Object-store payloads are removed before the metadata rows go,
	// so a crash mid-way leaves rows that a retry can still find.
	docs, err := h.documents.ListByUser(c.Request.Context(), targetID)
	if err == nil {
		for _, doc := range docs {
			if err := h.uploadService.RemoveObject(c.Request.Context(), doc.ObjectKey); err != nil {
				h.log.Warn().Err(err).Str("object_key", doc.ObjectKey).Msg("document object removal failed")
			}
		}
	}

	if err := h.users.Delete(c.Request.Context(), targetID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found."})
			return
		}
		h.log.Error().Err(err).Msg("user deletion failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User deletion failed."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully."})
}
