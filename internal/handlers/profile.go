package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tenderdesk/api/internal/middleware"
	"tenderdesk/api/internal/models"
	"tenderdesk/api/internal/repository"
	"tenderdesk/api/internal/service"
)

func (h HandlerSet) GetProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": middleware.ErrCodeNoToken})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user.Public()})
}

type updateProfileRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email" binding:"omitempty,email"`
}

func (h HandlerSet) UpdateProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": middleware.ErrCodeNoToken})
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile payload."})
		return
	}

	username := user.Username
	if req.Username != nil {
		username = strings.TrimSpace(*req.Username)
	}
	email := user.Email
	if req.Email != nil {
		email = strings.TrimSpace(strings.ToLower(*req.Email))
	}

	if username != user.Username {
		if _, err := h.users.FindByUsername(c.Request.Context(), username); err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username already exists.", "field": "username"})
			return
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			h.log.Error().Err(err).Msg("profile update failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Profile update failed."})
			return
		}
	}
	if email != user.Email {
		if _, err := h.users.FindByEmail(c.Request.Context(), email); err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already exists.", "field": "email"})
			return
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			h.log.Error().Err(err).Msg("profile update failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Profile update failed."})
			return
		}
	}

	updated, err := h.users.UpdateProfile(c.Request.Context(), user.ID, username, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found."})
			return
		}
		h.log.Error().Err(err).Msg("profile update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Profile update failed."})
		return
	}

	h.recordActivity(c, user.ID, models.ActionProfileUpdate, "Profile details updated")

	c.JSON(http.StatusOK, gin.H{"user": updated.Public()})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

func (h HandlerSet) ChangePassword(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": middleware.ErrCodeNoToken})
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Current, new and confirmation passwords are required."})
		return
	}

	err := h.authService.ChangePassword(c.Request.Context(), user.ID, req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		var fieldErr *service.FieldError
		switch {
		case errors.Is(err, service.ErrPasswordMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": "New password and confirmation do not match."})
		case errors.Is(err, service.ErrWrongPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Current password is incorrect."})
		case errors.Is(err, service.ErrSamePassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": "New password must differ from the current password."})
		case errors.As(err, &fieldErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": fieldErr.Message, "field": fieldErr.Field})
		default:
			h.log.Error().Err(err).Msg("password change failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Password change failed."})
		}
		return
	}

	h.recordActivity(c, user.ID, models.ActionPasswordChange, "Password changed")
	h.notifySecurity(c, user.ID, "Password changed", "Your password was changed. If this wasn't you, contact support immediately.")

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully. Please log in again."})
}
