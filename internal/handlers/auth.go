package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tenderdesk/api/internal/models"
	"tenderdesk/api/internal/service"
)

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) RegisterAccount(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid registration payload."})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		var fieldErr *service.FieldError
		if errors.As(err, &fieldErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fieldErr.Message, "field": fieldErr.Field})
			return
		}
		h.log.Error().Err(err).Msg("registration failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed. Please try again."})
		return
	}

	h.recordActivity(c, user.ID, models.ActionRegister, "Account created")

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful. Please check your email to verify your account.",
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Token        string            `json:"token"`
	RefreshToken string            `json:"refreshToken"`
	Message      string            `json:"message"`
	User         models.PublicUser `json:"user"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required."})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password."})
		case errors.Is(err, service.ErrEmailNotVerified):
			c.JSON(http.StatusForbidden, gin.H{"error": "Please verify your email before logging in."})
		default:
			h.log.Error().Err(err).Msg("login failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed. Please try again."})
		}
		return
	}

	h.recordActivity(c, result.User.ID, models.ActionLogin, "Signed in")

	c.JSON(http.StatusOK, authResponse{
		Token:        result.AccessToken,
		RefreshToken: result.RefreshToken,
		Message:      "Login successful.",
		User:         result.User.Public(),
	})
}

// Logout always answers 200. A missing or dead token leaves nothing to
// revoke and is not an error the client can act on.
func (h HandlerSet) Logout(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

	userID, err := h.authService.Logout(c.Request.Context(), tokenStr)
	if err != nil {
		h.log.Error().Err(err).Msg("logout failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Logout failed."})
		return
	}

	if userID != "" {
		h.recordActivity(c, userID, models.ActionLogout, "Signed out")
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully."})
}

type verifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h HandlerSet) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Verification token is required."})
		return
	}

	user, err := h.authService.VerifyEmail(c.Request.Context(), req.Token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOrExpiredToken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired verification token."})
			return
		}
		h.log.Error().Err(err).Msg("email verification failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed. Please try again."})
		return
	}

	h.recordActivity(c, user.ID, models.ActionVerifyEmail, "Email address verified")

	c.JSON(http.StatusOK, gin.H{"message": "Email verified successfully. You can now log in."})
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h HandlerSet) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A valid email is required."})
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.log.Error().Err(err).Msg("forgot password failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Request failed. Please try again."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "If an account with that email exists, a password reset link has been sent.",
	})
}

type resetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token and new password are required."})
		return
	}

	user, err := h.authService.ResetPassword(c.Request.Context(), req.Token, req.Password)
	if err != nil {
		var fieldErr *service.FieldError
		switch {
		case errors.As(err, &fieldErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": fieldErr.Message, "field": fieldErr.Field})
		case errors.Is(err, service.ErrInvalidOrExpiredToken):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired reset token."})
		default:
			h.log.Error().Err(err).Msg("password reset failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Password reset failed. Please try again."})
		}
		return
	}

	h.recordActivity(c, user.ID, models.ActionPasswordReset, "Password reset via email link")
	h.notifySecurity(c, user.ID, "Password reset", "Your password was reset. If this wasn't you, contact support immediately.")

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully. You can now log in with your new password."})
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

func (h HandlerSet) RefreshToken(c *gin.Context) {
	var req refreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Refresh token is required."})
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOrExpiredToken) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired refresh token."})
			return
		}
		h.log.Error().Err(err).Msg("token refresh failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token refresh failed."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":        result.AccessToken,
		"refreshToken": result.RefreshToken,
		"message":      "Token refreshed.",
	})
}
