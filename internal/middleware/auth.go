package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"tenderdesk/api/internal/models"
	"tenderdesk/api/internal/security"
)

// Context keys set by Auth.
const (
	CtxClaims = "access_claims"
	CtxUser   = "current_user"
)

// Client-visible auth error codes. The frontend uses token_expired to
// decide whether a silent refresh is worth attempting.
const (
	ErrCodeNoToken      = "no_token_provided"
	ErrCodeTokenExpired = "token_expired"
	ErrCodeInvalidToken = "invalid_token"
)

type UserLoader interface {
	GetByID(ctx context.Context, id string) (models.User, error)
}

// Auth validates the bearer token and loads the account it names. The
// specific parse failure is logged; the response body only distinguishes
// missing, expired and invalid.
func Auth(jwtSecret string, users UserLoader, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrCodeNoToken})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := security.ParseAccessToken(tokenStr, jwtSecret)
		if err != nil {
			log.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("access token rejected")
			code := ErrCodeInvalidToken
			if errors.Is(err, security.ErrTokenExpired) {
				code = ErrCodeTokenExpired
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": code})
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrCodeInvalidToken})
			return
		}

		c.Set(CtxClaims, *claims)
		c.Set(CtxUser, user)

		c.Next()
	}
}

// CurrentUser returns the account Auth stored on the context.
func CurrentUser(c *gin.Context) (models.User, bool) {
	val, exists := c.Get(CtxUser)
	if !exists {
		return models.User{}, false
	}
	user, ok := val.(models.User)
	return user, ok
}
