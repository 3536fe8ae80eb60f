package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenderdesk/api/internal/models"
	"tenderdesk/api/internal/repository"
	"tenderdesk/api/internal/security"
)

const testSecret = "middleware-test-secret"

type stubUserLoader struct {
	user models.User
	err  error
}

func (s stubUserLoader) GetByID(_ context.Context, id string) (models.User, error) {
	if s.err != nil {
		return models.User{}, s.err
	}
	if s.user.ID != id {
		return models.User{}, repository.ErrUserNotFound
	}
	return s.user, nil
}

func newAuthTestRouter(loader UserLoader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", Auth(testSecret, loader, zerolog.Nop()), func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no user on context"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"username": user.Username})
	})
	return router
}

func doAuthRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestAuthMissingToken(t *testing.T) {
	router := newAuthTestRouter(stubUserLoader{})

	rec := doAuthRequest(router, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, ErrCodeNoToken, errorCode(t, rec))

	rec = doAuthRequest(router, "Basic dXNlcjpwYXNz")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, ErrCodeNoToken, errorCode(t, rec))
}

func TestAuthExpiredToken(t *testing.T) {
	router := newAuthTestRouter(stubUserLoader{})

	token, err := security.GenerateAccessToken(testSecret, "u1", "alice", "user", -time.Minute)
	require.NoError(t, err)

	rec := doAuthRequest(router, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, ErrCodeTokenExpired, errorCode(t, rec))
}

func TestAuthInvalidToken(t *testing.T) {
	router := newAuthTestRouter(stubUserLoader{})

	rec := doAuthRequest(router, "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, ErrCodeInvalidToken, errorCode(t, rec))

	token, err := security.GenerateAccessToken("a different secret", "u1", "alice", "user", time.Minute)
	require.NoError(t, err)

	rec = doAuthRequest(router, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, ErrCodeInvalidToken, errorCode(t, rec))
}

func TestAuthUnknownAccount(t *testing.T) {
	router := newAuthTestRouter(stubUserLoader{user: models.User{ID: "someone-else"}})

	token, err := security.GenerateAccessToken(testSecret, "deleted-user", "ghost", "user", time.Minute)
	require.NoError(t, err)

	rec := doAuthRequest(router, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, ErrCodeInvalidToken, errorCode(t, rec))
}

func TestAuthLoadsCurrentUser(t *testing.T) {
	loader := stubUserLoader{user: models.User{ID: "u1", Username: "alice", Role: models.UserRoleUser}}
	router := newAuthTestRouter(loader)

	token, err := security.GenerateAccessToken(testSecret, "u1", "alice", "user", time.Minute)
	require.NoError(t, err)

	rec := doAuthRequest(router, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "alice", body["username"])
}
