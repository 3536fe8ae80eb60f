package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenderdesk/api/internal/config"
	"tenderdesk/api/internal/middleware"
	"tenderdesk/api/internal/models"
	"tenderdesk/api/internal/repository"
	"tenderdesk/api/internal/service"
)

// emptyUserStore answers "not found" to every lookup; enough to exercise
// the routing and error mapping without a database.
type emptyUserStore struct{}

func (emptyUserStore) Create(context.Context, models.User) error { return nil }
func (emptyUserStore) GetByID(context.Context, string) (models.User, error) {
	return models.User{}, repository.ErrUserNotFound
}
func (emptyUserStore) FindByEmail(context.Context, string) (models.User, error) {
	return models.User{}, repository.ErrUserNotFound
}
func (emptyUserStore) FindByUsername(context.Context, string) (models.User, error) {
	return models.User{}, repository.ErrUserNotFound
}
func (emptyUserStore) FindByVerificationTokenHash(context.Context, []byte) (models.User, error) {
	return models.User{}, repository.ErrUserNotFound
}
func (emptyUserStore) FindByResetTokenHash(context.Context, []byte) (models.User, error) {
	return models.User{}, repository.ErrUserNotFound
}
func (emptyUserStore) FindByRefreshTokenHash(context.Context, []byte) (models.User, error) {
	return models.User{}, repository.ErrUserNotFound
}
func (emptyUserStore) MarkVerified(context.Context, string) error { return repository.ErrUserNotFound }
func (emptyUserStore) SetResetToken(context.Context, string, []byte, time.Time) error {
	return repository.ErrUserNotFound
}
func (emptyUserStore) UpdatePassword(context.Context, string, []byte) error {
	return repository.ErrUserNotFound
}
func (emptyUserStore) SetRefreshToken(context.Context, string, []byte, time.Time) error {
	return repository.ErrUserNotFound
}
func (emptyUserStore) ClearRefreshToken(context.Context, string) error {
	return repository.ErrUserNotFound
}

type noopMailer struct{}

func (noopMailer) SendVerificationEmail(string, string) error  { return nil }
func (noopMailer) SendPasswordResetEmail(string, string) error { return nil }

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := &config.AppConfig{
		Environment: "test",
		Security: config.SecurityConfig{
			JWTSecret:       "handler-test-secret",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 168 * time.Hour,
			ResetTokenTTL:   time.Hour,
			MinPasswordLen:  6,
		},
	}

	h := HandlerSet{
		log:         zerolog.Nop(),
		cfg:         cfg,
		authService: service.NewAuthService(emptyUserStore{}, noopMailer{}, cfg.Security, zerolog.Nop()),
	}

	router := gin.New()
	api := router.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", h.RegisterAccount)
	auth.POST("/logout", h.Logout)
	auth.POST("/verify-email", h.VerifyEmail)
	auth.POST("/forgot-password", h.ForgotPassword)
	auth.POST("/reset-password", h.ResetPassword)
	api.POST("/refresh-token", h.RefreshToken)

	return router
}

func post(router *gin.Engine, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRegisterRejectsBadPayload(t *testing.T) {
	router := newTestRouter()

	rec := post(router, "/api/auth/register", `{"username":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(router, "/api/auth/register", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterMapsFieldErrors(t *testing.T) {
	router := newTestRouter()

	rec := post(router, "/api/auth/register", `{"username":"alice","email":"a@b.com","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "password", body["field"])
}

func TestVerifyEmailUnknownToken(t *testing.T) {
	router := newTestRouter()

	rec := post(router, "/api/auth/verify-email", `{"token":"deadbeef"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(router, "/api/auth/verify-email", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForgotPasswordAlwaysSucceeds(t *testing.T) {
	router := newTestRouter()

	rec := post(router, "/api/auth/forgot-password", `{"email":"nobody@example.com"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRefreshTokenErrors(t *testing.T) {
	router := newTestRouter()

	rec := post(router, "/api/refresh-token", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(router, "/api/refresh-token", `{"refreshToken":"unknown"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutIsIdempotent(t *testing.T) {
	router := newTestRouter()

	rec := post(router, "/api/auth/logout", ``)
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["message"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/api/profile",
		middleware.Auth("handler-test-secret", emptyUserStore{}, zerolog.Nop()),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, middleware.ErrCodeNoToken, body["error"])
}
