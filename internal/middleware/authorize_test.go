package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"tenderdesk/api/internal/models"
)

func newRoleTestRouter(user *models.User, roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/admin",
		func(c *gin.Context) {
			if user != nil {
				c.Set(CtxUser, *user)
			}
		},
		RequireRoles(roles...),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		},
	)
	return router
}

func TestRequireRolesAllows(t *testing.T) {
	admin := models.User{ID: "u1", Role: models.UserRoleAdmin}
	router := newRoleTestRouter(&admin, models.UserRoleAdmin)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRolesForbids(t *testing.T) {
	user := models.User{ID: "u1", Role: models.UserRoleUser}
	router := newRoleTestRouter(&user, models.UserRoleAdmin)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRolesWithoutUser(t *testing.T) {
	router := newRoleTestRouter(nil, models.UserRoleAdmin)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
