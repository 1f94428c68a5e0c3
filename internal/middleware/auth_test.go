package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr-realtime/internal/auth"
)

func newProtectedRouter(verifier *auth.Verifier, roles ...auth.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("/", AuthMiddleware(verifier))
	if len(roles) > 0 {
		group.Use(RequireRoles(roles...))
	}
	group.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("userID")})
	})
	return router
}

func request(router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	router := newProtectedRouter(auth.NewVerifier("secret"))
	w := request(router, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareBadScheme(t *testing.T) {
	router := newProtectedRouter(auth.NewVerifier("secret"))
	w := request(router, "Basic dXNlcjpwYXNz")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	router := newProtectedRouter(auth.NewVerifier("secret"))
	w := request(router, "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	verifier := auth.NewVerifier("secret")
	token, err := verifier.Sign(auth.Identity{UserID: "u1", Role: auth.RoleStaff}, time.Minute)
	require.NoError(t, err)

	router := newProtectedRouter(verifier)
	w := request(router, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "u1")
}

func TestRequireRolesForbidsOutsiders(t *testing.T) {
	verifier := auth.NewVerifier("secret")
	router := newProtectedRouter(verifier, auth.RoleAdmin, auth.RoleHR)

	staffToken, err := verifier.Sign(auth.Identity{UserID: "u1", Role: auth.RoleStaff}, time.Minute)
	require.NoError(t, err)
	w := request(router, "Bearer "+staffToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	hrToken, err := verifier.Sign(auth.Identity{UserID: "u2", Role: auth.RoleHR}, time.Minute)
	require.NoError(t, err)
	w = request(router, "Bearer "+hrToken)
	assert.Equal(t, http.StatusOK, w.Code)
}
