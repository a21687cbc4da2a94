package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/werkyrie/shopdesk/internal/jwtutil"
	"github.com/werkyrie/shopdesk/internal/model"
)

func authTestServer(t *testing.T) (*echo.Echo, *jwtutil.JWTUtil) {
	t.Helper()
	util := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      "test-signing-key",
		ExpirationHours: 1,
	})
	e := echo.New()
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/read", ok, JWTAuthMiddleware(util))
	e.POST("/write", ok, JWTAuthMiddleware(util), RequireRole(model.RoleAdmin))
	return e, util
}

func request(e *echo.Echo, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthMissingHeader(t *testing.T) {
	e, _ := authTestServer(t)
	rec := request(e, http.MethodGet, "/read", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthMalformedHeader(t *testing.T) {
	e, _ := authTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/read", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthInvalidToken(t *testing.T) {
	e, _ := authTestServer(t)
	rec := request(e, http.MethodGet, "/read", "not-a-real-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthValidToken(t *testing.T) {
	e, util := authTestServer(t)
	token, err := util.GenerateToken("viewer@example.com", 1, model.RoleViewer)
	require.NoError(t, err)

	rec := request(e, http.MethodGet, "/read", token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleForbidsViewer(t *testing.T) {
	e, util := authTestServer(t)
	token, err := util.GenerateToken("viewer@example.com", 1, model.RoleViewer)
	require.NoError(t, err)

	rec := request(e, http.MethodPost, "/write", token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleAllowsAdmin(t *testing.T) {
	e, util := authTestServer(t)
	token, err := util.GenerateToken("admin@example.com", 2, model.RoleAdmin)
	require.NoError(t, err)

	rec := request(e, http.MethodPost, "/write", token)
	assert.Equal(t, http.StatusOK, rec.Code)
}
