package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairgrid/fairgrid/internal/utils"
)

const testSecret = "test-secret"

func doRequest(t *testing.T, mw []echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	var captured echo.Context
	h := func(c echo.Context) error {
		captured = c
		return c.String(http.StatusOK, "ok")
	}
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	req := httptest.NewRequest(http.MethodPost, "/v1/events/upsert", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, h(c))
	return rec, captured
}

func TestJWTAuthInjectsIdentity(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, "EDITOR", 5)
	require.NoError(t, err)

	rec, c := doRequest(t, []echo.MiddlewareFunc{JWTAuth(testSecret)}, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(42), c.Get("user_id"))
	assert.Equal(t, "EDITOR", c.Get("role"))
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	rec, _ := doRequest(t, []echo.MiddlewareFunc{JWTAuth(testSecret)}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("other-secret", 42, "EDITOR", 5)
	require.NoError(t, err)

	rec, _ := doRequest(t, []echo.MiddlewareFunc{JWTAuth(testSecret)}, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, "EDITOR", -5)
	require.NoError(t, err)

	rec, _ := doRequest(t, []echo.MiddlewareFunc{JWTAuth(testSecret)}, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	editor, err := utils.NewAccessToken(testSecret, 42, "EDITOR", 5)
	require.NoError(t, err)
	viewer, err := utils.NewAccessToken(testSecret, 43, "VIEWER", 5)
	require.NoError(t, err)

	chain := []echo.MiddlewareFunc{JWTAuth(testSecret), RequireRole("ADMIN", "EDITOR")}

	rec, _ := doRequest(t, chain, "Bearer "+editor.Token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doRequest(t, chain, "Bearer "+viewer.Token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
