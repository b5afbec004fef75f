package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/model"
	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/utils"
)

const testSecret = "test-secret"

func doRequest(t *testing.T, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/questions", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var captured echo.Context
	next := func(c echo.Context) error {
		captured = c
		return c.NoContent(http.StatusOK)
	}
	err := JWTAuth(testSecret)(next)(c)
	require.NoError(t, err)
	return rec, captured
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec, next := doRequest(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, next)
}

func TestJWTAuthMalformedToken(t *testing.T) {
	rec, next := doRequest(t, "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, next)
	assert.Contains(t, rec.Body.String(), "invalid token")
}

func TestJWTAuthExpiredToken(t *testing.T) {
	raw, _, err := utils.NewAccessToken(testSecret, "u1", "u@example.com", model.RoleStudent, -time.Minute)
	require.NoError(t, err)

	rec, next := doRequest(t, "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, next)
	// Same body as the malformed case: token state is not leaked.
	assert.Contains(t, rec.Body.String(), "invalid token")
}

func TestJWTAuthValidTokenInjectsIdentity(t *testing.T) {
	raw, _, err := utils.NewAccessToken(testSecret, "u1", "u@example.com", model.RoleTeacher, time.Hour)
	require.NoError(t, err)

	rec, next := doRequest(t, "Bearer "+raw)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, next)
	assert.Equal(t, "u1", next.Get(CtxUserID))
	assert.Equal(t, "u@example.com", next.Get(CtxEmail))
	assert.Equal(t, "professor", next.Get(CtxRole))
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	handler := RequireRole("professor")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/question", nil)

	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(CtxRole, "professor")
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.Set(CtxRole, "aluno")
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
