package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KHY90/cartpilot-backend/internal/http/middleware"
	"github.com/KHY90/cartpilot-backend/internal/infra"
)

type stubVerifier struct {
	claims *infra.Claims
	err    error
}

func (s *stubVerifier) Verify(_ context.Context, _ string) (*infra.Claims, error) {
	return s.claims, s.err
}

func newTestRouter(verifier infra.TokenVerifier, requireAuth bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Auth(verifier))
	handlers := []gin.HandlerFunc{}
	if requireAuth {
		handlers = append(handlers, middleware.RequireAuth())
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": middleware.CallerUserID(c)})
	})
	r.GET("/test", handlers...)
	return r
}

func TestAuth_NoHeaderIsAnonymousOnOptionalRoute(t *testing.T) {
	r := newTestRouter(&stubVerifier{}, false)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"uid":""`)
}

func TestAuth_NoHeaderRejectedOnGuardedRoute(t *testing.T) {
	r := newTestRouter(&stubVerifier{}, true)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_InvalidBearerPrefixRejected(t *testing.T) {
	r := newTestRouter(&stubVerifier{}, false)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Token sometoken")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_VerifierErrorRejected(t *testing.T) {
	r := newTestRouter(&stubVerifier{err: infra.ErrTokenInvalid}, false)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer invalidtoken")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_ValidTokenPopulatesCallerUserID(t *testing.T) {
	r := newTestRouter(&stubVerifier{claims: &infra.Claims{UserID: "user-1"}}, true)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer validtoken")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"uid":"user-1"`)
}
