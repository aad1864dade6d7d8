package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func ginContext(req *http.Request) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	return c
}

func TestBearerTokenFromHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc123")

	token, ok := bearerToken(ginContext(req))
	assert.True(t, ok)
	assert.Equal(t, "abc123", token)
}

func TestBearerTokenCaseInsensitiveScheme(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer abc123")

	token, ok := bearerToken(ginContext(req))
	assert.True(t, ok)
	assert.Equal(t, "abc123", token)
}

func TestBearerTokenMalformedHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc123")

	_, ok := bearerToken(ginContext(req))
	assert.False(t, ok)
}

func TestBearerTokenQueryFallback(t *testing.T) {
	// Websocket upgrades cannot set headers from the browser.
	req := httptest.NewRequest(http.MethodGet, "/realtime?access_token=abc123", nil)

	token, ok := bearerToken(ginContext(req))
	assert.True(t, ok)
	assert.Equal(t, "abc123", token)
}

func TestBearerTokenMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := bearerToken(ginContext(req))
	assert.False(t, ok)
}
