package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRequest(t *testing.T, inbound string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var stored string
	router := gin.New()
	router.Use(Middleware())
	router.GET("/", func(c *gin.Context) {
		stored = Value(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if inbound != "" {
		req.Header.Set("X-Request-ID", inbound)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec, stored
}

func TestMiddlewareGeneratesUUID(t *testing.T) {
	rec, stored := doRequest(t, "")

	id := rec.Header().Get("X-Request-ID")
	require.NotEmpty(t, id)
	assert.Equal(t, id, stored)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}

func TestMiddlewareKeepsInboundID(t *testing.T) {
	rec, stored := doRequest(t, "client-chosen-id")

	assert.Equal(t, "client-chosen-id", rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "client-chosen-id", stored)
}

func TestMiddlewareReplacesOversizedID(t *testing.T) {
	rec, _ := doRequest(t, strings.Repeat("x", 200))

	id := rec.Header().Get("X-Request-ID")
	require.NotEmpty(t, id)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}
