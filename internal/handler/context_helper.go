package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/madrasati-app/madrasati-api/internal/middleware"
	"github.com/madrasati-app/madrasati-api/internal/models"
)

// currentClaims returns the JWT claims set by the auth middleware.
func currentClaims(c *gin.Context) (*models.JWTClaims, bool) {
	value, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*models.JWTClaims)
	return claims, ok
}

// isAdmin reports whether the session's token carries the admin role. Route
// guards still re-check against the role table; this only selects the
// admin code path inside shared handlers.
func isAdmin(claims *models.JWTClaims) bool {
	return claims != nil && claims.Role == models.RoleAdmin
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
