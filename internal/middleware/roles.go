package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmwangi/soko-api/internal/models"
)

// RequireRole gates a route group on the role carried by the verified token.
// It must run after Authenticate. A missing or mismatched role aborts with
// 403; this is a pure predicate with no side effects.
func RequireRole(required models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, exists := c.Get(CtxUserRole)
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden: missing role"})
			return
		}

		role, ok := raw.(models.Role)
		if !ok || role != required {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden: insufficient privileges"})
			return
		}

		c.Next()
	}
}
