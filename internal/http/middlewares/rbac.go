package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRoles authorizes an already-authenticated request. Roles are
// re-fetched from the store rather than read off the token or the
// authenticate snapshot, so a role revocation takes effect immediately
// instead of waiting for token expiry.
func (m *AuthMiddleware) RequireRoles(required ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, ok := CurrentUserFromContext(c)

		if !ok {
			abortUnauthorized(c, "Missing identity context")
			return
		}

		fresh, err := m.users.GetByID(c.Request.Context(), current.ID)

		if err != nil {
			abortUnauthorized(c, "User not found")
			return
		}

		if !fresh.HasAnyRole(required) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": "Access denied: Insufficient permissions",
				},
			})
			return
		}

		// downstream handlers see the freshly loaded roles
		c.Set(ctxUserKey, fresh)

		c.Next()
	}
}
