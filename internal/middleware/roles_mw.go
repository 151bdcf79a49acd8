package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminMiddleware lets only admin or staff users through. It must run after
// TokenAuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided."})
			return
		}
		if !user.IsPrivileged() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action."})
			return
		}
		c.Next()
	}
}
