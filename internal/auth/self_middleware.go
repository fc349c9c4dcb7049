package auth

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// SelfMiddleware only lets the authenticated user act on their own
// /users/:id resource. The literal "me", or a route without the parameter,
// stands for the caller.
// It must be used AFTER AuthMiddleware.
func SelfMiddleware(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := UserID(c)
		if userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		raw := c.Param(param)
		if raw == "" || raw == "me" {
			c.Next()
			return
		}
		target, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		if uint(target) != userID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You can only change your own profile"})
			return
		}

		c.Next()
	}
}
