package middlewares

import (
	"net/http"

	"github.com/Njagi/sokoni-api/models"
	"github.com/gin-gonic/gin"
)

// RequireAdmin stacks on RequireAuth and rejects non-admin users.
func RequireAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		value, exists := ctx.Get("user")
		if !exists {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "authentication required",
			})
			return
		}

		user, ok := value.(*models.User)
		if !ok || !user.IsAdmin {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "admin access required",
			})
			return
		}

		ctx.Next()
	}
}
