package middlewares

import (
	"net/http"
	"strings"

	"github.com/Njagi/sokoni-api/services"
	"github.com/gin-gonic/gin"
)

const bearerPrefix = "Bearer "

// RequireAuth is the single authentication gate: it parses the bearer
// header, resolves the token to a user record (password excluded) and
// attaches it to the context. An invalid or expired token is a hard 401,
// re-issuance only happens through the login and check-token endpoints.
func RequireAuth(auth *services.AuthService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "missing or malformed authorization header",
			})
			return
		}

		user, err := auth.ResolveToken(strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "invalid or expired token",
			})
			return
		}

		ctx.Set("user", user)
		ctx.Next()
	}
}
