package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/Njagi/sokoni-api/models"
	"github.com/Njagi/sokoni-api/services"
	"github.com/gin-gonic/gin"
)

const (
	msgInvalidInput          = "invalid input"
	msgInternalServerError   = "internal server error"
	msgAuthenticationMissing = "authentication required"
)

// sendSuccess wraps the payload in the {success, ...} envelope.
func sendSuccess(ctx *gin.Context, status int, data gin.H) {
	payload := gin.H{"success": true}
	for key, value := range data {
		payload[key] = value
	}
	ctx.JSON(status, payload)
}

func sendError(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"success": false, "error": message})
}

// sendServiceError maps kinded service errors onto HTTP statuses. Anything
// else is logged and surfaced as a generic 500 so internals never leak.
func sendServiceError(ctx *gin.Context, err error) {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		sendError(ctx, statusForKind(svcErr.Kind), svcErr.Message)
		return
	}
	log.Println("Unexpected error:", err)
	sendError(ctx, http.StatusInternalServerError, msgInternalServerError)
}

func statusForKind(kind services.ErrorKind) int {
	switch kind {
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}

// currentUser returns the user attached by the auth middleware, or nil.
func currentUser(ctx *gin.Context) *models.User {
	value, exists := ctx.Get("user")
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
