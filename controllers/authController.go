package controllers

import (
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/Njagi/sokoni-api/models"
	"github.com/Njagi/sokoni-api/services"
	"github.com/Njagi/sokoni-api/utils"
	"github.com/gin-gonic/gin"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// tokenPayload echoes the token under both "token" and "accessToken" for
// client tolerance.
func tokenPayload(result *services.AuthResult) gin.H {
	return gin.H{
		"token":       result.Token,
		"accessToken": result.Token,
		"data":        result.User,
	}
}

// Register creates a user account and returns a freshly issued session
// token alongside the profile.
func (c *AuthController) Register(ctx *gin.Context) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Phone    string `json:"phone"`
		Address  string `json:"address"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendError(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	result, err := c.auth.Register(services.RegisterInput{
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
		Phone:    body.Phone,
		Address:  body.Address,
	})
	if err != nil {
		sendServiceError(ctx, err)
		return
	}

	if err := sendWelcomeEmail(result.User); err != nil {
		log.Println("Error sending welcome email:", err)
	}

	sendSuccess(ctx, http.StatusCreated, tokenPayload(result))
}

// Login reconciles the user's stored session token, issuing a replacement
// only when the stored one no longer verifies.
func (c *AuthController) Login(ctx *gin.Context) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendError(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	result, err := c.auth.Login(body.Email, body.Password)
	if err != nil {
		sendServiceError(ctx, err)
		return
	}

	sendSuccess(ctx, http.StatusOK, tokenPayload(result))
}

// CheckToken behaves like Login for known emails and answers
// {exists: false} instead of erroring for unknown ones.
func (c *AuthController) CheckToken(ctx *gin.Context) {
	var body struct {
		Email string `json:"email"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendError(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	result, err := c.auth.CheckToken(body.Email)
	if err != nil {
		sendServiceError(ctx, err)
		return
	}
	if !result.Exists {
		ctx.JSON(http.StatusOK, gin.H{"exists": false})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"exists":      true,
		"token":       result.Token,
		"accessToken": result.Token,
		"data":        result.User,
	})
}

// Me returns the authenticated user's profile.
func (c *AuthController) Me(ctx *gin.Context) {
	user := currentUser(ctx)
	if user == nil {
		sendError(ctx, http.StatusUnauthorized, msgAuthenticationMissing)
		return
	}

	profile, err := c.auth.Profile(user.ID)
	if err != nil {
		sendServiceError(ctx, err)
		return
	}

	sendSuccess(ctx, http.StatusOK, gin.H{"data": profile})
}

// Logout revokes all outstanding tokens for the authenticated user.
func (c *AuthController) Logout(ctx *gin.Context) {
	user := currentUser(ctx)
	if user == nil {
		sendError(ctx, http.StatusUnauthorized, msgAuthenticationMissing)
		return
	}

	if err := c.auth.Logout(user.ID); err != nil {
		sendServiceError(ctx, err)
		return
	}

	sendSuccess(ctx, http.StatusOK, gin.H{"message": "logged out"})
}

// ForgotPassword emails a reset link to the account's address.
func (c *AuthController) ForgotPassword(ctx *gin.Context) {
	var body struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendError(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	profile, code, err := c.auth.ForgotPassword(body.Email)
	if err != nil {
		sendServiceError(ctx, err)
		return
	}

	if err := sendPasswordResetEmail(*profile, code); err != nil {
		log.Println("Error sending password reset email:", err)
	}

	sendSuccess(ctx, http.StatusOK, gin.H{"message": "Check your email for a password reset link."})
}

// ResetPassword consumes a reset code from the emailed link.
func (c *AuthController) ResetPassword(ctx *gin.Context) {
	var body struct {
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendError(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	if err := c.auth.ResetPassword(ctx.Param("resetToken"), body.Password); err != nil {
		sendServiceError(ctx, err)
		return
	}

	sendSuccess(ctx, http.StatusOK, gin.H{"message": "Password reset successful."})
}

func sendWelcomeEmail(profile models.UserProfile) error {
	emailData := utils.EmailData{
		Name:        profile.Name,
		Message:     "Thank you for signing up! Your account is ready, happy shopping.",
		ActionURL:   os.Getenv("FRONTEND_URL"),
		ActionLabel: "Start shopping",
	}

	templatePath := filepath.Join("templates", "welcome_email.html")
	return utils.SendEmail(profile.Email, "Welcome to Sokoni", emailData, templatePath)
}

func sendPasswordResetEmail(profile models.UserProfile, resetToken string) error {
	emailData := utils.EmailData{
		Name:        profile.Name,
		Message:     "You requested a password reset. Click the button below to choose a new password.",
		ActionURL:   os.Getenv("FRONTEND_URL") + "/auth/reset-password?token=" + url.QueryEscape(resetToken),
		ActionLabel: "Reset password",
	}

	templatePath := filepath.Join("templates", "reset_password.html")
	return utils.SendEmail(profile.Email, "Sokoni Account Password Reset", emailData, templatePath)
}
