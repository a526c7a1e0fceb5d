package routes

import (
	"github.com/Njagi/sokoni-api/controllers"
	"github.com/Njagi/sokoni-api/middlewares"
	"github.com/Njagi/sokoni-api/services"
	"github.com/gin-gonic/gin"
)

func AuthRoutes(server *gin.Engine, authService *services.AuthService) {
	ctrl := controllers.NewAuthController(authService)
	requireAuth := middlewares.RequireAuth(authService)

	auth := server.Group("/auth")
	{
		auth.POST("/register", ctrl.Register)
		auth.POST("/login", ctrl.Login)
		auth.POST("/check-token", ctrl.CheckToken)
		auth.GET("/me", requireAuth, ctrl.Me)
		auth.POST("/logout", requireAuth, ctrl.Logout)
		auth.POST("/forgot-password", ctrl.ForgotPassword)
		auth.POST("/reset-password/:resetToken", ctrl.ResetPassword)
	}
}
