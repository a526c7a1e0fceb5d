package routes

import (
	"github.com/Njagi/sokoni-api/controllers"
	"github.com/Njagi/sokoni-api/middlewares"
	"github.com/Njagi/sokoni-api/services"
	"github.com/gin-gonic/gin"
)

func ProductRoutes(server *gin.Engine, authService *services.AuthService) {
	requireAuth := middlewares.RequireAuth(authService)
	requireAdmin := middlewares.RequireAdmin()

	server.POST("/product", requireAuth, requireAdmin, controllers.CreateProduct)
	server.POST("/product-specs", requireAuth, requireAdmin, controllers.CreateProductSpecs)
	server.POST("/product-images", requireAuth, requireAdmin, controllers.UploadProductImages)
	server.GET("/product", controllers.GetProducts)
	server.GET("/product/:id", controllers.GetProduct)
}
