package routes

import (
	"github.com/Njagi/sokoni-api/controllers"
	"github.com/Njagi/sokoni-api/middlewares"
	"github.com/Njagi/sokoni-api/services"
	"github.com/gin-gonic/gin"
)

func OrderRoutes(server *gin.Engine, authService *services.AuthService) {
	requireAuth := middlewares.RequireAuth(authService)
	requireAdmin := middlewares.RequireAdmin()

	server.POST("/order/checkout", requireAuth, controllers.Checkout)
	server.GET("/order/mine", requireAuth, controllers.GetMyOrders)
	server.GET("/order", requireAuth, requireAdmin, controllers.GetOrders)
	server.GET("/order/undelivered", requireAuth, requireAdmin, controllers.GetUndeliveredOrders)
	server.PATCH("/order/:orderId/status", requireAuth, requireAdmin, controllers.UpdateOrderStatus)
	server.POST("/order/ipn", controllers.HandlePaymentIPN)
	server.GET("/order/ipn", controllers.HandlePaymentIPN)
}
