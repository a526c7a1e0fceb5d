package routes

import (
	"github.com/Njagi/sokoni-api/controllers"
	"github.com/Njagi/sokoni-api/middlewares"
	"github.com/Njagi/sokoni-api/services"
	"github.com/gin-gonic/gin"
)

func CartRoutes(server *gin.Engine, authService *services.AuthService, cartService *services.CartService) {
	ctrl := controllers.NewCartController(cartService)

	cart := server.Group("/cart", middlewares.RequireAuth(authService))
	{
		cart.GET("", ctrl.GetCart)
		cart.POST("/item", ctrl.AddItem)
		cart.PUT("/item", ctrl.UpdateItem)
		cart.DELETE("/item/:productId", ctrl.RemoveItem)
		cart.POST("/apply-coupon", ctrl.ApplyCoupon)
		cart.DELETE("/clear", ctrl.ClearCart)
	}
}
