package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func GetHome(ctx *gin.Context) {
	message := `Welcome to the Sokoni API.

AUTH
- POST "/auth/register" - Create user account
- POST "/auth/login" - Obtain or reuse a session token
- POST "/auth/check-token" - Reconcile a stored token by email
- GET "/auth/me" - Current user's profile
- POST "/auth/logout" - Revoke outstanding tokens
- POST "/auth/forgot-password" - Request a password reset
- POST "/auth/reset-password/:resetToken" - Reset user password

CART
- GET "/cart" - Current cart
- POST "/cart/item" - Add a product (additive)
- PUT "/cart/item" - Set a product's quantity
- DELETE "/cart/item/:productId" - Remove a product
- POST "/cart/apply-coupon" - Apply a coupon code
- DELETE "/cart/clear" - Empty the cart

PRODUCT
- GET "/product" - List products
- GET "/product/:id" - Product by ID
- POST "/product" - Create product (admin)
- POST "/product-specs" - Add product specifications (admin)
- POST "/product-images" - Upload product images (admin)

ORDER
- POST "/order/checkout" - Create an order from the cart
- GET "/order/mine" - Your orders
- GET "/order" - All orders (admin)
- PATCH "/order/:orderId/status" - Update order status (admin)`

	ctx.JSON(http.StatusOK, gin.H{"message": message})
}
