package controllers

import (
	"net/http"
	"strconv"

	"github.com/Njagi/sokoni-api/services"
	"github.com/gin-gonic/gin"
)

type CartController struct {
	carts *services.CartService
}

func NewCartController(carts *services.CartService) *CartController {
	return &CartController{carts: carts}
}

// GetCart returns the caller's cart, creating an empty one on first access.
func (c *CartController) GetCart(ctx *gin.Context) {
	user := currentUser(ctx)
	if user == nil {
		sendError(ctx, http.StatusUnauthorized, msgAuthenticationMissing)
		return
	}

	cart, err := c.carts.GetCart(user.ID)
	if err != nil {
		sendServiceError(ctx, err)
		return
	}

	sendSuccess(ctx, http.StatusOK, gin.H{"data": cart})
}

// AddItem increments the quantity for a product already in the cart and
// inserts a new entry otherwise. Quantity defaults to 1 when omitted.
func (c *CartController) AddItem(ctx *gin.Context) {
	user := currentUser(ctx)
	if user == nil {
		sendError(ctx, http.StatusUnauthorized, msgAuthenticationMissing)
		return
	}

	var body struct {
		ProductID uint `json:"productId"`
		Quantity  int  `json:"quantity"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendError(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}
	if body.Quantity == 0 {
		body.Quantity = 1
	}

	cart, err := c.carts.AddItem(user.ID, body.ProductID, body.Quantity)
	if err != nil {
		sendServiceError(ctx, err)
		return
	}

	sendSuccess(ctx, http.StatusOK, gin.H{"data": cart})
}

// UpdateItem sets a product's quantity directly (not a delta).
func (c *CartController) UpdateItem(ctx *gin.Context) {
	user := currentUser(ctx)
	if user == nil {
		sendError(ctx, http.StatusUnauthorized, msgAuthenticationMissing)
		return
	}

	var body struct {
		ProductID uint `json:"productId"`
		Quantity  int  `json:"quantity"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendError(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	cart, err := c.carts.UpdateItem(user.ID, body.ProductID, body.Quantity)
	if err != nil {
		sendServiceError(ctx, err)
		return
	}

	sendSuccess(ctx, http.StatusOK, gin.H{"data": cart})
}

// RemoveItem drops a product's entry from the cart.
func (c *CartController) RemoveItem(ctx *gin.Context) {
	user := currentUser(ctx)
	if user == nil {
		sendError(ctx, http.StatusUnauthorized, msgAuthenticationMissing)
		return
	}

	productID, err := strconv.Atoi(ctx.Param("productId"))
	if err != nil || productID <= 0 {
		sendError(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	cart, err := c.carts.RemoveItem(user.ID, uint(productID))
	if err != nil {
		sendServiceError(ctx, err)
		return
	}

	sendSuccess(ctx, http.StatusOK, gin.H{"data": cart})
}

// ApplyCoupon replaces any previously applied coupon code.
func (c *CartController) ApplyCoupon(ctx *gin.Context) {
	user := currentUser(ctx)
	if user == nil {
		sendError(ctx, http.StatusUnauthorized, msgAuthenticationMissing)
		return
	}

	var body struct {
		Code string `json:"code"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendError(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	cart, err := c.carts.ApplyCoupon(user.ID, body.Code)
	if err != nil {
		sendServiceError(ctx, err)
		return
	}

	sendSuccess(ctx, http.StatusOK, gin.H{"data": cart})
}

// ClearCart empties the cart, idempotently.
func (c *CartController) ClearCart(ctx *gin.Context) {
	user := currentUser(ctx)
	if user == nil {
		sendError(ctx, http.StatusUnauthorized, msgAuthenticationMissing)
		return
	}

	cart, err := c.carts.ClearCart(user.ID)
	if err != nil {
		sendServiceError(ctx, err)
		return
	}

	sendSuccess(ctx, http.StatusOK, gin.H{"data": cart})
}
