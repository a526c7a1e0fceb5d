package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/Njagi/sokoni-api/middlewares"
	"github.com/Njagi/sokoni-api/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCartRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newTestDB(t)
	auth := services.NewAuthService(db, services.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour})
	ctrl := NewCartController(services.NewCartService(db))

	router := gin.New()
	cart := router.Group("/cart", middlewares.RequireAuth(auth))
	cart.GET("", ctrl.GetCart)
	cart.POST("/item", ctrl.AddItem)
	cart.PUT("/item", ctrl.UpdateItem)
	cart.DELETE("/item/:productId", ctrl.RemoveItem)
	cart.POST("/apply-coupon", ctrl.ApplyCoupon)
	cart.DELETE("/clear", ctrl.ClearCart)

	result, err := auth.Register(services.RegisterInput{Name: "Ann", Email: "ann@x.com"})
	require.NoError(t, err)
	return router, result.Token
}

func cartItems(t *testing.T, payload map[string]any) []any {
	t.Helper()
	data, ok := payload["data"].(map[string]any)
	require.True(t, ok, "payload has no data object")
	items, ok := data["items"].([]any)
	require.True(t, ok, "cart has no items array")
	return items
}

func TestCartEndpointsRequireAuth(t *testing.T) {
	router, _ := newCartRouter(t)

	rec := doJSON(router, http.MethodGet, "/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCartFlowOverHTTP(t *testing.T) {
	router, token := newCartRouter(t)

	// Empty cart is created on first access.
	rec := doJSON(router, http.MethodGet, "/cart", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, cartItems(t, decodeBody(t, rec)))

	// Add twice, additive.
	rec = doJSON(router, http.MethodPost, "/cart/item", token, gin.H{"productId": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(router, http.MethodPost, "/cart/item", token, gin.H{"productId": 1, "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code)
	items := cartItems(t, decodeBody(t, rec))
	require.Len(t, items, 1)
	assert.EqualValues(t, 3, items[0].(map[string]any)["quantity"])

	// Absolute update.
	rec = doJSON(router, http.MethodPut, "/cart/item", token, gin.H{"productId": 1, "quantity": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	items = cartItems(t, decodeBody(t, rec))
	assert.EqualValues(t, 1, items[0].(map[string]any)["quantity"])

	// Coupon replace.
	rec = doJSON(router, http.MethodPost, "/cart/apply-coupon", token, gin.H{"code": "SAVE10"})
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, "SAVE10", data["couponCode"])

	// Clear is idempotent.
	rec = doJSON(router, http.MethodDelete, "/cart/clear", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, cartItems(t, decodeBody(t, rec)))
	rec = doJSON(router, http.MethodDelete, "/cart/clear", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, cartItems(t, decodeBody(t, rec)))
}

func TestCartValidationOverHTTP(t *testing.T) {
	router, token := newCartRouter(t)

	rec := doJSON(router, http.MethodPost, "/cart/item", token, gin.H{"quantity": 2})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(router, http.MethodPut, "/cart/item", token, gin.H{"productId": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(router, http.MethodPost, "/cart/apply-coupon", token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveItemOverHTTP(t *testing.T) {
	router, token := newCartRouter(t)

	rec := doJSON(router, http.MethodPost, "/cart/item", token, gin.H{"productId": 5, "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(router, http.MethodDelete, "/cart/item/5", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, cartItems(t, decodeBody(t, rec)))

	rec = doJSON(router, http.MethodDelete, "/cart/item/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
