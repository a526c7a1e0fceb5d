package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/Njagi/sokoni-api/initializers"
	"github.com/Njagi/sokoni-api/models"
	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const pesapalBaseURL = "https://pay.pesapal.com/v3"

func paymentConfigured() bool {
	return os.Getenv("PESAPAL_CONSUMER_KEY") != "" &&
		os.Getenv("PESAPAL_CONSUMER_SECRET") != "" &&
		os.Getenv("PESAPAL_NOTIFICATION_ID") != ""
}

func getPesapalAccessToken() (string, error) {
	requestBody := map[string]string{
		"consumer_key":    os.Getenv("PESAPAL_CONSUMER_KEY"),
		"consumer_secret": os.Getenv("PESAPAL_CONSUMER_SECRET"),
	}

	resp, err := resty.New().R().
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetBody(requestBody).
		Post(pesapalBaseURL + "/api/Auth/RequestToken")
	if err != nil {
		return "", err
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("pesapal token request failed with status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var response map[string]any
	if err := json.Unmarshal(resp.Body(), &response); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}

	token, ok := response["token"].(string)
	if !ok || token == "" {
		return "", fmt.Errorf("token not found in response")
	}
	return token, nil
}

// Checkout turns the caller's cart into an order. Item names and prices are
// read from the product table, never from the request, and the cart is
// emptied in the same transaction as the order insert.
func Checkout(ctx *gin.Context) {
	user := currentUser(ctx)
	if user == nil {
		sendError(ctx, http.StatusUnauthorized, msgAuthenticationMissing)
		return
	}

	// The body is optional, the user record fills in the gaps.
	var body struct {
		Phone            string `json:"phone"`
		DeliveryLocation string `json:"deliveryLocation"`
	}
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&body); err != nil {
			sendError(ctx, http.StatusBadRequest, msgInvalidInput)
			return
		}
	}
	if body.Phone == "" {
		body.Phone = user.Phone
	}
	if body.DeliveryLocation == "" {
		body.DeliveryLocation = user.Address
	}

	var cart models.Cart
	err := initializers.DB.Preload("Items").Where("user_id = ?", user.ID).First(&cart).Error
	if err != nil || len(cart.Items) == 0 {
		sendError(ctx, http.StatusBadRequest, "cart is empty")
		return
	}

	order := models.Order{
		UserID:           user.ID,
		MerchantRef:      "ORDER-" + uuid.NewString(),
		Email:            user.Email,
		Phone:            body.Phone,
		DeliveryLocation: body.DeliveryLocation,
		CouponCode:       cart.CouponCode,
		Status:           "Pending",
		PaymentStatus:    "PENDING",
	}

	err = initializers.DB.Transaction(func(tx *gorm.DB) error {
		for _, item := range cart.Items {
			var product models.Product
			if err := tx.First(&product, item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("product %d is no longer available", item.ProductID)
				}
				return err
			}
			order.Items = append(order.Items, models.OrderItem{
				ProductID: product.ID,
				Name:      product.Name,
				Price:     product.Price,
				Quantity:  item.Quantity,
			})
			order.Total += product.Price * float64(item.Quantity)
		}

		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Model(&cart).Update("coupon_code", "").Error
	})
	if err != nil {
		log.Println("Checkout error:", err)
		sendError(ctx, http.StatusBadRequest, "failed to create order")
		return
	}

	if !paymentConfigured() {
		sendSuccess(ctx, http.StatusOK, gin.H{"data": gin.H{
			"orderId":     order.ID,
			"merchantRef": order.MerchantRef,
			"total":       order.Total,
			"message":     "Order created. Payment gateway is not configured.",
		}})
		return
	}

	token, err := getPesapalAccessToken()
	if err != nil {
		log.Println("Pesapal auth error:", err)
		sendError(ctx, http.StatusInternalServerError, "payment authentication failed")
		return
	}

	pesapalOrder := map[string]any{
		"id":              order.MerchantRef,
		"currency":        "KES",
		"amount":          order.Total,
		"description":     fmt.Sprintf("Payment for order #%d", order.ID),
		"callback_url":    os.Getenv("FRONTEND_URL") + "/payment/callback",
		"notification_id": os.Getenv("PESAPAL_NOTIFICATION_ID"),
		"billing_address": map[string]any{
			"email_address": order.Email,
			"phone_number":  order.Phone,
			"country_code":  "KE",
			"first_name":    user.Name,
			"city":          order.DeliveryLocation,
			"line_1":        order.DeliveryLocation,
		},
	}

	resp, err := resty.New().SetTimeout(30 * time.Second).R().
		SetHeaders(map[string]string{
			"Authorization": "Bearer " + token,
			"Accept":        "application/json",
			"Content-Type":  "application/json",
		}).
		SetBody(pesapalOrder).
		Post(pesapalBaseURL + "/api/Transactions/SubmitOrderRequest")
	if err != nil {
		log.Println("Pesapal submit error:", err)
		sendError(ctx, http.StatusInternalServerError, "failed to initiate payment")
		return
	}
	if resp.StatusCode() != http.StatusOK {
		log.Printf("Pesapal submit failed with status %d: %s", resp.StatusCode(), resp.Body())
		sendError(ctx, http.StatusInternalServerError, "failed to initiate payment")
		return
	}

	var pesapalResp map[string]any
	if err := json.Unmarshal(resp.Body(), &pesapalResp); err != nil {
		sendError(ctx, http.StatusInternalServerError, "invalid response from payment gateway")
		return
	}

	redirectURL, rOK := pesapalResp["redirect_url"].(string)
	trackingId, tOK := pesapalResp["order_tracking_id"].(string)
	if !rOK || !tOK || redirectURL == "" || trackingId == "" {
		sendError(ctx, http.StatusInternalServerError, "incomplete response from payment gateway")
		return
	}

	if err := initializers.DB.Model(&order).Update("payment_tracking_id", trackingId).Error; err != nil {
		log.Printf("Order %d created but tracking id not saved: %s", order.ID, trackingId)
	}

	sendSuccess(ctx, http.StatusOK, gin.H{"data": gin.H{
		"orderId":         order.ID,
		"merchantRef":     order.MerchantRef,
		"total":           order.Total,
		"redirectUrl":     redirectURL,
		"orderTrackingId": trackingId,
	}})
}

// HandlePaymentIPN answers Pesapal's payment notification callback by
// re-querying the transaction status and recording it on the order.
func HandlePaymentIPN(ctx *gin.Context) {
	var trackingId, merchantRef string

	if ctx.Request.Method == http.MethodPost {
		var payload struct {
			OrderTrackingId        string `json:"OrderTrackingId"`
			OrderMerchantReference string `json:"OrderMerchantReference"`
		}
		if err := ctx.BindJSON(&payload); err != nil {
			sendError(ctx, http.StatusBadRequest, msgInvalidInput)
			return
		}
		trackingId = payload.OrderTrackingId
		merchantRef = payload.OrderMerchantReference
	} else {
		trackingId = ctx.Query("OrderTrackingId")
		merchantRef = ctx.Query("OrderMerchantReference")
	}

	if trackingId == "" || merchantRef == "" {
		sendError(ctx, http.StatusBadRequest, "missing parameters")
		return
	}

	token, err := getPesapalAccessToken()
	if err != nil {
		log.Println("Pesapal auth error:", err)
		sendError(ctx, http.StatusInternalServerError, "payment authentication failed")
		return
	}

	resp, err := resty.New().R().
		SetHeader("Authorization", "Bearer "+token).
		SetHeader("Accept", "application/json").
		Get(pesapalBaseURL + "/api/Transactions/GetTransactionStatus?orderTrackingId=" + trackingId)
	if err != nil {
		sendError(ctx, http.StatusInternalServerError, "failed to check payment status")
		return
	}

	var statusResp map[string]any
	if err := json.Unmarshal(resp.Body(), &statusResp); err != nil {
		sendError(ctx, http.StatusInternalServerError, "invalid response from payment gateway")
		return
	}

	statusDesc := fmt.Sprint(statusResp["payment_status_description"])
	if err := initializers.DB.Model(&models.Order{}).
		Where("payment_tracking_id = ?", trackingId).
		Update("payment_status", statusDesc).Error; err != nil {
		sendError(ctx, http.StatusInternalServerError, "failed to update order status")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"orderNotificationType":  "IPNCHANGE",
		"orderTrackingId":        trackingId,
		"orderMerchantReference": merchantRef,
		"status":                 200,
	})
}

// GetMyOrders lists the authenticated user's orders, newest first.
func GetMyOrders(ctx *gin.Context) {
	user := currentUser(ctx)
	if user == nil {
		sendError(ctx, http.StatusUnauthorized, msgAuthenticationMissing)
		return
	}

	var orders []models.Order
	result := initializers.DB.Preload("Items").
		Where("user_id = ?", user.ID).
		Order("created_at desc").
		Find(&orders)
	if result.Error != nil {
		log.Println("Order listing error:", result.Error)
		sendError(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	sendSuccess(ctx, http.StatusOK, gin.H{"data": orders})
}

// GetOrders lists all orders with pagination. Admin only.
func GetOrders(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "15"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 15
	}

	sortOrder := ctx.DefaultQuery("sort", "desc")
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	var orders []models.Order
	result := initializers.DB.Preload("Items").
		Order("created_at " + sortOrder).
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&orders)
	if result.Error != nil {
		log.Println("Order listing error:", result.Error)
		sendError(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	var count int64
	initializers.DB.Model(&models.Order{}).Count(&count)
	totalPages := int(math.Ceil(float64(count) / float64(limit)))

	sendSuccess(ctx, http.StatusOK, gin.H{
		"data": orders,
		"metadata": gin.H{
			"total":       count,
			"currentPage": page,
			"limit":       limit,
			"hasPrevPage": page > 1,
			"hasNextPage": totalPages > page,
		},
	})
}

// GetUndeliveredOrders reports the number of orders still in flight. Admin
// only.
func GetUndeliveredOrders(ctx *gin.Context) {
	var count int64
	result := initializers.DB.Model(&models.Order{}).
		Where("status != ?", "Completed").
		Count(&count)
	if result.Error != nil {
		log.Println("Order count error:", result.Error)
		sendError(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	sendSuccess(ctx, http.StatusOK, gin.H{"data": gin.H{"undeliveredOrderCount": count}})
}

// UpdateOrderStatus sets an order's fulfillment status. Admin only.
func UpdateOrderStatus(ctx *gin.Context) {
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendError(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	orderId, err := strconv.Atoi(ctx.Param("orderId"))
	if err != nil {
		sendError(ctx, http.StatusBadRequest, "invalid order id")
		return
	}

	result := initializers.DB.Model(&models.Order{}).
		Where("id = ?", orderId).
		Update("status", body.Status)
	if result.Error != nil {
		log.Println("Order status update error:", result.Error)
		sendError(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		sendError(ctx, http.StatusNotFound, "order not found")
		return
	}

	sendSuccess(ctx, http.StatusOK, gin.H{"message": "Order status updated successfully."})
}
