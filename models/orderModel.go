package models

import "gorm.io/gorm"

type Order struct {
	gorm.Model
	UserID            uint        `json:"userId"`
	MerchantRef       string      `json:"merchantRef" gorm:"uniqueIndex"`
	Email             string      `json:"email"`
	Phone             string      `json:"phone"`
	DeliveryLocation  string      `json:"deliveryLocation"`
	CouponCode        string      `json:"couponCode"`
	Total             float64     `json:"total"`
	Status            string      `json:"status"`
	PaymentTrackingId string      `json:"paymentTrackingId"`
	PaymentStatus     string      `json:"paymentStatus"`
	Items             []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem snapshots the product name and price at checkout time, so later
// product edits do not rewrite order history.
type OrderItem struct {
	gorm.Model
	OrderID   uint    `json:"orderId"`
	ProductID uint    `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}
