package models

import (
	"time"

	"gorm.io/gorm"
)

// Cart holds a user's pending selection. One cart per user; a product
// appears in at most one item row.
type Cart struct {
	gorm.Model
	UserID     uint       `json:"userId" gorm:"uniqueIndex"`
	CouponCode string     `json:"couponCode"`
	Items      []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

// CartItem deliberately skips gorm.Model: removals are hard deletes, so a
// re-added product does not collide with a soft-deleted row on the unique
// (cart_id, product_id) index.
type CartItem struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	CartID    uint      `json:"-" gorm:"uniqueIndex:idx_cart_product"`
	ProductID uint      `json:"productId" gorm:"uniqueIndex:idx_cart_product"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
