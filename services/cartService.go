package services

import (
	"errors"

	"github.com/Njagi/sokoni-api/models"
	"gorm.io/gorm"
)

const (
	msgProductRequired  = "productId is required"
	msgQuantityRequired = "quantity must be at least 1"
	msgCouponRequired   = "coupon code is required"
)

// CartService implements the per-user cart contract. All operations take
// the already-authenticated user id; the cart is created implicitly on
// first access.
type CartService struct {
	db *gorm.DB
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// GetCart returns the user's cart, creating an empty one if none exists.
func (s *CartService) GetCart(userID uint) (*models.Cart, error) {
	cart, err := s.getOrCreate(userID)
	if err != nil {
		return nil, err
	}
	return s.loadCart(cart.ID)
}

// AddItem is additive: an existing entry for the product has its quantity
// incremented, otherwise a new entry is inserted.
func (s *CartService) AddItem(userID, productID uint, quantity int) (*models.Cart, error) {
	if productID == 0 {
		return nil, validationError(msgProductRequired)
	}
	if quantity < 1 {
		return nil, validationError(msgQuantityRequired)
	}

	cart, err := s.getOrCreate(userID)
	if err != nil {
		return nil, err
	}

	var item models.CartItem
	err = s.db.Where("cart_id = ? AND product_id = ?", cart.ID, productID).First(&item).Error
	switch {
	case err == nil:
		item.Quantity += quantity
		if err := s.db.Save(&item).Error; err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = models.CartItem{CartID: cart.ID, ProductID: productID, Quantity: quantity}
		if err := s.db.Create(&item).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return s.loadCart(cart.ID)
}

// UpdateItem sets the entry's quantity directly, unlike AddItem's additive
// behavior. A quantity below 1 is rejected; RemoveItem is the way to drop
// an entry.
func (s *CartService) UpdateItem(userID, productID uint, quantity int) (*models.Cart, error) {
	if productID == 0 {
		return nil, validationError(msgProductRequired)
	}
	if quantity < 1 {
		return nil, validationError(msgQuantityRequired)
	}

	cart, err := s.getOrCreate(userID)
	if err != nil {
		return nil, err
	}

	var item models.CartItem
	err = s.db.Where("cart_id = ? AND product_id = ?", cart.ID, productID).First(&item).Error
	switch {
	case err == nil:
		item.Quantity = quantity
		if err := s.db.Save(&item).Error; err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = models.CartItem{CartID: cart.ID, ProductID: productID, Quantity: quantity}
		if err := s.db.Create(&item).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return s.loadCart(cart.ID)
}

// RemoveItem drops the product's entry entirely. Removing an absent entry
// is a no-op success.
func (s *CartService) RemoveItem(userID, productID uint) (*models.Cart, error) {
	if productID == 0 {
		return nil, validationError(msgProductRequired)
	}

	cart, err := s.getOrCreate(userID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Where("cart_id = ? AND product_id = ?", cart.ID, productID).
		Delete(&models.CartItem{}).Error; err != nil {
		return nil, err
	}

	return s.loadCart(cart.ID)
}

// ApplyCoupon replaces any previously applied coupon with the new code.
// Validity and discount computation belong to an external collaborator.
func (s *CartService) ApplyCoupon(userID uint, code string) (*models.Cart, error) {
	if code == "" {
		return nil, validationError(msgCouponRequired)
	}

	cart, err := s.getOrCreate(userID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(cart).Update("coupon_code", code).Error; err != nil {
		return nil, err
	}

	return s.loadCart(cart.ID)
}

// ClearCart empties all items and the coupon. Clearing an already-empty
// cart is a no-op success.
func (s *CartService) ClearCart(userID uint) (*models.Cart, error) {
	cart, err := s.getOrCreate(userID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(cart).Update("coupon_code", "").Error; err != nil {
		return nil, err
	}

	return s.loadCart(cart.ID)
}

func (s *CartService) getOrCreate(userID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := s.db.Where(models.Cart{UserID: userID}).FirstOrCreate(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (s *CartService) loadCart(cartID uint) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("cart_items.product_id")
	}).First(&cart, cartID).Error
	if err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}
