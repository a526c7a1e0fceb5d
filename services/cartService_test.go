package services

import (
	"testing"

	"github.com/Njagi/sokoni-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID uint = 1

func newTestCartService(t *testing.T) *CartService {
	t.Helper()
	return NewCartService(newTestDB(t))
}

func TestGetCartCreatesImplicitly(t *testing.T) {
	svc := newTestCartService(t)

	cart, err := svc.GetCart(testUserID)
	require.NoError(t, err)
	assert.Equal(t, testUserID, cart.UserID)
	assert.Empty(t, cart.Items)
	assert.Empty(t, cart.CouponCode)

	again, err := svc.GetCart(testUserID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)
}

func TestAddItemIsAdditive(t *testing.T) {
	svc := newTestCartService(t)

	cart, err := svc.AddItem(testUserID, 7, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	cart, err = svc.AddItem(testUserID, 7, 3)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestAddItemValidation(t *testing.T) {
	svc := newTestCartService(t)

	_, err := svc.AddItem(testUserID, 0, 1)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindValidation, svcErr.Kind)

	_, err = svc.AddItem(testUserID, 7, 0)
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindValidation, svcErr.Kind)
}

func TestUpdateItemIsAbsolute(t *testing.T) {
	svc := newTestCartService(t)

	_, err := svc.AddItem(testUserID, 7, 3)
	require.NoError(t, err)

	cart, err := svc.UpdateItem(testUserID, 7, 5)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)

	cart, err = svc.UpdateItem(testUserID, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Items[0].Quantity)
}

func TestUpdateItemInsertsWhenAbsent(t *testing.T) {
	svc := newTestCartService(t)

	cart, err := svc.UpdateItem(testUserID, 9, 4)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, uint(9), cart.Items[0].ProductID)
	assert.Equal(t, 4, cart.Items[0].Quantity)
}

func TestUpdateItemValidation(t *testing.T) {
	svc := newTestCartService(t)

	_, err := svc.AddItem(testUserID, 7, 3)
	require.NoError(t, err)

	var svcErr *Error
	_, err = svc.UpdateItem(testUserID, 0, 5)
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindValidation, svcErr.Kind)

	// The update path never drops below 1; RemoveItem is the way out.
	_, err = svc.UpdateItem(testUserID, 7, 0)
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindValidation, svcErr.Kind)

	cart, err := svc.GetCart(testUserID)
	require.NoError(t, err)
	assert.Equal(t, 3, cart.Items[0].Quantity)
}

func TestRemoveItemDeletesEntry(t *testing.T) {
	svc := newTestCartService(t)

	_, err := svc.AddItem(testUserID, 7, 2)
	require.NoError(t, err)

	cart, err := svc.RemoveItem(testUserID, 7)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	// Removing an absent entry is a no-op success.
	cart, err = svc.RemoveItem(testUserID, 7)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestApplyCouponReplaces(t *testing.T) {
	svc := newTestCartService(t)

	cart, err := svc.ApplyCoupon(testUserID, "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", cart.CouponCode)

	cart, err = svc.ApplyCoupon(testUserID, "SAVE20")
	require.NoError(t, err)
	assert.Equal(t, "SAVE20", cart.CouponCode)

	var svcErr *Error
	_, err = svc.ApplyCoupon(testUserID, "")
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindValidation, svcErr.Kind)
}

func TestClearCartIsIdempotent(t *testing.T) {
	svc := newTestCartService(t)

	cart, err := svc.ClearCart(testUserID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	_, err = svc.AddItem(testUserID, 7, 2)
	require.NoError(t, err)
	_, err = svc.AddItem(testUserID, 8, 1)
	require.NoError(t, err)
	_, err = svc.ApplyCoupon(testUserID, "SAVE10")
	require.NoError(t, err)

	cart, err = svc.ClearCart(testUserID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Empty(t, cart.CouponCode)

	cart, err = svc.ClearCart(testUserID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	svc := newTestCartService(t)

	_, err := svc.AddItem(1, 7, 2)
	require.NoError(t, err)
	cart, err := svc.AddItem(2, 7, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, cart.Items[0].Quantity)

	cart, err = svc.GetCart(1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

// Mirrors the end-to-end cart walk: add, add again, absolute update, clear.
func TestCartScenario(t *testing.T) {
	svc := newTestCartService(t)

	cart, err := svc.AddItem(testUserID, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Items[0].Quantity)

	cart, err = svc.AddItem(testUserID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, cart.Items[0].Quantity)

	cart, err = svc.UpdateItem(testUserID, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Items[0].Quantity)

	cart, err = svc.ClearCart(testUserID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	var count int64
	require.NoError(t, svc.db.Model(&models.CartItem{}).Count(&count).Error)
	assert.Zero(t, count)
}
