// internal/services/order_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/velora/velora-backend/internal/models"
)

func newOrderService(db *gorm.DB) *OrderService {
	cfg := testConfig()
	return NewOrderService(db, NewCouponService(db), NewPaymentService(db, cfg), NewCartService(db))
}

func TestCreateOrderTotals(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)

	user := createTestUser(t, db)
	product := createTestProduct(t, db, 100, 10)
	createTestDelivery(t, db, "Standard", 20)
	seedCODMethod(t, db)
	addToCart(t, db, user.ID, product, 1)

	order, err := svc.CreateOrder(user.ID, checkoutRequest(""))
	require.NoError(t, err)

	assert.InDelta(t, 120.0, order.TotalAmount, 1e-9)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Len(t, order.StatusHistory, 1)
	assert.Equal(t, models.PaymentTypeOffline, order.PaymentType)
	require.NotNil(t, order.PaymentID)

	require.Len(t, order.Items, 1)
	assert.Equal(t, product.Name, order.Items[0].ProductName)
	assert.InDelta(t, 100.0, order.Items[0].Price, 1e-9)

	// COD payment is pre-verified and references no registered method.
	var payment models.Payment
	require.NoError(t, db.First(&payment, "id = ?", *order.PaymentID).Error)
	assert.Equal(t, models.CODMethodName, payment.PaymentMethodName)
	assert.True(t, payment.Verified)
	assert.Nil(t, payment.MethodID)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)

	// Stock reserved, aggregates bumped, cart cleared.
	var got models.Product
	require.NoError(t, db.First(&got, "id = ?", product.ID).Error)
	assert.Equal(t, 9, got.Quantity)
	assert.Equal(t, 1, got.TotalSales)

	var gotUser models.User
	require.NoError(t, db.First(&gotUser, "id = ?", user.ID).Error)
	assert.Equal(t, 1, gotUser.TotalOrders)
	assert.InDelta(t, 120.0, gotUser.TotalPurchases, 1e-9)

	var itemCount int64
	require.NoError(t, db.Model(&models.CartItem{}).Count(&itemCount).Error)
	assert.Zero(t, itemCount)
}

func TestCreateOrderWithCoupon(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)

	user := createTestUser(t, db)
	product := createTestProduct(t, db, 100, 10)
	createTestDelivery(t, db, "Standard", 20)
	seedCODMethod(t, db)
	createTestCoupon(t, db, "SAVE10", models.DiscountTypePercentage, 10, 100)
	addToCart(t, db, user.ID, product, 1)

	order, err := svc.CreateOrder(user.ID, checkoutRequest("SAVE10"))
	require.NoError(t, err)

	// 10% off the delivery-inclusive total of 120.
	assert.InDelta(t, 108.0, order.TotalAmount, 1e-9)
	assert.True(t, order.CouponApplied.Set)
	assert.Equal(t, "SAVE10", order.CouponApplied.Code)

	var coupon models.Coupon
	require.NoError(t, db.Where("code = ?", "SAVE10").First(&coupon).Error)
	assert.Equal(t, 1, coupon.UsedCount)
}

func TestCreateOrderEmptyCart(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)

	user := createTestUser(t, db)
	createTestDelivery(t, db, "Standard", 20)
	seedCODMethod(t, db)

	_, err := svc.CreateOrder(user.ID, checkoutRequest(""))
	assert.ErrorIs(t, err, ErrCartEmpty)

	// Checkout has no side effects, so the second attempt fails identically.
	_, err = svc.CreateOrder(user.ID, checkoutRequest(""))
	assert.ErrorIs(t, err, ErrCartEmpty)
}

func TestCreateOrderUserVanished(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)

	user := createTestUser(t, db)
	product := createTestProduct(t, db, 100, 10)
	createTestDelivery(t, db, "Standard", 20)
	seedCODMethod(t, db)
	addToCart(t, db, user.ID, product, 1)

	require.NoError(t, db.Unscoped().Delete(&models.User{}, "id = ?", user.ID).Error)

	_, err := svc.CreateOrder(user.ID, checkoutRequest(""))
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreateOrderInsufficientStockRollsBack(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)

	user := createTestUser(t, db)
	first := createTestProduct(t, db, 40, 10)
	second := createTestProduct(t, db, 60, 5)
	createTestDelivery(t, db, "Standard", 20)
	seedCODMethod(t, db)
	createTestCoupon(t, db, "SAVE10", models.DiscountTypePercentage, 10, 100)

	addToCart(t, db, user.ID, first, 2)
	addToCart(t, db, user.ID, second, 3)

	// Stock drains between add-to-cart and checkout.
	require.NoError(t, db.Model(second).UpdateColumn("quantity", 1).Error)

	_, err := svc.CreateOrder(user.ID, checkoutRequest("SAVE10"))
	require.ErrorIs(t, err, ErrInsufficientStock)

	// The whole checkout rolled back: first product untouched, no order, no
	// payment, coupon unconsumed, cart and user aggregates intact.
	var gotFirst models.Product
	require.NoError(t, db.First(&gotFirst, "id = ?", first.ID).Error)
	assert.Equal(t, 10, gotFirst.Quantity)
	assert.Equal(t, 0, gotFirst.TotalSales)

	var orderCount, paymentCount, itemCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	require.NoError(t, db.Model(&models.Payment{}).Count(&paymentCount).Error)
	require.NoError(t, db.Model(&models.CartItem{}).Count(&itemCount).Error)
	assert.Zero(t, orderCount)
	assert.Zero(t, paymentCount)
	assert.Equal(t, int64(2), itemCount)

	var coupon models.Coupon
	require.NoError(t, db.Where("code = ?", "SAVE10").First(&coupon).Error)
	assert.Zero(t, coupon.UsedCount)

	var gotUser models.User
	require.NoError(t, db.First(&gotUser, "id = ?", user.ID).Error)
	assert.Zero(t, gotUser.TotalOrders)
	assert.Zero(t, gotUser.TotalPurchases)
}

func TestCancelOrderPending(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)

	user := createTestUser(t, db)
	product := createTestProduct(t, db, 100, 10)
	createTestDelivery(t, db, "Standard", 20)
	seedCODMethod(t, db)
	addToCart(t, db, user.ID, product, 1)

	order, err := svc.CreateOrder(user.ID, checkoutRequest(""))
	require.NoError(t, err)

	cancelled, err := svc.CancelOrder(order.ID, &user.ID, "changed my mind")
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, "changed my mind", cancelled.CancellationReason)

	entries := 0
	for _, e := range cancelled.StatusHistory {
		if e.Status == models.OrderStatusCancelled {
			entries++
		}
	}
	assert.Equal(t, 1, entries)

	// Pending payment is marked failed.
	var payment models.Payment
	require.NoError(t, db.First(&payment, "id = ?", *order.PaymentID).Error)
	assert.Equal(t, models.PaymentStatusFailed, payment.Status)

	// Aggregates adjusted: purchases floored at zero, cancellations counted.
	var gotUser models.User
	require.NoError(t, db.First(&gotUser, "id = ?", user.ID).Error)
	assert.Equal(t, 1, gotUser.CancelledOrders)
	assert.Zero(t, gotUser.TotalPurchases)

	// Stock is not returned on cancellation.
	var gotProduct models.Product
	require.NoError(t, db.First(&gotProduct, "id = ?", product.ID).Error)
	assert.Equal(t, 9, gotProduct.Quantity)
}

func TestCancelOrderShippedFails(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)

	user := createTestUser(t, db)
	product := createTestProduct(t, db, 100, 10)
	createTestDelivery(t, db, "Standard", 20)
	seedCODMethod(t, db)
	addToCart(t, db, user.ID, product, 1)

	order, err := svc.CreateOrder(user.ID, checkoutRequest(""))
	require.NoError(t, err)

	require.NoError(t, db.Model(order).UpdateColumn("status", models.OrderStatusShipped).Error)

	_, err = svc.CancelOrder(order.ID, &user.ID, "")
	assert.ErrorIs(t, err, ErrOrderNotCancellable)
}

func TestCancelOrderOwnershipEnforced(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)

	owner := createTestUser(t, db)
	stranger := createTestUser(t, db)
	product := createTestProduct(t, db, 100, 10)
	createTestDelivery(t, db, "Standard", 20)
	seedCODMethod(t, db)
	addToCart(t, db, owner.ID, product, 1)

	order, err := svc.CreateOrder(owner.ID, checkoutRequest(""))
	require.NoError(t, err)

	_, err = svc.CancelOrder(order.ID, &stranger.ID, "")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	// Admin path passes nil and sees every order.
	_, err = svc.CancelOrder(order.ID, nil, "admin cleanup")
	assert.NoError(t, err)
}

func TestUpdateStatusDeliveredCompletesCODPayment(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)

	user := createTestUser(t, db)
	product := createTestProduct(t, db, 100, 10)
	createTestDelivery(t, db, "Standard", 20)
	seedCODMethod(t, db)
	addToCart(t, db, user.ID, product, 1)

	order, err := svc.CreateOrder(user.ID, checkoutRequest(""))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(order.ID, models.OrderStatusShipped)
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(order.ID, models.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, updated.Status)

	var payment models.Payment
	require.NoError(t, db.First(&payment, "id = ?", *order.PaymentID).Error)
	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
	assert.True(t, payment.Verified)
	assert.NotNil(t, payment.PaymentDate)

	var gotOrder models.Order
	require.NoError(t, db.First(&gotOrder, "id = ?", order.ID).Error)
	assert.Equal(t, models.PaymentStatusCompleted, gotOrder.PaymentStatus)
}

func TestUpdateStatusRejectsBackwardsAndCancel(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)

	user := createTestUser(t, db)
	product := createTestProduct(t, db, 100, 10)
	createTestDelivery(t, db, "Standard", 20)
	seedCODMethod(t, db)
	addToCart(t, db, user.ID, product, 1)

	order, err := svc.CreateOrder(user.ID, checkoutRequest(""))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(order.ID, models.OrderStatusShipped)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(order.ID, models.OrderStatusProcessing)
	assert.ErrorIs(t, err, ErrInvalidOrderTransition)

	// Cancellation never goes through the fulfilment transition path.
	_, err = svc.UpdateStatus(order.ID, models.OrderStatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidOrderTransition)
}

func TestDeleteOrderCascades(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)

	user := createTestUser(t, db)
	product := createTestProduct(t, db, 100, 10)
	createTestDelivery(t, db, "Standard", 20)
	seedCODMethod(t, db)
	addToCart(t, db, user.ID, product, 1)

	order, err := svc.CreateOrder(user.ID, checkoutRequest(""))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteOrder(order.ID))

	var itemCount, paymentCount int64
	require.NoError(t, db.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&itemCount).Error)
	require.NoError(t, db.Model(&models.Payment{}).Where("order_id = ?", order.ID).Count(&paymentCount).Error)
	assert.Zero(t, itemCount)
	assert.Zero(t, paymentCount)

	_, err = svc.GetOrder(order.ID, nil)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
