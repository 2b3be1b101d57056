// internal/services/payment_service_test.go
package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/velora/velora-backend/internal/models"
	"github.com/velora/velora-backend/internal/utils"
)

// placeTestOrder runs a COD checkout and returns the order with its payment.
func placeTestOrder(t *testing.T, db *gorm.DB) (*models.Order, *models.Payment) {
	t.Helper()

	svc := newOrderService(db)
	user := createTestUser(t, db)
	product := createTestProduct(t, db, 100, 10)
	createTestDelivery(t, db, "Standard", 20)
	seedCODMethod(t, db)
	addToCart(t, db, user.ID, product, 1)

	order, err := svc.CreateOrder(user.ID, checkoutRequest(""))
	require.NoError(t, err)
	require.NotNil(t, order.PaymentID)

	var payment models.Payment
	require.NoError(t, db.First(&payment, "id = ?", *order.PaymentID).Error)
	return order, &payment
}

func TestPaymentTransitionGraph(t *testing.T) {
	cases := []struct {
		from    models.PaymentStatus
		to      models.PaymentStatus
		allowed bool
	}{
		{models.PaymentStatusPending, models.PaymentStatusCompleted, true},
		{models.PaymentStatusPending, models.PaymentStatusFailed, true},
		{models.PaymentStatusPending, models.PaymentStatusRefunded, false},
		{models.PaymentStatusCompleted, models.PaymentStatusRefunded, true},
		{models.PaymentStatusCompleted, models.PaymentStatusPending, false},
		{models.PaymentStatusCompleted, models.PaymentStatusFailed, false},
		{models.PaymentStatusFailed, models.PaymentStatusCompleted, false},
		{models.PaymentStatusRefunded, models.PaymentStatusPending, false},
	}

	for _, tc := range cases {
		p := &models.Payment{Status: tc.from}
		assert.Equal(t, tc.allowed, p.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestUpdateStatusCompletedPropagatesToOrder(t *testing.T) {
	db := newTestDB(t)
	svc := NewPaymentService(db, testConfig())

	order, payment := placeTestOrder(t, db)

	updated, err := svc.UpdateStatus(payment.ID, models.PaymentStatusCompleted, "txn_001")
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusCompleted, updated.Status)

	var stored models.Payment
	require.NoError(t, db.First(&stored, "id = ?", payment.ID).Error)
	assert.True(t, stored.Verified)
	assert.NotNil(t, stored.PaymentDate)
	assert.Equal(t, "txn_001", stored.TransactionID)

	var gotOrder models.Order
	require.NoError(t, db.First(&gotOrder, "id = ?", order.ID).Error)
	assert.Equal(t, models.PaymentStatusCompleted, gotOrder.PaymentStatus)
}

func TestUpdateStatusRejectsIllegalTransitions(t *testing.T) {
	db := newTestDB(t)
	svc := NewPaymentService(db, testConfig())

	_, payment := placeTestOrder(t, db)

	// Pending cannot be refunded directly.
	_, err := svc.UpdateStatus(payment.ID, models.PaymentStatusRefunded, "")
	assert.ErrorIs(t, err, ErrInvalidPaymentTransition)

	_, err = svc.UpdateStatus(payment.ID, models.PaymentStatusFailed, "")
	require.NoError(t, err)

	// Failed is terminal.
	_, err = svc.UpdateStatus(payment.ID, models.PaymentStatusCompleted, "")
	assert.ErrorIs(t, err, ErrInvalidPaymentTransition)
}

func TestUpdateStatusSameStatusIsNoOp(t *testing.T) {
	db := newTestDB(t)
	svc := NewPaymentService(db, testConfig())

	_, payment := placeTestOrder(t, db)

	updated, err := svc.UpdateStatus(payment.ID, models.PaymentStatusPending, "")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, updated.Status)
}

func TestHandleWebhookCompletesPayment(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	svc := NewPaymentService(db, cfg)

	order, payment := placeTestOrder(t, db)
	require.NoError(t, db.Model(payment).UpdateColumn("transaction_id", "txn_hook").Error)

	body, err := json.Marshal(WebhookEvent{Type: "payment.succeeded", TransactionID: "txn_hook"})
	require.NoError(t, err)
	signature := utils.SignPayload(cfg.Payment.WebhookSecret, body)

	require.NoError(t, svc.HandleWebhook(body, signature))

	var stored models.Payment
	require.NoError(t, db.First(&stored, "id = ?", payment.ID).Error)
	assert.Equal(t, models.PaymentStatusCompleted, stored.Status)

	var gotOrder models.Order
	require.NoError(t, db.First(&gotOrder, "id = ?", order.ID).Error)
	assert.Equal(t, models.PaymentStatusCompleted, gotOrder.PaymentStatus)
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	svc := NewPaymentService(db, cfg)

	_, payment := placeTestOrder(t, db)
	require.NoError(t, db.Model(payment).UpdateColumn("transaction_id", "txn_hook").Error)

	body, err := json.Marshal(WebhookEvent{Type: "payment.succeeded", TransactionID: "txn_hook"})
	require.NoError(t, err)

	err = svc.HandleWebhook(body, "deadbeef")
	assert.ErrorIs(t, err, ErrInvalidWebhookSignature)

	// Unverified events never touch state.
	var stored models.Payment
	require.NoError(t, db.First(&stored, "id = ?", payment.ID).Error)
	assert.Equal(t, models.PaymentStatusPending, stored.Status)
}

func TestHandleWebhookRejectsEmptyTransactionID(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	svc := NewPaymentService(db, cfg)

	// COD payments carry no transaction id; an event with an empty one must
	// not resolve to them.
	_, payment := placeTestOrder(t, db)

	body, err := json.Marshal(WebhookEvent{Type: "payment.succeeded", TransactionID: ""})
	require.NoError(t, err)
	signature := utils.SignPayload(cfg.Payment.WebhookSecret, body)

	err = svc.HandleWebhook(body, signature)
	assert.ErrorIs(t, err, ErrPaymentNotFound)

	var stored models.Payment
	require.NoError(t, db.First(&stored, "id = ?", payment.ID).Error)
	assert.Equal(t, models.PaymentStatusPending, stored.Status)
}

func TestHandleWebhookIgnoresUnknownEventType(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	svc := NewPaymentService(db, cfg)

	_, payment := placeTestOrder(t, db)
	require.NoError(t, db.Model(payment).UpdateColumn("transaction_id", "txn_hook").Error)

	body, err := json.Marshal(WebhookEvent{Type: "payment.mystery", TransactionID: "txn_hook"})
	require.NoError(t, err)
	signature := utils.SignPayload(cfg.Payment.WebhookSecret, body)

	require.NoError(t, svc.HandleWebhook(body, signature))

	var stored models.Payment
	require.NoError(t, db.First(&stored, "id = ?", payment.ID).Error)
	assert.Equal(t, models.PaymentStatusPending, stored.Status)
}
