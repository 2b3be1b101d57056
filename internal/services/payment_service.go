// internal/services/payment_service.go
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"github.com/stripe/stripe-go/v74/refund"
	"gorm.io/gorm"

	"github.com/velora/velora-backend/internal/config"
	"github.com/velora/velora-backend/internal/models"
	"github.com/velora/velora-backend/internal/utils"
)

var (
	ErrPaymentNotFound          = errors.New("payment not found")
	ErrPaymentMethodNotFound    = errors.New("payment method not found")
	ErrPaymentMethodInactive    = errors.New("payment method is not active")
	ErrInvalidPaymentTransition = errors.New("invalid payment status transition")
	ErrInvalidWebhookSignature  = errors.New("invalid webhook signature")
)

type PaymentService struct {
	db     *gorm.DB
	config *config.Config
}

// WebhookEvent is the gateway callback body. The whole raw body is signed with
// HMAC-SHA256 and the signature travels in a header, so the event is only
// trusted after utils.VerifySignature passes.
type WebhookEvent struct {
	Type          string `json:"type"`
	TransactionID string `json:"transaction_id"`
	Reference     string `json:"reference,omitempty"`
}

func NewPaymentService(db *gorm.DB, cfg *config.Config) *PaymentService {
	return &PaymentService{db: db, config: cfg}
}

// CreateForOrder records the payment row for a freshly placed order. It runs
// inside the checkout transaction so a gateway or validation failure unwinds
// the whole order.
//
// COD payments reference no registered method and start out verified: nothing
// has to be confirmed externally before the courier collects. Online payments
// resolve an active payment method by name and, when the method is backed by
// Stripe and a key is configured, open a PaymentIntent whose id becomes the
// transaction reference.
func (s *PaymentService) CreateForOrder(tx *gorm.DB, order *models.Order, methodName string, amount float64) (*models.Payment, error) {
	payment := &models.Payment{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Status:     models.PaymentStatusPending,
	}

	if methodName == models.CODMethodName {
		payment.PaymentMethodName = models.CODMethodName
		payment.Verified = true
	} else {
		var method models.PaymentMethod
		if err := tx.Where("name = ?", methodName).First(&method).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrPaymentMethodNotFound
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		if !method.IsActive {
			return nil, ErrPaymentMethodInactive
		}

		payment.MethodID = &method.ID
		payment.PaymentMethodName = method.Name

		if s.stripeBacked(&method) {
			intentID, clientSecret, err := s.createStripeIntent(amount, order.ID)
			if err != nil {
				return nil, err
			}
			payment.TransactionID = intentID
			payment.Metadata = models.JSONB{"client_secret": clientSecret}
		}
	}

	if err := tx.Create(payment).Error; err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	return payment, nil
}

// UpdateStatus moves a payment along its lifecycle and mirrors the new status
// onto the owning order. Transitions outside the legal graph are rejected;
// writing the current status again is a no-op.
func (s *PaymentService) UpdateStatus(paymentID uuid.UUID, next models.PaymentStatus, transactionID string) (*models.Payment, error) {
	var payment *models.Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		payment, txErr = s.UpdateStatusTx(tx, paymentID, next, transactionID)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// UpdateStatusTx is the transaction-aware form of UpdateStatus, for callers
// that already hold a transaction, such as order cancellation.
func (s *PaymentService) UpdateStatusTx(tx *gorm.DB, paymentID uuid.UUID, next models.PaymentStatus, transactionID string) (*models.Payment, error) {
	if !next.Valid() {
		return nil, ErrInvalidPaymentTransition
	}

	var payment models.Payment
	if err := tx.First(&payment, "id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if payment.Status == next {
		return &payment, nil
	}
	if !payment.CanTransitionTo(next) {
		return nil, ErrInvalidPaymentTransition
	}

	if next == models.PaymentStatusRefunded && payment.TransactionID != "" {
		if err := s.refundStripeIntent(payment.TransactionID); err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{"status": next}
	if transactionID != "" {
		updates["transaction_id"] = transactionID
	}
	if next == models.PaymentStatusCompleted {
		now := time.Now().UTC()
		updates["payment_date"] = &now
		updates["verified"] = true
	}

	if err := tx.Model(&payment).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	if err := tx.Model(&models.Order{}).
		Where("id = ?", payment.OrderID).
		UpdateColumn("payment_status", next).Error; err != nil {
		return nil, fmt.Errorf("failed to propagate payment status: %w", err)
	}

	payment.Status = next
	return &payment, nil
}

// HandleWebhook processes a signed gateway callback. The signature covers the
// raw body; a mismatch rejects the event before anything is parsed into state.
func (s *PaymentService) HandleWebhook(payload []byte, signature string) error {
	if !utils.VerifySignature(s.config.Payment.WebhookSecret, payload, signature) {
		return ErrInvalidWebhookSignature
	}

	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("malformed webhook payload: %w", err)
	}

	// COD and other offline payments store an empty transaction id, so an
	// event without one must never match a payment.
	if event.TransactionID == "" {
		return ErrPaymentNotFound
	}

	var payment models.Payment
	if err := s.db.Where("transaction_id = ?", event.TransactionID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	var next models.PaymentStatus
	switch event.Type {
	case "payment.succeeded":
		next = models.PaymentStatusCompleted
	case "payment.failed":
		next = models.PaymentStatusFailed
	case "payment.refunded":
		next = models.PaymentStatusRefunded
	default:
		logrus.WithField("type", event.Type).Warn("Ignoring unknown webhook event type")
		return nil
	}

	if _, err := s.UpdateStatus(payment.ID, next, event.TransactionID); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"payment_id":     payment.ID,
		"transaction_id": event.TransactionID,
		"status":         next,
	}).Info("Webhook processed")

	return nil
}

func (s *PaymentService) GetPayment(id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.Preload("Method").First(&payment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &payment, nil
}

func (s *PaymentService) GetPaymentByOrder(orderID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.Preload("Method").Where("order_id = ?", orderID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &payment, nil
}

func (s *PaymentService) ListPayments(params utils.PaginationParams) (*utils.PaginationResult, error) {
	var payments []models.Payment
	var total int64

	query := s.db.Model(&models.Payment{})
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count payments: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "status", "payment_date"})
	query = utils.ApplyPagination(query, params)

	if err := query.Preload("Method").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch payments: %w", err)
	}

	result := utils.CreatePaginationResult(payments, total, params)
	return &result, nil
}

func (s *PaymentService) stripeBacked(method *models.PaymentMethod) bool {
	if s.config.Payment.StripeSecretKey == "" || method.Details == nil {
		return false
	}
	provider, _ := method.Details["provider"].(string)
	return provider == "stripe"
}

func (s *PaymentService) createStripeIntent(amount float64, orderID uuid.UUID) (string, string, error) {
	stripe.Key = s.config.Payment.StripeSecretKey

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(amount * 100)),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
	}
	params.AddMetadata("order_id", orderID.String())

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", "", fmt.Errorf("failed to create payment intent: %w", err)
	}
	return pi.ID, pi.ClientSecret, nil
}

func (s *PaymentService) refundStripeIntent(transactionID string) error {
	if s.config.Payment.StripeSecretKey == "" {
		return nil
	}
	stripe.Key = s.config.Payment.StripeSecretKey

	_, err := refund.New(&stripe.RefundParams{
		PaymentIntent: stripe.String(transactionID),
	})
	if err != nil {
		return fmt.Errorf("failed to refund payment intent: %w", err)
	}
	return nil
}
