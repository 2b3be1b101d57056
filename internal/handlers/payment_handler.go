// internal/handlers/payment_handler.go
package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/velora/velora-backend/internal/models"
	"github.com/velora/velora-backend/internal/services"
	"github.com/velora/velora-backend/internal/utils"
)

type PaymentHandler struct {
	payments *services.PaymentService
}

func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	payment, err := h.payments.GetPayment(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, payment)
}

func (h *PaymentHandler) ListPayments(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	result, err := h.payments.ListPayments(params)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.PaginatedResponse(c, *result)
}

// UpdatePaymentStatus handles PATCH /api/v1/admin/payments/:id/status, the
// manual override for reconciliation. The lifecycle graph still applies.
func (h *PaymentHandler) UpdatePaymentStatus(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status        models.PaymentStatus `json:"status" binding:"required"`
		TransactionID string               `json:"transaction_id,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	payment, err := h.payments.UpdateStatus(id, req.Status, req.TransactionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, payment)
}

// Webhook handles POST /api/v1/payments/webhook. The raw body is read before
// any parsing because the HMAC signature covers the exact bytes sent.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.BadRequestResponse(c, "Unable to read request body", nil)
		return
	}

	signature := c.GetHeader("X-Webhook-Signature")
	if signature == "" {
		utils.UnauthorizedResponse(c, "Missing webhook signature")
		return
	}

	if err := h.payments.HandleWebhook(payload, signature); err != nil {
		if errors.Is(err, services.ErrInvalidWebhookSignature) {
			utils.UnauthorizedResponse(c, err.Error())
			return
		}
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"received": true})
}
