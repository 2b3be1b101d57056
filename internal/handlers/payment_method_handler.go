// internal/handlers/payment_method_handler.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/velora/velora-backend/internal/services"
	"github.com/velora/velora-backend/internal/utils"
)

type PaymentMethodHandler struct {
	methods *services.PaymentMethodService
}

func NewPaymentMethodHandler(methods *services.PaymentMethodService) *PaymentMethodHandler {
	return &PaymentMethodHandler{methods: methods}
}

// ListMethods returns active methods for the storefront; admins can pass
// ?include_inactive=true.
func (h *PaymentMethodHandler) ListMethods(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"
	if includeInactive {
		role, _ := utils.GetUserRoleFromContext(c)
		if role != "admin" && role != "superadmin" {
			includeInactive = false
		}
	}

	methods, err := h.methods.ListMethods(includeInactive)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, methods)
}

func (h *PaymentMethodHandler) GetMethod(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	method, err := h.methods.GetMethod(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, method)
}

func (h *PaymentMethodHandler) CreateMethod(c *gin.Context) {
	var req services.PaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	method, err := h.methods.CreateMethod(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.CreatedResponse(c, method)
}

func (h *PaymentMethodHandler) UpdateMethod(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.UpdatePaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	method, err := h.methods.UpdateMethod(id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, method)
}

func (h *PaymentMethodHandler) DeactivateMethod(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	method, err := h.methods.DeactivateMethod(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, method)
}

func (h *PaymentMethodHandler) DeleteMethod(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.methods.DeleteMethod(id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"deleted": true})
}
