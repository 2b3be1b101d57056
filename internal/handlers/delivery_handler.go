// internal/handlers/delivery_handler.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/velora/velora-backend/internal/services"
	"github.com/velora/velora-backend/internal/utils"
)

type DeliveryHandler struct {
	delivery *services.DeliveryService
}

func NewDeliveryHandler(delivery *services.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{delivery: delivery}
}

func (h *DeliveryHandler) ListPricings(c *gin.Context) {
	pricings, err := h.delivery.ListPricings()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, pricings)
}

func (h *DeliveryHandler) GetPricing(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	pricing, err := h.delivery.GetPricing(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, pricing)
}

func (h *DeliveryHandler) CreatePricing(c *gin.Context) {
	var req services.DeliveryPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	pricing, err := h.delivery.CreatePricing(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.CreatedResponse(c, pricing)
}

func (h *DeliveryHandler) UpdatePricing(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.DeliveryPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	pricing, err := h.delivery.UpdatePricing(id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, pricing)
}

func (h *DeliveryHandler) DeletePricing(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.delivery.DeletePricing(id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"deleted": true})
}
