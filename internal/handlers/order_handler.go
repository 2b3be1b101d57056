// internal/handlers/order_handler.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/velora/velora-backend/internal/services"
	"github.com/velora/velora-backend/internal/utils"
)

type OrderHandler struct {
	orders *services.OrderService
}

func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// CreateOrder handles POST /api/v1/orders, the checkout endpoint.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	order, err := h.orders.CreateOrder(userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.CreatedResponse(c, order)
}

func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	result, err := h.orders.ListUserOrders(userID, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.PaginatedResponse(c, *result)
}

func (h *OrderHandler) GetMyOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(orderID, &userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, order)
}

// CancelMyOrder handles POST /api/v1/orders/:id/cancel. Ownership is enforced
// by scoping the lookup to the caller.
func (h *OrderHandler) CancelMyOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	order, err := h.orders.CancelOrder(orderID, &userID, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, order)
}

// Admin endpoints

func (h *OrderHandler) ListOrders(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	filters := services.OrderFilters{
		PaymentStatus: c.Query("payment_status"),
	}
	result, err := h.orders.ListOrders(params, filters)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.PaginatedResponse(c, *result)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(orderID, nil)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, order)
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	order, err := h.orders.UpdateStatus(orderID, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, order)
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	orderID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	order, err := h.orders.CancelOrder(orderID, nil, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, order)
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	orderID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.orders.DeleteOrder(orderID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"deleted": true})
}
