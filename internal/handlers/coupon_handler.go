// internal/handlers/coupon_handler.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/velora/velora-backend/internal/services"
	"github.com/velora/velora-backend/internal/utils"
)

type CouponHandler struct {
	coupons *services.CouponService
}

func NewCouponHandler(coupons *services.CouponService) *CouponHandler {
	return &CouponHandler{coupons: coupons}
}

// ValidateCoupon handles GET /api/v1/coupons/:code, the storefront pre-check
// before checkout.
func (h *CouponHandler) ValidateCoupon(c *gin.Context) {
	coupon, err := h.coupons.GetCouponByCode(c.Param("code"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, coupon)
}

func (h *CouponHandler) ListCoupons(c *gin.Context) {
	coupons, err := h.coupons.ListCoupons()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, coupons)
}

func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	var req services.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	coupon, err := h.coupons.CreateCoupon(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.CreatedResponse(c, coupon)
}

func (h *CouponHandler) UpdateCoupon(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	coupon, err := h.coupons.UpdateCoupon(id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, coupon)
}

func (h *CouponHandler) DeleteCoupon(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.coupons.DeleteCoupon(id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"deleted": true})
}
