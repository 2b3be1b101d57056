// internal/services/coupon_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velora/velora-backend/internal/models"
	"github.com/velora/velora-backend/internal/utils"
)

var (
	ErrCouponNotFound          = errors.New("invalid coupon code")
	ErrCouponExpired           = errors.New("coupon has expired")
	ErrCouponUsageLimitReached = errors.New("coupon usage limit reached")
	ErrCouponMinimumNotMet     = errors.New("order amount below coupon minimum")
	ErrCouponExists            = errors.New("coupon code already exists")
)

type CouponService struct {
	db *gorm.DB
}

type CreateCouponRequest struct {
	Code              string              `json:"code" validate:"required,min=3,max=50"`
	DiscountType      models.DiscountType `json:"discount_type" validate:"required,oneof=percentage fixed"`
	DiscountAmount    float64             `json:"discount_amount" validate:"required,gt=0"`
	MinOrderAmount    float64             `json:"min_order_amount" validate:"gte=0"`
	MaxDiscountAmount *float64            `json:"max_discount_amount,omitempty" validate:"omitempty,gt=0"`
	ExpiresAt         time.Time           `json:"expires_at" validate:"required"`
	UsageLimit        int                 `json:"usage_limit" validate:"omitempty,gt=0"`
}

type UpdateCouponRequest struct {
	DiscountType      models.DiscountType `json:"discount_type,omitempty" validate:"omitempty,oneof=percentage fixed"`
	DiscountAmount    *float64            `json:"discount_amount,omitempty" validate:"omitempty,gt=0"`
	MinOrderAmount    *float64            `json:"min_order_amount,omitempty" validate:"omitempty,gte=0"`
	MaxDiscountAmount *float64            `json:"max_discount_amount,omitempty" validate:"omitempty,gt=0"`
	ExpiresAt         *time.Time          `json:"expires_at,omitempty"`
	UsageLimit        *int                `json:"usage_limit,omitempty" validate:"omitempty,gt=0"`
}

func NewCouponService(db *gorm.DB) *CouponService {
	return &CouponService{db: db}
}

// Apply validates a coupon against expiry, usage limit and minimum order
// amount, computes the discount, and consumes one use. The usage increment is
// a guarded conditional update: the limit is re-checked at write time, so
// concurrent redemptions of a near-limit code cannot overrun it.
func (s *CouponService) Apply(tx *gorm.DB, code string, subtotal float64) (*models.Coupon, float64, error) {
	if tx == nil {
		tx = s.db
	}

	var coupon models.Coupon
	if err := tx.Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrCouponNotFound
		}
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	if coupon.ExpiresAt.Before(time.Now()) {
		return nil, 0, ErrCouponExpired
	}
	if coupon.UsedCount >= coupon.UsageLimit {
		return nil, 0, ErrCouponUsageLimitReached
	}
	if subtotal < coupon.MinOrderAmount {
		return nil, 0, ErrCouponMinimumNotMet
	}

	discount := coupon.DiscountAmount
	if coupon.DiscountType == models.DiscountTypePercentage {
		discount = coupon.DiscountAmount / 100 * subtotal
		if coupon.MaxDiscountAmount != nil && discount > *coupon.MaxDiscountAmount {
			discount = *coupon.MaxDiscountAmount
		}
	}

	res := tx.Model(&models.Coupon{}).
		Where("id = ? AND used_count < usage_limit", coupon.ID).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return nil, 0, fmt.Errorf("failed to consume coupon: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, 0, ErrCouponUsageLimitReached
	}
	coupon.UsedCount++

	return &coupon, discount, nil
}

func (s *CouponService) CreateCoupon(req *CreateCouponRequest) (*models.Coupon, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))

	var existing models.Coupon
	if err := s.db.Where("code = ?", code).First(&existing).Error; err == nil {
		return nil, ErrCouponExists
	}

	usageLimit := req.UsageLimit
	if usageLimit == 0 {
		usageLimit = 1
	}

	coupon := &models.Coupon{
		Code:              code,
		DiscountType:      req.DiscountType,
		DiscountAmount:    req.DiscountAmount,
		MinOrderAmount:    req.MinOrderAmount,
		MaxDiscountAmount: req.MaxDiscountAmount,
		ExpiresAt:         req.ExpiresAt,
		UsageLimit:        usageLimit,
	}

	if err := s.db.Create(coupon).Error; err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}

	return coupon, nil
}

// GetCouponByCode is the customer-facing lookup. It validates expiry and usage
// limit so the storefront can reject a dead code before checkout.
func (s *CouponService) GetCouponByCode(code string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := s.db.Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if coupon.ExpiresAt.Before(time.Now()) {
		return nil, ErrCouponExpired
	}
	if coupon.UsedCount >= coupon.UsageLimit {
		return nil, ErrCouponUsageLimitReached
	}

	return &coupon, nil
}

func (s *CouponService) ListCoupons() ([]models.Coupon, error) {
	var coupons []models.Coupon
	if err := s.db.Order("created_at DESC").Find(&coupons).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch coupons: %w", err)
	}
	return coupons, nil
}

func (s *CouponService) UpdateCoupon(id uuid.UUID, req *UpdateCouponRequest) (*models.Coupon, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var coupon models.Coupon
	if err := s.db.First(&coupon, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := make(map[string]interface{})
	if req.DiscountType != "" {
		updates["discount_type"] = req.DiscountType
	}
	if req.DiscountAmount != nil {
		updates["discount_amount"] = *req.DiscountAmount
	}
	if req.MinOrderAmount != nil {
		updates["min_order_amount"] = *req.MinOrderAmount
	}
	if req.MaxDiscountAmount != nil {
		updates["max_discount_amount"] = *req.MaxDiscountAmount
	}
	if req.ExpiresAt != nil {
		updates["expires_at"] = *req.ExpiresAt
	}
	if req.UsageLimit != nil {
		updates["usage_limit"] = *req.UsageLimit
	}

	if len(updates) > 0 {
		if err := s.db.Model(&coupon).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update coupon: %w", err)
		}
	}

	return &coupon, nil
}

func (s *CouponService) DeleteCoupon(id uuid.UUID) error {
	var coupon models.Coupon
	if err := s.db.First(&coupon, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCouponNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	if err := s.db.Delete(&coupon).Error; err != nil {
		return fmt.Errorf("failed to delete coupon: %w", err)
	}
	return nil
}
