// internal/services/coupon_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velora/velora-backend/internal/models"
)

func TestApplyCouponPercentage(t *testing.T) {
	db := newTestDB(t)
	svc := NewCouponService(db)
	createTestCoupon(t, db, "SAVE10", models.DiscountTypePercentage, 10, 100)

	coupon, discount, err := svc.Apply(nil, "save10", 120)
	require.NoError(t, err)
	assert.InDelta(t, 12.0, discount, 1e-9)
	assert.Equal(t, 1, coupon.UsedCount)

	var stored models.Coupon
	require.NoError(t, db.Where("code = ?", "SAVE10").First(&stored).Error)
	assert.Equal(t, 1, stored.UsedCount)
}

func TestApplyCouponPercentageCapped(t *testing.T) {
	db := newTestDB(t)
	svc := NewCouponService(db)

	cap := 5.0
	coupon := createTestCoupon(t, db, "CAPPED", models.DiscountTypePercentage, 10, 100)
	require.NoError(t, db.Model(coupon).UpdateColumn("max_discount_amount", cap).Error)

	_, discount, err := svc.Apply(nil, "CAPPED", 200)
	require.NoError(t, err)
	assert.Equal(t, 5.0, discount)
}

func TestApplyCouponFixed(t *testing.T) {
	db := newTestDB(t)
	svc := NewCouponService(db)
	createTestCoupon(t, db, "FLAT15", models.DiscountTypeFixed, 15, 100)

	_, discount, err := svc.Apply(nil, "FLAT15", 50)
	require.NoError(t, err)
	assert.Equal(t, 15.0, discount)
}

func TestApplyCouponExpired(t *testing.T) {
	db := newTestDB(t)
	svc := NewCouponService(db)

	coupon := createTestCoupon(t, db, "OLD", models.DiscountTypeFixed, 5, 100)
	require.NoError(t, db.Model(coupon).UpdateColumn("expires_at", time.Now().Add(-time.Hour)).Error)

	_, _, err := svc.Apply(nil, "OLD", 100)
	assert.ErrorIs(t, err, ErrCouponExpired)
}

func TestApplyCouponMinimumNotMet(t *testing.T) {
	db := newTestDB(t)
	svc := NewCouponService(db)

	coupon := createTestCoupon(t, db, "BIGSPEND", models.DiscountTypeFixed, 5, 100)
	require.NoError(t, db.Model(coupon).UpdateColumn("min_order_amount", 50).Error)

	_, _, err := svc.Apply(nil, "BIGSPEND", 40)
	assert.ErrorIs(t, err, ErrCouponMinimumNotMet)
}

func TestApplyCouponUsageLimit(t *testing.T) {
	db := newTestDB(t)
	svc := NewCouponService(db)
	createTestCoupon(t, db, "ONCE", models.DiscountTypeFixed, 5, 1)

	_, _, err := svc.Apply(nil, "ONCE", 100)
	require.NoError(t, err)

	_, _, err = svc.Apply(nil, "ONCE", 100)
	assert.ErrorIs(t, err, ErrCouponUsageLimitReached)

	// The counter never overruns the limit.
	var stored models.Coupon
	require.NoError(t, db.Where("code = ?", "ONCE").First(&stored).Error)
	assert.Equal(t, 1, stored.UsedCount)
}

func TestApplyCouponNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewCouponService(db)

	_, _, err := svc.Apply(nil, "NOPE", 100)
	assert.ErrorIs(t, err, ErrCouponNotFound)
}

func TestCreateCouponNormalizesAndRejectsDuplicates(t *testing.T) {
	db := newTestDB(t)
	svc := NewCouponService(db)

	created, err := svc.CreateCoupon(&CreateCouponRequest{
		Code:           "summer20",
		DiscountType:   models.DiscountTypePercentage,
		DiscountAmount: 20,
		ExpiresAt:      time.Now().Add(48 * time.Hour),
		UsageLimit:     10,
	})
	require.NoError(t, err)
	assert.Equal(t, "SUMMER20", created.Code)

	_, err = svc.CreateCoupon(&CreateCouponRequest{
		Code:           "SUMMER20",
		DiscountType:   models.DiscountTypeFixed,
		DiscountAmount: 5,
		ExpiresAt:      time.Now().Add(48 * time.Hour),
	})
	assert.ErrorIs(t, err, ErrCouponExists)
}
