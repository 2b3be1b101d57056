// internal/services/testutil_test.go
package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/velora/velora-backend/internal/config"
	"github.com/velora/velora-backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// In-memory sqlite is per-connection; keep the pool at one.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Address{},
		&models.Category{},
		&models.Product{},
		&models.Review{},
		&models.Cart{},
		&models.CartItem{},
		&models.Coupon{},
		&models.DeliveryPricing{},
		&models.PaymentMethod{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
	))

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
		Payment: config.PaymentConfig{
			WebhookSecret: "test-webhook-secret",
		},
	}
}

func createTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := &models.User{
		Name:  "Test Customer",
		Email: uuid.NewString() + "@example.com",
		Role:  models.UserRoleCustomer,
	}
	require.NoError(t, user.SetPassword("Password1!"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestCategory(t *testing.T, db *gorm.DB) *models.Category {
	t.Helper()

	suffix := uuid.NewString()[:8]
	category := &models.Category{
		Name: "Category " + suffix,
		Slug: "category-" + suffix,
	}
	require.NoError(t, db.Create(category).Error)
	return category
}

func createTestProduct(t *testing.T, db *gorm.DB, basePrice float64, quantity int) *models.Product {
	t.Helper()

	category := createTestCategory(t, db)
	product := &models.Product{
		Name:       "Product " + uuid.NewString()[:8],
		Slug:       "product-" + uuid.NewString()[:8],
		BasePrice:  basePrice,
		Quantity:   quantity,
		CategoryID: category.ID,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func createTestDelivery(t *testing.T, db *gorm.DB, name string, price float64) *models.DeliveryPricing {
	t.Helper()

	days := 3
	pricing := &models.DeliveryPricing{
		Name:          name,
		Region:        "National",
		Price:         price,
		EstimatedDays: &days,
	}
	require.NoError(t, db.Create(pricing).Error)
	return pricing
}

func seedCODMethod(t *testing.T, db *gorm.DB) {
	t.Helper()

	require.NoError(t, db.Create(&models.PaymentMethod{
		Name:     models.CODMethodName,
		Type:     models.PaymentMethodTypeOffline,
		IsActive: true,
	}).Error)
}

func createTestCoupon(t *testing.T, db *gorm.DB, code string, discountType models.DiscountType, amount float64, limit int) *models.Coupon {
	t.Helper()

	coupon := &models.Coupon{
		Code:           code,
		DiscountType:   discountType,
		DiscountAmount: amount,
		ExpiresAt:      time.Now().Add(24 * time.Hour),
		UsageLimit:     limit,
	}
	require.NoError(t, db.Create(coupon).Error)
	return coupon
}

func addToCart(t *testing.T, db *gorm.DB, userID uuid.UUID, product *models.Product, quantity int) {
	t.Helper()

	carts := NewCartService(db)
	_, err := carts.AddItem(userID, &AddCartItemRequest{
		ProductID: product.ID,
		Quantity:  quantity,
	})
	require.NoError(t, err)
}

func checkoutRequest(coupon string) *CreateOrderRequest {
	return &CreateOrderRequest{
		DeliveryMethod: "Standard",
		PaymentMethod:  models.CODMethodName,
		CouponCode:     coupon,
		Address: &AddressInput{
			AddressLine1: "1 Main St",
			City:         "Springfield",
			PostalCode:   "12345",
			Country:      "US",
			Phone:        "5550100",
		},
	}
}
