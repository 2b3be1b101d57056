// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/velora/velora-backend/internal/config"
	"github.com/velora/velora-backend/internal/handlers"
	"github.com/velora/velora-backend/internal/middleware"
	"github.com/velora/velora-backend/internal/services"
)

// Setup wires services, handlers and routes onto a gin engine.
func Setup(db *gorm.DB, cfg *config.Config) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	authService := services.NewAuthService(db, cfg)
	userService := services.NewUserService(db)
	productService := services.NewProductService(db)
	categoryService := services.NewCategoryService(db)
	reviewService := services.NewReviewService(db)
	cartService := services.NewCartService(db)
	couponService := services.NewCouponService(db)
	deliveryService := services.NewDeliveryService(db)
	methodService := services.NewPaymentMethodService(db)
	paymentService := services.NewPaymentService(db, cfg)
	orderService := services.NewOrderService(db, couponService, paymentService, cartService)

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	productHandler := handlers.NewProductHandler(productService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	cartHandler := handlers.NewCartHandler(cartService)
	couponHandler := handlers.NewCouponHandler(couponService)
	deliveryHandler := handlers.NewDeliveryHandler(deliveryService)
	methodHandler := handlers.NewPaymentMethodHandler(methodService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	orderHandler := handlers.NewOrderHandler(orderService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.RateLimit(20, 40))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")

	// Public
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
	}

	v1.GET("/products", productHandler.ListProducts)
	v1.GET("/products/:id", productHandler.GetProduct)
	v1.GET("/products/slug/:slug", productHandler.GetProductBySlug)
	v1.GET("/products/:id/reviews", reviewHandler.ListProductReviews)
	v1.GET("/products/:id/recommendations", productHandler.GetRecommendations)
	v1.GET("/categories", categoryHandler.ListCategories)
	v1.GET("/categories/:id", categoryHandler.GetCategory)
	v1.GET("/delivery-pricing", deliveryHandler.ListPricings)
	v1.GET("/payment-methods", middleware.OptionalAuth(), methodHandler.ListMethods)
	v1.POST("/payments/webhook", paymentHandler.Webhook)

	// Authenticated
	user := v1.Group("")
	user.Use(middleware.AuthRequired())
	{
		user.GET("/me", userHandler.GetProfile)
		user.PUT("/me", userHandler.UpdateProfile)

		user.GET("/me/addresses", userHandler.ListAddresses)
		user.POST("/me/addresses", userHandler.AddAddress)
		user.PUT("/me/addresses/:id", userHandler.UpdateAddress)
		user.DELETE("/me/addresses/:id", userHandler.DeleteAddress)

		user.GET("/cart", cartHandler.GetCart)
		user.POST("/cart/items", cartHandler.AddItem)
		user.PUT("/cart/items/:id", cartHandler.UpdateItem)
		user.DELETE("/cart/items/:id", cartHandler.RemoveItem)
		user.DELETE("/cart", cartHandler.ClearCart)

		user.GET("/coupons/:code", couponHandler.ValidateCoupon)

		user.POST("/orders", orderHandler.CreateOrder)
		user.GET("/orders", orderHandler.ListMyOrders)
		user.GET("/orders/:id", orderHandler.GetMyOrder)
		user.POST("/orders/:id/cancel", orderHandler.CancelMyOrder)

		user.POST("/products/:id/reviews", reviewHandler.CreateReview)
		user.PUT("/reviews/:id", reviewHandler.UpdateReview)
		user.DELETE("/reviews/:id", reviewHandler.DeleteReview)
	}

	// Admin
	admin := v1.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
	{
		admin.POST("/products", productHandler.CreateProduct)
		admin.PUT("/products/:id", productHandler.UpdateProduct)
		admin.DELETE("/products/:id", productHandler.DeleteProduct)
		admin.DELETE("/products/:id/discount", productHandler.RemoveDiscount)

		admin.POST("/categories", categoryHandler.CreateCategory)
		admin.PUT("/categories/:id", categoryHandler.UpdateCategory)
		admin.DELETE("/categories/:id", categoryHandler.DeleteCategory)

		admin.GET("/coupons", couponHandler.ListCoupons)
		admin.POST("/coupons", couponHandler.CreateCoupon)
		admin.PUT("/coupons/:id", couponHandler.UpdateCoupon)
		admin.DELETE("/coupons/:id", couponHandler.DeleteCoupon)

		admin.POST("/delivery-pricing", deliveryHandler.CreatePricing)
		admin.GET("/delivery-pricing/:id", deliveryHandler.GetPricing)
		admin.PUT("/delivery-pricing/:id", deliveryHandler.UpdatePricing)
		admin.DELETE("/delivery-pricing/:id", deliveryHandler.DeletePricing)

		admin.GET("/payment-methods/:id", methodHandler.GetMethod)
		admin.POST("/payment-methods", methodHandler.CreateMethod)
		admin.PUT("/payment-methods/:id", methodHandler.UpdateMethod)
		admin.POST("/payment-methods/:id/deactivate", methodHandler.DeactivateMethod)
		admin.DELETE("/payment-methods/:id", methodHandler.DeleteMethod)

		admin.GET("/orders", orderHandler.ListOrders)
		admin.GET("/orders/:id", orderHandler.GetOrder)
		admin.PATCH("/orders/:id/status", orderHandler.UpdateOrderStatus)
		admin.POST("/orders/:id/cancel", orderHandler.CancelOrder)
		admin.DELETE("/orders/:id", orderHandler.DeleteOrder)

		admin.GET("/payments", paymentHandler.ListPayments)
		admin.GET("/payments/:id", paymentHandler.GetPayment)
		admin.PATCH("/payments/:id/status", paymentHandler.UpdatePaymentStatus)

		admin.GET("/customers", userHandler.ListCustomers)
		admin.GET("/customers/:id", userHandler.GetCustomer)
	}

	return r
}
