// internal/services/order_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/velora/velora-backend/internal/models"
	"github.com/velora/velora-backend/internal/utils"
)

var (
	ErrOrderNotFound          = errors.New("order not found")
	ErrOrderNotCancellable    = errors.New("order can no longer be cancelled")
	ErrInvalidOrderTransition = errors.New("invalid order status transition")
	ErrDeliveryMethodNotFound = errors.New("delivery method not found")
	ErrAddressNotFound        = errors.New("address not found")
)

type OrderService struct {
	db       *gorm.DB
	coupons  *CouponService
	payments *PaymentService
	carts    *CartService
}

type AddressInput struct {
	Label        string `json:"label,omitempty"`
	AddressLine1 string `json:"address_line1" validate:"required"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state,omitempty"`
	PostalCode   string `json:"postal_code" validate:"required"`
	Country      string `json:"country" validate:"required"`
	Phone        string `json:"phone" validate:"required"`
}

type CreateOrderRequest struct {
	DeliveryMethod string        `json:"delivery_method" validate:"required"`
	PaymentMethod  string        `json:"payment_method" validate:"required"`
	AddressID      *uuid.UUID    `json:"address_id,omitempty"`
	Address        *AddressInput `json:"address,omitempty"`
	CouponCode     string        `json:"coupon_code,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

func NewOrderService(db *gorm.DB, coupons *CouponService, payments *PaymentService, carts *CartService) *OrderService {
	return &OrderService{db: db, coupons: coupons, payments: payments, carts: carts}
}

// CreateOrder turns the user's cart into an order. Everything runs in one
// transaction: item snapshots, stock reservation, coupon consumption, payment
// creation, user aggregates and the cart clear. Any failure, including a
// gateway error, rolls the whole checkout back, so stock and coupon counters
// never drift from the orders that actually exist.
func (s *OrderService) CreateOrder(userID uuid.UUID, req *CreateOrderRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if req.AddressID == nil && req.Address == nil {
		return nil, ErrAddressNotFound
	}

	var order *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.Preload("Items.Product").Where("user_id = ?", userID).First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCartEmpty
			}
			return fmt.Errorf("database error: %w", err)
		}
		if len(cart.Items) == 0 {
			return ErrCartEmpty
		}

		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		delivery, err := s.resolveDelivery(tx, req.DeliveryMethod)
		if err != nil {
			return err
		}

		address, err := s.resolveAddress(tx, userID, req)
		if err != nil {
			return err
		}

		now := time.Now()
		var items []models.OrderItem
		subtotal := 0.0

		for _, line := range cart.Items {
			if line.Product == nil {
				return ErrProductNotFound
			}

			if err := ReserveStock(tx, line.ProductID, line.Quantity); err != nil {
				return err
			}
			if err := ReserveVariationStock(tx, line.ProductID, line.Variations, line.Quantity); err != nil {
				return err
			}

			unit := UnitPrice(line.Product, line.Variations, now)
			items = append(items, models.OrderItem{
				ProductID:   line.ProductID,
				ProductName: line.Product.Name,
				Variations:  line.Variations,
				Quantity:    line.Quantity,
				Price:       unit,
			})
			subtotal += unit * float64(line.Quantity)
		}

		// The coupon discounts the delivery-inclusive total, and a fixed
		// coupon larger than the total clamps to zero rather than going
		// negative.
		total := subtotal + delivery.Price

		var couponApplied models.CouponSnapshotColumn
		if req.CouponCode != "" {
			coupon, discount, err := s.coupons.Apply(tx, req.CouponCode, total)
			if err != nil {
				return err
			}
			total -= discount
			if total < 0 {
				total = 0
			}
			couponApplied = models.CouponSnapshotColumn{
				Set: true,
				CouponSnapshot: models.CouponSnapshot{
					CouponID:       coupon.ID,
					Code:           coupon.Code,
					DiscountType:   coupon.DiscountType,
					DiscountAmount: coupon.DiscountAmount,
				},
			}
		}

		paymentType := models.PaymentTypeOnline
		if req.PaymentMethod == models.CODMethodName {
			paymentType = models.PaymentTypeOffline
		}

		order = &models.Order{
			CustomerID:  userID,
			Items:       items,
			TotalAmount: total,
			Delivery: models.DeliverySnapshot{
				Method:        delivery.Name,
				Price:         delivery.Price,
				EstimatedDays: delivery.EstimatedDays,
			},
			Status:        models.OrderStatusPending,
			PaymentType:   paymentType,
			PaymentStatus: models.PaymentStatusPending,
			DeliveryDetails: models.DeliveryDetails{
				Address: *address,
				Method:  delivery.Name,
			},
			CouponApplied: couponApplied,
		}
		order.AppendStatus(models.OrderStatusPending)

		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		payment, err := s.payments.CreateForOrder(tx, order, req.PaymentMethod, total)
		if err != nil {
			return err
		}
		order.PaymentID = &payment.ID
		if err := tx.Model(order).UpdateColumn("payment_id", payment.ID).Error; err != nil {
			return fmt.Errorf("failed to link payment: %w", err)
		}

		if err := tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"total_orders":    gorm.Expr("total_orders + 1"),
			"total_purchases": gorm.Expr("total_purchases + ?", total),
		}).Error; err != nil {
			return fmt.Errorf("failed to update user aggregates: %w", err)
		}

		return s.carts.ClearCart(tx, userID)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"order_id":    order.ID,
		"customer_id": userID,
		"total":       order.TotalAmount,
	}).Info("Order created")

	return order, nil
}

// CancelOrder is the single cancellation path for both customers and admins.
// Only Pending and Processing orders qualify. A completed payment is refunded,
// a pending one is marked failed, and the customer's aggregates are adjusted.
// Stock is not returned; cancelled quantities are handled by restocking
// workflows outside the order lifecycle.
func (s *OrderService) CancelOrder(orderID uuid.UUID, customerID *uuid.UUID, reason string) (*models.Order, error) {
	var order models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		query := tx.Preload("Items")
		if customerID != nil {
			query = query.Where("customer_id = ?", *customerID)
		}
		if err := query.First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if !order.Cancellable() {
			return ErrOrderNotCancellable
		}

		if order.PaymentID != nil {
			var payment models.Payment
			if err := tx.First(&payment, "id = ?", *order.PaymentID).Error; err == nil {
				switch payment.Status {
				case models.PaymentStatusCompleted:
					if _, err := s.payments.UpdateStatusTx(tx, payment.ID, models.PaymentStatusRefunded, ""); err != nil {
						return err
					}
					order.PaymentStatus = models.PaymentStatusRefunded
				case models.PaymentStatusPending:
					if _, err := s.payments.UpdateStatusTx(tx, payment.ID, models.PaymentStatusFailed, ""); err != nil {
						return err
					}
					order.PaymentStatus = models.PaymentStatusFailed
				}
			}
		}

		order.Status = models.OrderStatusCancelled
		order.CancellationReason = reason
		order.AppendStatus(models.OrderStatusCancelled)

		if err := tx.Model(&order).Updates(map[string]interface{}{
			"status":              order.Status,
			"status_history":      order.StatusHistory,
			"cancellation_reason": order.CancellationReason,
		}).Error; err != nil {
			return fmt.Errorf("failed to cancel order: %w", err)
		}

		var user models.User
		if err := tx.First(&user, "id = ?", order.CustomerID).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		purchases := user.TotalPurchases - order.TotalAmount
		if purchases < 0 {
			purchases = 0
		}
		if err := tx.Model(&user).Updates(map[string]interface{}{
			"total_purchases":  purchases,
			"cancelled_orders": gorm.Expr("cancelled_orders + 1"),
		}).Error; err != nil {
			return fmt.Errorf("failed to update user aggregates: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"order_id": order.ID,
		"reason":   reason,
	}).Info("Order cancelled")

	return &order, nil
}

// UpdateStatus advances an order along Pending -> Processing -> Shipped ->
// Delivered. Cancellation goes through CancelOrder only, and terminal states
// never move again. Delivering a cash-on-delivery order completes its payment.
func (s *OrderService) UpdateStatus(orderID uuid.UUID, next models.OrderStatus) (*models.Order, error) {
	if !next.Valid() || next == models.OrderStatusCancelled {
		return nil, ErrInvalidOrderTransition
	}

	var order models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if order.Status == next {
			return nil
		}
		if !orderRankAdvances(order.Status, next) {
			return ErrInvalidOrderTransition
		}

		order.Status = next
		order.AppendStatus(next)
		if err := tx.Model(&order).Updates(map[string]interface{}{
			"status":         order.Status,
			"status_history": order.StatusHistory,
		}).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		if next == models.OrderStatusDelivered &&
			order.PaymentType == models.PaymentTypeOffline &&
			order.PaymentID != nil &&
			order.PaymentStatus == models.PaymentStatusPending {
			if _, err := s.payments.UpdateStatusTx(tx, *order.PaymentID, models.PaymentStatusCompleted, ""); err != nil {
				return err
			}
			order.PaymentStatus = models.PaymentStatusCompleted
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (s *OrderService) GetOrder(orderID uuid.UUID, customerID *uuid.UUID) (*models.Order, error) {
	var order models.Order
	query := s.db.Preload("Items").Preload("Payment")
	if customerID != nil {
		query = query.Where("customer_id = ?", *customerID)
	}
	if err := query.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &order, nil
}

// OrderFilters narrows the admin order listing beyond the shared pagination
// params.
type OrderFilters struct {
	PaymentStatus string
}

func (s *OrderService) ListUserOrders(userID uuid.UUID, params utils.PaginationParams) (*utils.PaginationResult, error) {
	return s.listOrders(s.db.Where("customer_id = ?", userID), params, OrderFilters{})
}

func (s *OrderService) ListOrders(params utils.PaginationParams, filters OrderFilters) (*utils.PaginationResult, error) {
	return s.listOrders(s.db, params, filters)
}

func (s *OrderService) listOrders(base *gorm.DB, params utils.PaginationParams, filters OrderFilters) (*utils.PaginationResult, error) {
	var orders []models.Order
	var total int64

	query := base.Model(&models.Order{})
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if filters.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filters.PaymentStatus)
	}
	if params.Search != "" {
		// Search matches the customer's email.
		customers := s.db.Model(&models.User{}).Select("id").
			Where("email LIKE ?", "%"+params.Search+"%")
		query = query.Where("customer_id IN (?)", customers)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "total_amount", "status"})
	query = utils.ApplyPagination(query, params)

	if err := query.Preload("Items").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}

	result := utils.CreatePaginationResult(orders, total, params)
	return &result, nil
}

// DeleteOrder removes an order with its items and payment record. Admin only;
// meant for purging test and abandoned orders, not for cancellation.
func (s *OrderService) DeleteOrder(orderID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete order items: %w", err)
		}
		if err := tx.Where("order_id = ?", orderID).Delete(&models.Payment{}).Error; err != nil {
			return fmt.Errorf("failed to delete payment: %w", err)
		}
		if err := tx.Delete(&order).Error; err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}
		return nil
	})
}

func (s *OrderService) resolveDelivery(tx *gorm.DB, method string) (*models.DeliveryPricing, error) {
	var delivery models.DeliveryPricing
	if err := tx.Where("name = ?", method).First(&delivery).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeliveryMethodNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &delivery, nil
}

func (s *OrderService) resolveAddress(tx *gorm.DB, userID uuid.UUID, req *CreateOrderRequest) (*models.AddressSnapshot, error) {
	if req.AddressID != nil {
		var addr models.Address
		if err := tx.Where("id = ? AND user_id = ?", *req.AddressID, userID).First(&addr).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAddressNotFound
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		return &models.AddressSnapshot{
			Label:        addr.Label,
			AddressLine1: addr.AddressLine1,
			AddressLine2: addr.AddressLine2,
			City:         addr.City,
			State:        addr.State,
			PostalCode:   addr.PostalCode,
			Country:      addr.Country,
			Phone:        addr.Phone,
		}, nil
	}

	in := req.Address
	if err := utils.ValidateStruct(in); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &models.AddressSnapshot{
		Label:        in.Label,
		AddressLine1: in.AddressLine1,
		AddressLine2: in.AddressLine2,
		City:         in.City,
		State:        in.State,
		PostalCode:   in.PostalCode,
		Country:      in.Country,
		Phone:        in.Phone,
	}, nil
}

// orderRankAdvances reports whether next is strictly later in the fulfilment
// sequence than current.
func orderRankAdvances(current, next models.OrderStatus) bool {
	rank := map[models.OrderStatus]int{
		models.OrderStatusPending:    0,
		models.OrderStatusProcessing: 1,
		models.OrderStatusShipped:    2,
		models.OrderStatusDelivered:  3,
	}
	c, okC := rank[current]
	n, okN := rank[next]
	return okC && okN && n > c
}
