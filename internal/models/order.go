// internal/models/order.go
package models

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
)

// OrderItem is an immutable snapshot taken at checkout. Product name, price and
// variation selection are copied, so the order keeps its history even if the
// product is later changed or deleted.
type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID     `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID     `json:"product_id" gorm:"type:uuid;not null"`
	ProductName string        `json:"product_name" gorm:"size:255;not null"`
	Variations  SelectionList `json:"variations" gorm:"type:jsonb"`
	Quantity    int           `json:"quantity" gorm:"not null;default:1"`
	Price       float64       `json:"price" gorm:"type:decimal(10,2);not null"`
}

// DeliverySnapshot is the delivery rule copied into the order at checkout.
type DeliverySnapshot struct {
	Method        string  `json:"method"`
	Price         float64 `json:"price"`
	EstimatedDays *int    `json:"estimated_days,omitempty"`
}

func (d DeliverySnapshot) Value() (driver.Value, error) { return jsonbValue(d) }
func (d *DeliverySnapshot) Scan(src interface{}) error  { return jsonbScan(src, d) }

// AddressSnapshot is the resolved delivery address copied into the order.
type AddressSnapshot struct {
	Label        string `json:"label,omitempty"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state,omitempty"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
	Phone        string `json:"phone"`
}

type DeliveryDetails struct {
	Address AddressSnapshot `json:"address"`
	Method  string          `json:"method"`
}

func (d DeliveryDetails) Value() (driver.Value, error) { return jsonbValue(d) }
func (d *DeliveryDetails) Scan(src interface{}) error  { return jsonbScan(src, d) }

// CouponSnapshot survives even if the coupon itself is deleted later.
type CouponSnapshot struct {
	CouponID       uuid.UUID    `json:"coupon_id"`
	Code           string       `json:"code"`
	DiscountType   DiscountType `json:"discount_type"`
	DiscountAmount float64      `json:"discount_amount"`
}

type CouponSnapshotColumn struct {
	CouponSnapshot
	Set bool `json:"-"`
}

func (c CouponSnapshotColumn) Value() (driver.Value, error) {
	if !c.Set {
		return nil, nil
	}
	return jsonbValue(c.CouponSnapshot)
}

func (c *CouponSnapshotColumn) Scan(src interface{}) error {
	if src == nil {
		c.Set = false
		return nil
	}
	c.Set = true
	return jsonbScan(src, &c.CouponSnapshot)
}

// StatusEntry is one step of the order's append-only audit trail.
type StatusEntry struct {
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
}

type StatusHistory []StatusEntry

func (h StatusHistory) Value() (driver.Value, error) { return jsonbValue([]StatusEntry(h)) }
func (h *StatusHistory) Scan(src interface{}) error  { return jsonbScan(src, h) }

type Order struct {
	BaseModel
	CustomerID         uuid.UUID            `json:"customer_id" gorm:"type:uuid;not null;index:idx_orders_customer_status"`
	Items              []OrderItem          `json:"items" gorm:"foreignKey:OrderID"`
	TotalAmount        float64              `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	Delivery           DeliverySnapshot     `json:"delivery" gorm:"type:jsonb"`
	Status             OrderStatus          `json:"status" gorm:"type:varchar(20);default:'Pending';index:idx_orders_customer_status"`
	StatusHistory      StatusHistory        `json:"status_history" gorm:"type:jsonb"`
	PaymentType        PaymentType          `json:"payment_type" gorm:"type:varchar(10);not null"`
	PaymentStatus      PaymentStatus        `json:"payment_status" gorm:"type:varchar(20);default:'Pending'"`
	DeliveryDetails    DeliveryDetails      `json:"delivery_details" gorm:"type:jsonb"`
	CouponApplied      CouponSnapshotColumn `json:"coupon_applied,omitempty" gorm:"type:jsonb"`
	PaymentID          *uuid.UUID           `json:"payment_id,omitempty" gorm:"type:uuid"`
	CancellationReason string               `json:"cancellation_reason,omitempty" gorm:"type:text"`

	// Relationships
	Customer User     `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Payment  *Payment `json:"payment,omitempty" gorm:"foreignKey:PaymentID"`
}

// AppendStatus records a transition in the audit trail. History is append-only;
// existing entries are never rewritten.
func (o *Order) AppendStatus(status OrderStatus) {
	o.StatusHistory = append(o.StatusHistory, StatusEntry{Status: status, Timestamp: time.Now().UTC()})
}

// Cancellable reports whether the order may still be cancelled.
func (o *Order) Cancellable() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusProcessing
}
