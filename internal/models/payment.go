// internal/models/payment.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// CODMethodName marks cash-on-delivery payments. COD needs no registered
// payment method and is recorded pre-verified, since no money moves at
// creation time.
const CODMethodName = "COD"

type PaymentMethod struct {
	BaseModel
	Name     string            `json:"name" gorm:"uniqueIndex;size:100;not null"`
	Type     PaymentMethodType `json:"type" gorm:"type:varchar(10);not null"`
	Details  JSONB             `json:"details,omitempty" gorm:"type:jsonb"`
	IsActive bool              `json:"is_active" gorm:"default:true"`
}

type Payment struct {
	BaseModel
	OrderID           uuid.UUID     `json:"order_id" gorm:"type:uuid;uniqueIndex;not null"`
	CustomerID        uuid.UUID     `json:"customer_id" gorm:"type:uuid;not null;index:idx_payments_customer_status"`
	MethodID          *uuid.UUID    `json:"method_id,omitempty" gorm:"type:uuid"`
	PaymentMethodName string        `json:"payment_method_name" gorm:"size:100;not null"`
	Status            PaymentStatus `json:"status" gorm:"type:varchar(20);default:'Pending';index:idx_payments_customer_status"`
	TransactionID     string        `json:"transaction_id,omitempty" gorm:"size:255"`
	PaymentDate       *time.Time    `json:"payment_date,omitempty"`
	Verified          bool          `json:"verified" gorm:"default:false"`
	Metadata          JSONB         `json:"metadata,omitempty" gorm:"type:jsonb"`

	// Relationships
	Method *PaymentMethod `json:"method,omitempty" gorm:"foreignKey:MethodID"`
}

// CanTransitionTo enforces the legal payment lifecycle:
// Pending -> Completed | Failed, Completed -> Refunded.
// Same-status writes are treated as no-ops by the service layer.
func (p *Payment) CanTransitionTo(next PaymentStatus) bool {
	switch p.Status {
	case PaymentStatusPending:
		return next == PaymentStatusCompleted || next == PaymentStatusFailed
	case PaymentStatusCompleted:
		return next == PaymentStatusRefunded
	}
	return false
}
