// internal/models/cart.go
package models

import "github.com/google/uuid"

// Cart is the per-user mutable item collection. One cart per user, created
// lazily on first access and emptied on successful checkout.
type Cart struct {
	BaseModel
	UserID uuid.UUID  `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	Items  []CartItem `json:"items" gorm:"foreignKey:CartID"`
}

type CartItem struct {
	BaseModel
	CartID     uuid.UUID     `json:"cart_id" gorm:"type:uuid;not null;index"`
	ProductID  uuid.UUID     `json:"product_id" gorm:"type:uuid;not null"`
	Variations SelectionList `json:"variations" gorm:"type:jsonb"`
	Quantity   int           `json:"quantity" gorm:"not null;default:1"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
