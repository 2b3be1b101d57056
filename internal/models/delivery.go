// internal/models/delivery.go
package models

// DeliveryPricing is admin-managed reference data: a named delivery option
// with a flat price for a region.
type DeliveryPricing struct {
	BaseModel
	Name          string  `json:"name" gorm:"uniqueIndex;size:100;not null"`
	Region        string  `json:"region" gorm:"size:100;not null"`
	Price         float64 `json:"price" gorm:"type:decimal(10,2);not null"`
	EstimatedDays *int    `json:"estimated_days,omitempty"`
}
