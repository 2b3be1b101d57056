// internal/models/coupon.go
package models

import "time"

type Coupon struct {
	BaseModel
	Code              string       `json:"code" gorm:"uniqueIndex;size:50;not null"`
	DiscountType      DiscountType `json:"discount_type" gorm:"type:varchar(20);not null"`
	DiscountAmount    float64      `json:"discount_amount" gorm:"type:decimal(10,2);not null"`
	MinOrderAmount    float64      `json:"min_order_amount" gorm:"type:decimal(10,2);default:0"`
	MaxDiscountAmount *float64     `json:"max_discount_amount,omitempty" gorm:"type:decimal(10,2)"`
	ExpiresAt         time.Time    `json:"expires_at" gorm:"not null"`
	UsageLimit        int          `json:"usage_limit" gorm:"default:100"`
	UsedCount         int          `json:"used_count" gorm:"default:0"`
}
