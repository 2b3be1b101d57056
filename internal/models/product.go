// internal/models/product.go
package models

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// VariationOption is one selectable value of a product variation, e.g. "Red"
// for "Color". Options carry their own stock and price modifier.
type VariationOption struct {
	Value         string  `json:"value"`
	PriceModifier float64 `json:"price_modifier"`
	Quantity      int     `json:"quantity"`
}

// Variation is a named product dimension with selectable options.
type Variation struct {
	Name    string            `json:"name"`
	Options []VariationOption `json:"options"`
}

type VariationList []Variation

func (v VariationList) Value() (driver.Value, error) { return jsonbValue([]Variation(v)) }
func (v *VariationList) Scan(src interface{}) error  { return jsonbScan(src, v) }

// Option looks up an option by variation name and option value.
func (v VariationList) Option(name, value string) *VariationOption {
	for i := range v {
		if v[i].Name != name {
			continue
		}
		for j := range v[i].Options {
			if v[i].Options[j].Value == value {
				return &v[i].Options[j]
			}
		}
	}
	return nil
}

// SelectedOption is the option a customer picked for one variation dimension.
type SelectedOption struct {
	Value         string  `json:"value"`
	PriceModifier float64 `json:"price_modifier"`
}

type SelectedVariation struct {
	Name   string         `json:"name"`
	Option SelectedOption `json:"option"`
}

// SelectionList is a customer's variation selection, stored with cart items and
// snapshotted into order items.
type SelectionList []SelectedVariation

func (s SelectionList) Value() (driver.Value, error) { return jsonbValue([]SelectedVariation(s)) }
func (s *SelectionList) Scan(src interface{}) error  { return jsonbScan(src, s) }

// Discount is a time-windowed price reduction on the base price.
type Discount struct {
	Type        DiscountType `json:"type"`
	Value       float64      `json:"value"`
	StartDate   time.Time    `json:"start_date"`
	EndDate     time.Time    `json:"end_date"`
	Description string       `json:"description,omitempty"`
}

type DiscountColumn struct {
	Discount
	Set bool `json:"-"`
}

func (d DiscountColumn) Value() (driver.Value, error) {
	if !d.Set {
		return nil, nil
	}
	return jsonbValue(d.Discount)
}

func (d *DiscountColumn) Scan(src interface{}) error {
	if src == nil {
		d.Set = false
		return nil
	}
	d.Set = true
	return jsonbScan(src, &d.Discount)
}

type Product struct {
	BaseModel
	Name        string         `json:"name" gorm:"size:255;not null"`
	Slug        string         `json:"slug" gorm:"uniqueIndex;size:255"`
	Description string         `json:"description" gorm:"type:text"`
	BasePrice   float64        `json:"base_price" gorm:"type:decimal(10,2);not null"`
	Quantity    int            `json:"quantity" gorm:"not null;default:0"`
	Images      pq.StringArray `json:"images" gorm:"type:text[]"`
	CategoryID  uuid.UUID      `json:"category_id" gorm:"type:uuid;not null;index"`
	Variations  VariationList  `json:"variations" gorm:"type:jsonb"`
	Tags        pq.StringArray `json:"tags" gorm:"type:text[]"`
	TotalSales  int            `json:"total_sales" gorm:"default:0"`
	Discount    DiscountColumn `json:"discount,omitempty" gorm:"type:jsonb"`

	AverageRating float64 `json:"average_rating" gorm:"type:decimal(3,2);default:0"`
	NumReviews    int     `json:"num_reviews" gorm:"default:0"`

	// Relationships
	Category Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Reviews  []Review `json:"reviews,omitempty" gorm:"foreignKey:ProductID"`
}

// IsDiscountActive reports whether the discount window contains now. Derived at
// read time, never stored.
func (p *Product) IsDiscountActive(now time.Time) bool {
	if !p.Discount.Set {
		return false
	}
	return !p.Discount.StartDate.After(now) && !p.Discount.EndDate.Before(now)
}

// CurrentPrice returns the discounted base price, floored at zero. Variation
// modifiers are applied on top by the pricing resolver.
func (p *Product) CurrentPrice(now time.Time) float64 {
	if p.IsDiscountActive(now) {
		// The promoted Value field is shadowed by the column type's
		// driver.Valuer method, so go through the embedded struct.
		d := p.Discount.Discount
		switch d.Type {
		case DiscountTypePercentage:
			return p.BasePrice * (1 - d.Value/100)
		case DiscountTypeFixed:
			if p.BasePrice-d.Value < 0 {
				return 0
			}
			return p.BasePrice - d.Value
		}
	}
	return p.BasePrice
}
