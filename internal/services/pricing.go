// internal/services/pricing.go
package services

import (
	"time"

	"github.com/velora/velora-backend/internal/models"
)

// UnitPrice resolves the effective price of one unit of a product for a given
// variation selection. The discount applies to the base price only; option
// price modifiers are added afterwards. The result is never negative.
func UnitPrice(product *models.Product, selection models.SelectionList, now time.Time) float64 {
	price := product.CurrentPrice(now)

	for _, sel := range selection {
		if opt := product.Variations.Option(sel.Name, sel.Option.Value); opt != nil {
			price += opt.PriceModifier
		}
	}

	if price < 0 {
		return 0
	}
	return price
}
