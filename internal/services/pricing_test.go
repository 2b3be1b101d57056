// internal/services/pricing_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/velora/velora-backend/internal/models"
)

func TestUnitPrice(t *testing.T) {
	now := time.Now()

	base := func() *models.Product {
		return &models.Product{
			BasePrice: 100,
			Variations: models.VariationList{
				{
					Name: "Size",
					Options: []models.VariationOption{
						{Value: "S", PriceModifier: 0, Quantity: 5},
						{Value: "XL", PriceModifier: 15, Quantity: 5},
					},
				},
			},
		}
	}

	sizeXL := models.SelectionList{
		{Name: "Size", Option: models.SelectedOption{Value: "XL"}},
	}

	t.Run("no discount no selection", func(t *testing.T) {
		assert.Equal(t, 100.0, UnitPrice(base(), nil, now))
	})

	t.Run("selection adds modifier", func(t *testing.T) {
		assert.Equal(t, 115.0, UnitPrice(base(), sizeXL, now))
	})

	t.Run("percentage discount applies to base price only", func(t *testing.T) {
		p := base()
		p.Discount = models.DiscountColumn{
			Set: true,
			Discount: models.Discount{
				Type:      models.DiscountTypePercentage,
				Value:     10,
				StartDate: now.Add(-time.Hour),
				EndDate:   now.Add(time.Hour),
			},
		}
		assert.InDelta(t, 105.0, UnitPrice(p, sizeXL, now), 1e-9)
	})

	t.Run("fixed discount floors at zero", func(t *testing.T) {
		p := base()
		p.Discount = models.DiscountColumn{
			Set: true,
			Discount: models.Discount{
				Type:      models.DiscountTypeFixed,
				Value:     150,
				StartDate: now.Add(-time.Hour),
				EndDate:   now.Add(time.Hour),
			},
		}
		assert.Equal(t, 0.0, UnitPrice(p, nil, now))
	})

	t.Run("expired discount window is ignored", func(t *testing.T) {
		p := base()
		p.Discount = models.DiscountColumn{
			Set: true,
			Discount: models.Discount{
				Type:      models.DiscountTypePercentage,
				Value:     50,
				StartDate: now.Add(-2 * time.Hour),
				EndDate:   now.Add(-time.Hour),
			},
		}
		assert.Equal(t, 100.0, UnitPrice(p, nil, now))
	})
}

func TestCurrentPriceNeverExceedsBase(t *testing.T) {
	now := time.Now()
	p := &models.Product{BasePrice: 80}

	assert.Equal(t, 80.0, p.CurrentPrice(now))

	p.Discount = models.DiscountColumn{
		Set: true,
		Discount: models.Discount{
			Type:      models.DiscountTypePercentage,
			Value:     25,
			StartDate: now.Add(-time.Minute),
			EndDate:   now.Add(time.Minute),
		},
	}
	assert.LessOrEqual(t, p.CurrentPrice(now), p.BasePrice)
}
