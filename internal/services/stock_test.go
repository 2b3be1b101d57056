// internal/services/stock_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velora/velora-backend/internal/models"
)

func TestReserveStock(t *testing.T) {
	db := newTestDB(t)
	product := createTestProduct(t, db, 50, 10)

	require.NoError(t, ReserveStock(db, product.ID, 4))

	var got models.Product
	require.NoError(t, db.First(&got, "id = ?", product.ID).Error)
	assert.Equal(t, 6, got.Quantity)
	assert.Equal(t, 4, got.TotalSales)
}

func TestReserveStockInsufficient(t *testing.T) {
	db := newTestDB(t)
	product := createTestProduct(t, db, 50, 3)

	err := ReserveStock(db, product.ID, 5)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// Failed reservation leaves the row untouched.
	var got models.Product
	require.NoError(t, db.First(&got, "id = ?", product.ID).Error)
	assert.Equal(t, 3, got.Quantity)
	assert.Equal(t, 0, got.TotalSales)
}

func TestReserveVariationStock(t *testing.T) {
	db := newTestDB(t)
	product := createTestProduct(t, db, 50, 10)
	product.Variations = models.VariationList{
		{
			Name: "Color",
			Options: []models.VariationOption{
				{Value: "Red", Quantity: 2},
				{Value: "Blue", Quantity: 8},
			},
		},
	}
	require.NoError(t, db.Save(product).Error)

	selection := models.SelectionList{
		{Name: "Color", Option: models.SelectedOption{Value: "Red"}},
	}

	require.NoError(t, ReserveVariationStock(db, product.ID, selection, 2))

	var got models.Product
	require.NoError(t, db.First(&got, "id = ?", product.ID).Error)
	opt := got.Variations.Option("Color", "Red")
	require.NotNil(t, opt)
	assert.Equal(t, 0, opt.Quantity)

	// A further reservation against the drained option fails.
	err := ReserveVariationStock(db, product.ID, selection, 1)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestReserveVariationStockUsesStoredQuantities(t *testing.T) {
	db := newTestDB(t)
	product := createTestProduct(t, db, 50, 10)
	product.Variations = models.VariationList{
		{
			Name: "Color",
			Options: []models.VariationOption{
				{Value: "Red", Quantity: 5},
			},
		},
	}
	require.NoError(t, db.Save(product).Error)

	// Another checkout sells two Red units after this one loaded the product.
	require.NoError(t, db.Model(&models.Product{}).
		Where("id = ?", product.ID).
		UpdateColumn("variations", models.VariationList{
			{
				Name: "Color",
				Options: []models.VariationOption{
					{Value: "Red", Quantity: 3},
				},
			},
		}).Error)

	selection := models.SelectionList{
		{Name: "Color", Option: models.SelectedOption{Value: "Red"}},
	}
	require.NoError(t, ReserveVariationStock(db, product.ID, selection, 1))

	// The decrement lands on the stored quantities, not the caller's copy, so
	// the concurrent sale is preserved.
	var got models.Product
	require.NoError(t, db.First(&got, "id = ?", product.ID).Error)
	opt := got.Variations.Option("Color", "Red")
	require.NotNil(t, opt)
	assert.Equal(t, 2, opt.Quantity)
}
