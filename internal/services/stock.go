// internal/services/stock.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velora/velora-backend/internal/models"
)

var ErrInsufficientStock = errors.New("insufficient stock")

// ReserveStock decrements product stock with a guarded conditional update.
// The precondition is re-checked at write time, so two racing checkouts can
// never drive the quantity below zero: the loser sees zero affected rows and
// fails with ErrInsufficientStock.
func ReserveStock(tx *gorm.DB, productID uuid.UUID, quantity int) error {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND quantity >= ?", productID, quantity).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", quantity))
	if res.Error != nil {
		return fmt.Errorf("failed to reserve stock: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}

	if err := tx.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("total_sales", gorm.Expr("total_sales + ?", quantity)).Error; err != nil {
		return fmt.Errorf("failed to update sales count: %w", err)
	}

	return nil
}

// ReserveVariationStock decrements the per-option quantities matching the
// selection inside the variations document. Must run inside the checkout
// transaction, after ReserveStock has succeeded for the same product: that
// update holds the row lock, and the variations are re-read here under it so
// a copy loaded before the transaction is never written back stale over a
// concurrent reservation.
func ReserveVariationStock(tx *gorm.DB, productID uuid.UUID, selection models.SelectionList, quantity int) error {
	if len(selection) == 0 {
		return nil
	}

	var product models.Product
	if err := tx.Select("id", "variations").First(&product, "id = ?", productID).Error; err != nil {
		return fmt.Errorf("failed to load variation stock: %w", err)
	}

	for _, sel := range selection {
		opt := product.Variations.Option(sel.Name, sel.Option.Value)
		if opt == nil {
			return fmt.Errorf("unknown option %q for variation %q", sel.Option.Value, sel.Name)
		}
		if opt.Quantity < quantity {
			return ErrInsufficientStock
		}
		opt.Quantity -= quantity
	}

	if err := tx.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("variations", product.Variations).Error; err != nil {
		return fmt.Errorf("failed to update variation stock: %w", err)
	}
	return nil
}
