// internal/services/cart_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velora/velora-backend/internal/models"
	"github.com/velora/velora-backend/internal/utils"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrCartEmpty        = errors.New("cart is empty")
)

type CartService struct {
	db *gorm.DB
}

type AddCartItemRequest struct {
	ProductID  uuid.UUID            `json:"product_id" validate:"required"`
	Quantity   int                  `json:"quantity" validate:"required,gt=0"`
	Variations models.SelectionList `json:"variations,omitempty"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// GetCart fetches the user's cart, creating an empty one on first access.
func (s *CartService) GetCart(userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.Preload("Items.Product").Where("user_id = ?", userID).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	cart = models.Cart{UserID: userID}
	if err := s.db.Create(&cart).Error; err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return &cart, nil
}

// AddItem puts a product into the cart. Adding the same product with the same
// variation selection again bumps the existing line's quantity instead of
// creating a duplicate line. Availability is checked against the requested
// total, but stock is only reserved at checkout.
func (s *CartService) AddItem(userID uuid.UUID, req *AddCartItemRequest) (*models.Cart, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	cart, err := s.GetCart(userID)
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := s.db.First(&product, "id = ?", req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	existing := s.findLine(cart, req.ProductID, req.Variations)
	requested := req.Quantity
	if existing != nil {
		requested += existing.Quantity
	}

	if err := s.checkAvailability(&product, req.Variations, requested); err != nil {
		return nil, err
	}

	if existing != nil {
		if err := s.db.Model(existing).UpdateColumn("quantity", requested).Error; err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
	} else {
		item := models.CartItem{
			CartID:     cart.ID,
			ProductID:  req.ProductID,
			Variations: req.Variations,
			Quantity:   req.Quantity,
		}
		if err := s.db.Create(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to add cart item: %w", err)
		}
	}

	return s.GetCart(userID)
}

func (s *CartService) UpdateItem(userID, itemID uuid.UUID, req *UpdateCartItemRequest) (*models.Cart, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	cart, err := s.GetCart(userID)
	if err != nil {
		return nil, err
	}

	var item models.CartItem
	if err := s.db.Preload("Product").Where("id = ? AND cart_id = ?", itemID, cart.ID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if item.Product != nil {
		if err := s.checkAvailability(item.Product, item.Variations, req.Quantity); err != nil {
			return nil, err
		}
	}

	if err := s.db.Model(&item).UpdateColumn("quantity", req.Quantity).Error; err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	return s.GetCart(userID)
}

func (s *CartService) RemoveItem(userID, itemID uuid.UUID) (*models.Cart, error) {
	cart, err := s.GetCart(userID)
	if err != nil {
		return nil, err
	}

	res := s.db.Where("id = ? AND cart_id = ?", itemID, cart.ID).Delete(&models.CartItem{})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrCartItemNotFound
	}

	return s.GetCart(userID)
}

// ClearCart deletes all lines. Passing a transaction makes the clear part of a
// checkout; passing nil clears the cart standalone.
func (s *CartService) ClearCart(tx *gorm.DB, userID uuid.UUID) error {
	if tx == nil {
		tx = s.db
	}

	var cart models.Cart
	if err := tx.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("database error: %w", err)
	}

	if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *CartService) findLine(cart *models.Cart, productID uuid.UUID, selection models.SelectionList) *models.CartItem {
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID && sameSelection(cart.Items[i].Variations, selection) {
			return &cart.Items[i]
		}
	}
	return nil
}

func (s *CartService) checkAvailability(product *models.Product, selection models.SelectionList, quantity int) error {
	if product.Quantity < quantity {
		return ErrInsufficientStock
	}
	for _, sel := range selection {
		opt := product.Variations.Option(sel.Name, sel.Option.Value)
		if opt == nil {
			return fmt.Errorf("unknown option %q for variation %q", sel.Option.Value, sel.Name)
		}
		if opt.Quantity < quantity {
			return ErrInsufficientStock
		}
	}
	return nil
}

func sameSelection(a, b models.SelectionList) bool {
	if len(a) != len(b) {
		return false
	}
	for _, sa := range a {
		found := false
		for _, sb := range b {
			if sa.Name == sb.Name && sa.Option.Value == sb.Option.Value {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
