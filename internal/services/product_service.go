// internal/services/product_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/velora/velora-backend/internal/models"
	"github.com/velora/velora-backend/internal/utils"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
)

type ProductService struct {
	db *gorm.DB
}

type CreateProductRequest struct {
	Name        string               `json:"name" validate:"required,min=2,max=255"`
	Description string               `json:"description,omitempty"`
	BasePrice   float64              `json:"base_price" validate:"required,gt=0"`
	Quantity    int                  `json:"quantity" validate:"gte=0"`
	Images      []string             `json:"images,omitempty"`
	CategoryID  uuid.UUID            `json:"category_id" validate:"required"`
	Variations  models.VariationList `json:"variations,omitempty"`
	Tags        []string             `json:"tags,omitempty"`
	Discount    *models.Discount     `json:"discount,omitempty"`
}

type UpdateProductRequest struct {
	Name        string                `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Description *string               `json:"description,omitempty"`
	BasePrice   *float64              `json:"base_price,omitempty" validate:"omitempty,gt=0"`
	Quantity    *int                  `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	Images      []string              `json:"images,omitempty"`
	CategoryID  *uuid.UUID            `json:"category_id,omitempty"`
	Variations  *models.VariationList `json:"variations,omitempty"`
	Tags        []string              `json:"tags,omitempty"`
	Discount    *models.Discount      `json:"discount,omitempty"`
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

func (s *ProductService) CreateProduct(req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if req.Discount != nil && !req.Discount.Type.Valid() {
		return nil, fmt.Errorf("invalid discount type %q", req.Discount.Type)
	}

	var category models.Category
	if err := s.db.First(&category, "id = ?", req.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	slug, err := s.uniqueSlug(req.Name)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		BasePrice:   req.BasePrice,
		Quantity:    req.Quantity,
		Images:      pq.StringArray(req.Images),
		CategoryID:  req.CategoryID,
		Variations:  req.Variations,
		Tags:        pq.StringArray(req.Tags),
	}
	if req.Discount != nil {
		product.Discount = models.DiscountColumn{Discount: *req.Discount, Set: true}
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

func (s *ProductService) GetProduct(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

func (s *ProductService) GetProductBySlug(slug string) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("Category").Where("slug = ?", slug).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

// ProductFilters narrows the catalog listing beyond pagination and search.
type ProductFilters struct {
	CategoryID *uuid.UUID
	MinPrice   *float64
	MaxPrice   *float64
	InStock    bool
}

func (s *ProductService) ListProducts(params utils.PaginationParams, filters ProductFilters) (*utils.PaginationResult, error) {
	var products []models.Product
	var total int64

	query := s.db.Model(&models.Product{})
	if filters.CategoryID != nil {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.MinPrice != nil {
		query = query.Where("base_price >= ?", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		query = query.Where("base_price <= ?", *filters.MaxPrice)
	}
	if filters.InStock {
		query = query.Where("quantity > 0")
	}
	if params.Search != "" {
		like := "%" + params.Search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "name", "base_price", "total_sales", "average_rating"})
	query = utils.ApplyPagination(query, params)

	if err := query.Preload("Category").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	result := utils.CreatePaginationResult(products, total, params)
	return &result, nil
}

// Recommendations returns other products from the same category, best sellers
// first. Backs the storefront's "you may also like" strip.
func (s *ProductService) Recommendations(id uuid.UUID, limit int) ([]models.Product, error) {
	var product models.Product
	if err := s.db.Select("id", "category_id").First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if limit <= 0 || limit > 20 {
		limit = 4
	}

	var recommendations []models.Product
	if err := s.db.
		Where("category_id = ? AND id <> ?", product.CategoryID, id).
		Order("total_sales DESC").
		Limit(limit).
		Find(&recommendations).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch recommendations: %w", err)
	}
	return recommendations, nil
}

func (s *ProductService) UpdateProduct(id uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if req.Discount != nil && !req.Discount.Type.Valid() {
		return nil, fmt.Errorf("invalid discount type %q", req.Discount.Type)
	}

	var product models.Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.Name != "" && req.Name != product.Name {
		slug, err := s.uniqueSlug(req.Name)
		if err != nil {
			return nil, err
		}
		product.Name = req.Name
		product.Slug = slug
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.BasePrice != nil {
		product.BasePrice = *req.BasePrice
	}
	if req.Quantity != nil {
		product.Quantity = *req.Quantity
	}
	if req.Images != nil {
		product.Images = pq.StringArray(req.Images)
	}
	if req.CategoryID != nil {
		var category models.Category
		if err := s.db.First(&category, "id = ?", *req.CategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		product.CategoryID = *req.CategoryID
	}
	if req.Variations != nil {
		product.Variations = *req.Variations
	}
	if req.Tags != nil {
		product.Tags = pq.StringArray(req.Tags)
	}
	if req.Discount != nil {
		product.Discount = models.DiscountColumn{Discount: *req.Discount, Set: true}
	}

	if err := s.db.Save(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return &product, nil
}

func (s *ProductService) RemoveDiscount(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	product.Discount = models.DiscountColumn{}
	if err := s.db.Model(&product).UpdateColumn("discount", nil).Error; err != nil {
		return nil, fmt.Errorf("failed to remove discount: %w", err)
	}
	return &product, nil
}

// DeleteProduct removes the product and everything hanging off it in one
// transaction: reviews and cart lines go with it, while order item snapshots
// survive untouched.
func (s *ProductService) DeleteProduct(id uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if err := tx.Where("product_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return fmt.Errorf("failed to delete reviews: %w", err)
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete cart items: %w", err)
		}
		if err := tx.Delete(&product).Error; err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return nil
	})
}

// uniqueSlug builds a URL slug from the product name and appends a numeric
// suffix until it is free.
func (s *ProductService) uniqueSlug(name string) (string, error) {
	base := slugify(name)
	if base == "" {
		base = "product"
	}

	slug := base
	for i := 2; ; i++ {
		var count int64
		if err := s.db.Model(&models.Product{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
			return "", fmt.Errorf("database error: %w", err)
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteRune('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
