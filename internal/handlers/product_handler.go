// internal/handlers/product_handler.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/velora/velora-backend/internal/services"
	"github.com/velora/velora-backend/internal/utils"
)

type ProductHandler struct {
	products *services.ProductService
}

func NewProductHandler(products *services.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// ListProducts handles GET /api/v1/products with search, category, price
// range and stock filters plus sorting and pagination.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	var filters services.ProductFilters
	if raw := c.Query("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid category_id", nil)
			return
		}
		filters.CategoryID = &id
	}
	if raw := c.Query("min_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid min_price", nil)
			return
		}
		filters.MinPrice = &v
	}
	if raw := c.Query("max_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid max_price", nil)
			return
		}
		filters.MaxPrice = &v
	}
	filters.InStock = c.Query("in_stock") == "true"

	result, err := h.products.ListProducts(params, filters)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.PaginatedResponse(c, *result)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	product, err := h.products.GetProduct(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, product)
}

func (h *ProductHandler) GetProductBySlug(c *gin.Context) {
	product, err := h.products.GetProductBySlug(c.Param("slug"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, product)
}

// GetRecommendations handles GET /api/v1/products/:id/recommendations.
func (h *ProductHandler) GetRecommendations(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid limit", nil)
			return
		}
		limit = v
	}

	products, err := h.products.Recommendations(id, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, products)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	product, err := h.products.CreateProduct(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.CreatedResponse(c, product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	product, err := h.products.UpdateProduct(id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, product)
}

func (h *ProductHandler) RemoveDiscount(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	product, err := h.products.RemoveDiscount(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.products.DeleteProduct(id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"deleted": true})
}
