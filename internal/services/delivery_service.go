// internal/services/delivery_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velora/velora-backend/internal/models"
	"github.com/velora/velora-backend/internal/utils"
)

var ErrDeliveryPricingExists = errors.New("delivery pricing already exists")

type DeliveryService struct {
	db *gorm.DB
}

type DeliveryPricingRequest struct {
	Name          string  `json:"name" validate:"required,min=2,max=100"`
	Region        string  `json:"region" validate:"required,max=100"`
	Price         float64 `json:"price" validate:"gte=0"`
	EstimatedDays *int    `json:"estimated_days,omitempty" validate:"omitempty,gt=0"`
}

func NewDeliveryService(db *gorm.DB) *DeliveryService {
	return &DeliveryService{db: db}
}

func (s *DeliveryService) CreatePricing(req *DeliveryPricingRequest) (*models.DeliveryPricing, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var existing models.DeliveryPricing
	if err := s.db.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		return nil, ErrDeliveryPricingExists
	}

	pricing := &models.DeliveryPricing{
		Name:          req.Name,
		Region:        req.Region,
		Price:         req.Price,
		EstimatedDays: req.EstimatedDays,
	}
	if err := s.db.Create(pricing).Error; err != nil {
		return nil, fmt.Errorf("failed to create delivery pricing: %w", err)
	}
	return pricing, nil
}

func (s *DeliveryService) ListPricings() ([]models.DeliveryPricing, error) {
	var pricings []models.DeliveryPricing
	if err := s.db.Order("price ASC").Find(&pricings).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch delivery pricings: %w", err)
	}
	return pricings, nil
}

func (s *DeliveryService) GetPricing(id uuid.UUID) (*models.DeliveryPricing, error) {
	var pricing models.DeliveryPricing
	if err := s.db.First(&pricing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeliveryMethodNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &pricing, nil
}

func (s *DeliveryService) UpdatePricing(id uuid.UUID, req *DeliveryPricingRequest) (*models.DeliveryPricing, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	pricing, err := s.GetPricing(id)
	if err != nil {
		return nil, err
	}

	pricing.Name = req.Name
	pricing.Region = req.Region
	pricing.Price = req.Price
	pricing.EstimatedDays = req.EstimatedDays

	if err := s.db.Save(pricing).Error; err != nil {
		return nil, fmt.Errorf("failed to update delivery pricing: %w", err)
	}
	return pricing, nil
}

func (s *DeliveryService) DeletePricing(id uuid.UUID) error {
	pricing, err := s.GetPricing(id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(pricing).Error; err != nil {
		return fmt.Errorf("failed to delete delivery pricing: %w", err)
	}
	return nil
}
