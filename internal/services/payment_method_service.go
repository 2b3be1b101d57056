// internal/services/payment_method_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velora/velora-backend/internal/models"
	"github.com/velora/velora-backend/internal/utils"
)

var ErrPaymentMethodExists = errors.New("payment method already exists")

type PaymentMethodService struct {
	db *gorm.DB
}

type PaymentMethodRequest struct {
	Name    string                   `json:"name" validate:"required,min=2,max=100"`
	Type    models.PaymentMethodType `json:"type" validate:"required,oneof=online offline"`
	Details models.JSONB             `json:"details,omitempty"`
}

type UpdatePaymentMethodRequest struct {
	Name     string                   `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Type     models.PaymentMethodType `json:"type,omitempty" validate:"omitempty,oneof=online offline"`
	Details  models.JSONB             `json:"details,omitempty"`
	IsActive *bool                    `json:"is_active,omitempty"`
}

func NewPaymentMethodService(db *gorm.DB) *PaymentMethodService {
	return &PaymentMethodService{db: db}
}

func (s *PaymentMethodService) CreateMethod(req *PaymentMethodRequest) (*models.PaymentMethod, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var existing models.PaymentMethod
	if err := s.db.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		return nil, ErrPaymentMethodExists
	}

	method := &models.PaymentMethod{
		Name:     req.Name,
		Type:     req.Type,
		Details:  req.Details,
		IsActive: true,
	}
	if err := s.db.Create(method).Error; err != nil {
		return nil, fmt.Errorf("failed to create payment method: %w", err)
	}
	return method, nil
}

// ListMethods returns active methods only unless includeInactive is set; the
// storefront sees the filtered list, admins see everything.
func (s *PaymentMethodService) ListMethods(includeInactive bool) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	query := s.db.Order("name ASC")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&methods).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch payment methods: %w", err)
	}
	return methods, nil
}

func (s *PaymentMethodService) GetMethod(id uuid.UUID) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	if err := s.db.First(&method, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentMethodNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &method, nil
}

func (s *PaymentMethodService) UpdateMethod(id uuid.UUID, req *UpdatePaymentMethodRequest) (*models.PaymentMethod, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	method, err := s.GetMethod(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Type != "" {
		updates["type"] = req.Type
	}
	if req.Details != nil {
		updates["details"] = req.Details
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(method).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update payment method: %w", err)
		}
	}
	return method, nil
}

// DeactivateMethod is the soft delete: existing payments keep referencing the
// method, new checkouts cannot use it.
func (s *PaymentMethodService) DeactivateMethod(id uuid.UUID) (*models.PaymentMethod, error) {
	method, err := s.GetMethod(id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(method).UpdateColumn("is_active", false).Error; err != nil {
		return nil, fmt.Errorf("failed to deactivate payment method: %w", err)
	}
	method.IsActive = false
	return method, nil
}

// DeleteMethod removes the method outright. Refused while payments still
// reference it.
func (s *PaymentMethodService) DeleteMethod(id uuid.UUID) error {
	method, err := s.GetMethod(id)
	if err != nil {
		return err
	}

	var count int64
	if err := s.db.Model(&models.Payment{}).Where("method_id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("payment method is still referenced by %d payments", count)
	}

	if err := s.db.Delete(method).Error; err != nil {
		return fmt.Errorf("failed to delete payment method: %w", err)
	}
	return nil
}
