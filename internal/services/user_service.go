// internal/services/user_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velora/velora-backend/internal/models"
	"github.com/velora/velora-backend/internal/utils"
)

type UserService struct {
	db *gorm.DB
}

type UpdateProfileRequest struct {
	Name  string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Phone string `json:"phone,omitempty" validate:"omitempty,min=7,max=30"`
}

type AddressRequest struct {
	Label        string `json:"label" validate:"required,max=50"`
	AddressLine1 string `json:"address_line1" validate:"required,max=255"`
	AddressLine2 string `json:"address_line2,omitempty" validate:"omitempty,max=255"`
	City         string `json:"city" validate:"required,max=100"`
	State        string `json:"state,omitempty" validate:"omitempty,max=100"`
	PostalCode   string `json:"postal_code" validate:"required,max=20"`
	Country      string `json:"country" validate:"required,max=100"`
	Phone        string `json:"phone" validate:"required,min=7,max=30"`
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) GetProfile(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Addresses").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

func (s *UserService) UpdateProfile(userID uuid.UUID, req *UpdateProfileRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}

	if len(updates) > 0 {
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}

	return user, nil
}

func (s *UserService) AddAddress(userID uuid.UUID, req *AddressRequest) (*models.Address, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	address := &models.Address{
		UserID:       userID,
		Label:        req.Label,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		Phone:        req.Phone,
	}

	if err := s.db.Create(address).Error; err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}
	return address, nil
}

func (s *UserService) UpdateAddress(userID, addressID uuid.UUID, req *AddressRequest) (*models.Address, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var address models.Address
	if err := s.db.Where("id = ? AND user_id = ?", addressID, userID).First(&address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	address.Label = req.Label
	address.AddressLine1 = req.AddressLine1
	address.AddressLine2 = req.AddressLine2
	address.City = req.City
	address.State = req.State
	address.PostalCode = req.PostalCode
	address.Country = req.Country
	address.Phone = req.Phone

	if err := s.db.Save(&address).Error; err != nil {
		return nil, fmt.Errorf("failed to update address: %w", err)
	}
	return &address, nil
}

func (s *UserService) DeleteAddress(userID, addressID uuid.UUID) error {
	res := s.db.Where("id = ? AND user_id = ?", addressID, userID).Delete(&models.Address{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete address: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAddressNotFound
	}
	return nil
}

func (s *UserService) ListAddresses(userID uuid.UUID) ([]models.Address, error) {
	var addresses []models.Address
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&addresses).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch addresses: %w", err)
	}
	return addresses, nil
}

// ListCustomers is the admin customer directory with search over name and
// email.
func (s *UserService) ListCustomers(params utils.PaginationParams) (*utils.PaginationResult, error) {
	var users []models.User
	var total int64

	query := s.db.Model(&models.User{}).Where("role = ?", models.UserRoleCustomer)
	if params.Search != "" {
		like := "%" + params.Search + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "name", "email", "total_purchases", "total_orders"})
	query = utils.ApplyPagination(query, params)

	if err := query.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch customers: %w", err)
	}

	result := utils.CreatePaginationResult(users, total, params)
	return &result, nil
}

func (s *UserService) GetCustomer(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Addresses").First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}
