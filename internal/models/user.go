// internal/models/user.go
package models

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Name         string   `json:"name" gorm:"size:100"`
	Email        string   `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string   `json:"-" gorm:"size:255;not null"`
	Role         UserRole `json:"role" gorm:"type:varchar(20);default:'customer'"`
	Phone        string   `json:"phone,omitempty" gorm:"size:30"`

	// Aggregates maintained by the order workflow
	TotalOrders     int     `json:"total_orders" gorm:"default:0"`
	TotalPurchases  float64 `json:"total_purchases" gorm:"type:decimal(12,2);default:0"`
	CancelledOrders int     `json:"cancelled_orders" gorm:"default:0"`

	// Relationships
	Addresses []Address `json:"addresses,omitempty" gorm:"foreignKey:UserID"`
}

type Address struct {
	BaseModel
	UserID       uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Label        string    `json:"label" gorm:"size:50;not null"`
	AddressLine1 string    `json:"address_line1" gorm:"size:255;not null"`
	AddressLine2 string    `json:"address_line2,omitempty" gorm:"size:255"`
	City         string    `json:"city" gorm:"size:100;not null"`
	State        string    `json:"state,omitempty" gorm:"size:100"`
	PostalCode   string    `json:"postal_code" gorm:"size:20;not null"`
	Country      string    `json:"country" gorm:"size:100;not null"`
	Phone        string    `json:"phone" gorm:"size:30;not null"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin || u.Role == UserRoleSuperadmin
}
