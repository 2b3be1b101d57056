// internal/models/category.go
package models

import "github.com/google/uuid"

type Category struct {
	BaseModel
	Name        string `json:"name" gorm:"uniqueIndex;size:100;not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex;size:120"`
	Description string `json:"description,omitempty" gorm:"type:text"`
}

type Review struct {
	BaseModel
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index:idx_reviews_product_user,unique"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index:idx_reviews_product_user,unique"`
	Rating    int       `json:"rating" gorm:"not null"`
	Comment   string    `json:"comment,omitempty" gorm:"type:text"`

	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
