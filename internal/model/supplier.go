package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Supplier owns products in the catalog
type Supplier struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	PhoneNumber string    `gorm:"type:varchar(15);uniqueIndex;not null" json:"phone_number"`
	Email       string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Status      string    `gorm:"type:varchar(9);not null;default:'Active'" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (s *Supplier) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
