package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Built-in role names
const (
	RoleAdmin            = "Admin"
	RoleWarehouseManager = "Warehouse Manager"
	RoleSalesperson      = "Salesperson"
	RoleCashier          = "Cashier"
)

// Role is an entry in the role catalog. The four built-in roles are seeded at
// startup; IsSystem prevents their deletion.
type Role struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	IsSystem    bool      `gorm:"default:false" json:"is_system"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ValidRole reports whether name is one of the built-in roles
func ValidRole(name string) bool {
	switch name {
	case RoleAdmin, RoleWarehouseManager, RoleSalesperson, RoleCashier:
		return true
	}
	return false
}
