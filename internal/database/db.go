package database

import (
	"context"
	"log"

	"warehouse/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}

// Migrate creates or updates the schema for all models
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Role{},
		&model.RefreshToken{},
		&model.PasswordResetToken{},
		&model.Supplier{},
		&model.Product{},
		&model.Invoice{},
		&model.InvoiceProduct{},
		&model.StockMovement{},
	)
}

// SeedRoles inserts the built-in roles if they are missing. Idempotent, runs
// on every boot.
func SeedRoles(ctx context.Context, db *gorm.DB) error {
	roles := []model.Role{
		{Name: model.RoleAdmin, Description: "Full access to every operation", IsSystem: true},
		{Name: model.RoleWarehouseManager, Description: "Catalog writes, stock adjustments and invoice fulfilment", IsSystem: true},
		{Name: model.RoleSalesperson, Description: "Invoice creation and editing", IsSystem: true},
		{Name: model.RoleCashier, Description: "Invoice payment and removal", IsSystem: true},
	}

	for _, role := range roles {
		var existing model.Role
		err := db.WithContext(ctx).Where("name = ?", role.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := db.WithContext(ctx).Create(&role).Error; err != nil {
			return err
		}
	}
	return nil
}
