package repository

import (
	"context"

	"warehouse/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovementFilter narrows the movement history listing
type MovementFilter struct {
	ProductID    *uuid.UUID
	UserID       *uuid.UUID
	InvoiceID    *uuid.UUID
	MovementType string
}

// StockMovementRepository is append-only: movements are the audit trail of
// every stock change and are never updated or deleted.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *model.StockMovement) error
	List(ctx context.Context, filter MovementFilter, page, limit int) ([]model.StockMovement, int64, error)
	LastForProduct(ctx context.Context, productID uuid.UUID) (*model.StockMovement, error)
}

type stockMovementRepository struct {
	db *gorm.DB
}

func NewStockMovementRepository(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepository{db: db}
}

func (r *stockMovementRepository) Create(ctx context.Context, movement *model.StockMovement) error {
	return GetDB(ctx, r.db).Create(movement).Error
}

func (r *stockMovementRepository) List(ctx context.Context, filter MovementFilter, page, limit int) ([]model.StockMovement, int64, error) {
	var movements []model.StockMovement
	var total int64

	db := GetDB(ctx, r.db).Model(&model.StockMovement{})
	if filter.ProductID != nil {
		db = db.Where("product_id = ?", *filter.ProductID)
	}
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	if filter.InvoiceID != nil {
		db = db.Where("invoice_id = ?", *filter.InvoiceID)
	}
	if filter.MovementType != "" {
		db = db.Where("movement_type = ?", filter.MovementType)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("Product").Preload("User").Order("date desc").
		Offset(offset).Limit(limit).Find(&movements).Error; err != nil {
		return nil, 0, err
	}

	return movements, total, nil
}

func (r *stockMovementRepository) LastForProduct(ctx context.Context, productID uuid.UUID) (*model.StockMovement, error) {
	var movement model.StockMovement
	if err := GetDB(ctx, r.db).Where("product_id = ?", productID).
		Order("date desc, created_at desc").First(&movement).Error; err != nil {
		return nil, err
	}
	return &movement, nil
}
