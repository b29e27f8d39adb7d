package service

import (
	"context"
	"errors"
	"fmt"

	"warehouse/internal/apperr"
	"warehouse/internal/model"
	"warehouse/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DTOs
type CreateProductRequest struct {
	Name           string          `json:"name" binding:"required"`
	SupplierID     string          `json:"supplier_id" binding:"required"`
	ProductUnit    string          `json:"product_unit" binding:"required"`
	ThresholdValue int             `json:"threshold_value" binding:"required,min=0"`
	UnitPrice      decimal.Decimal `json:"unit_price" binding:"required"`
	StockValue     float64         `json:"stock_value"`
}

type UpdateProductRequest struct {
	Name           string           `json:"name"`
	SupplierID     string           `json:"supplier_id"`
	ProductUnit    string           `json:"product_unit"`
	ThresholdValue *int             `json:"threshold_value"`
	UnitPrice      *decimal.Decimal `json:"unit_price"`
	Status         string           `json:"status"`
}

type ProductService interface {
	Create(ctx context.Context, userID string, req CreateProductRequest) (*model.Product, error)
	Get(ctx context.Context, id string) (*model.Product, error)
	List(ctx context.Context, filter repository.ProductFilter, page, limit int) ([]model.Product, int64, error)
	Update(ctx context.Context, id string, req UpdateProductRequest) (*model.Product, error)
	Delete(ctx context.Context, id string) error
}

type productService struct {
	productRepo  repository.ProductRepository
	supplierRepo repository.SupplierRepository
	stockSvc     StockService
	txManager    repository.TransactionManager
}

func NewProductService(
	productRepo repository.ProductRepository,
	supplierRepo repository.SupplierRepository,
	stockSvc StockService,
	txManager repository.TransactionManager,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
		stockSvc:     stockSvc,
		txManager:    txManager,
	}
}

// Create registers a product. A non-zero opening stock is recorded through the
// ledger as an Increase movement so the audit trail starts at the true origin.
func (s *productService) Create(ctx context.Context, userID string, req CreateProductRequest) (*model.Product, error) {
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid supplier id", apperr.ErrValidation)
	}
	if req.StockValue < 0 {
		return nil, fmt.Errorf("%w: stock value cannot be negative", apperr.ErrValidation)
	}

	if _, err := s.supplierRepo.FindByID(ctx, supplierID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("supplier %s: %w", req.SupplierID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var uid *uuid.UUID
	if parsed, err := uuid.Parse(userID); err == nil {
		uid = &parsed
	}

	product := &model.Product{
		Name:           req.Name,
		SupplierID:     supplierID,
		ProductUnit:    req.ProductUnit,
		ThresholdValue: req.ThresholdValue,
		UnitPrice:      req.UnitPrice,
		StockValue:     0,
		Status:         model.StatusActive,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.productRepo.Create(txCtx, product); err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		if req.StockValue > 0 {
			updated, _, err := s.stockSvc.Apply(txCtx, uid, product.ID, req.StockValue, model.MovementIncrease, nil)
			if err != nil {
				return err
			}
			product.StockValue = updated.StockValue
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return product, nil
}

func (s *productService) Get(ctx context.Context, id string) (*model.Product, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid product id", apperr.ErrValidation)
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %s: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return product, nil
}

func (s *productService) List(ctx context.Context, filter repository.ProductFilter, page, limit int) ([]model.Product, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.productRepo.List(ctx, filter, page, limit)
}

// Update never touches StockValue; stock moves only through the ledger.
func (s *productService) Update(ctx context.Context, id string, req UpdateProductRequest) (*model.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	if req.SupplierID != "" {
		supplierID, err := uuid.Parse(req.SupplierID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid supplier id", apperr.ErrValidation)
		}
		if _, err := s.supplierRepo.FindByID(ctx, supplierID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("supplier %s: %w", req.SupplierID, apperr.ErrNotFound)
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		product.SupplierID = supplierID
	}
	if req.ProductUnit != "" {
		product.ProductUnit = req.ProductUnit
	}
	if req.ThresholdValue != nil {
		if *req.ThresholdValue < 0 {
			return nil, fmt.Errorf("%w: threshold cannot be negative", apperr.ErrValidation)
		}
		product.ThresholdValue = *req.ThresholdValue
	}
	if req.UnitPrice != nil {
		product.UnitPrice = *req.UnitPrice
	}
	if req.Status != "" {
		if req.Status != model.StatusActive && req.Status != model.StatusInactive {
			return nil, fmt.Errorf("%w: invalid status %q", apperr.ErrValidation, req.Status)
		}
		product.Status = req.Status
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

func (s *productService) Delete(ctx context.Context, id string) error {
	product, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, product.ID)
}
