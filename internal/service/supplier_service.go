package service

import (
	"context"
	"errors"
	"fmt"

	"warehouse/internal/apperr"
	"warehouse/internal/model"
	"warehouse/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DTOs
type CreateSupplierRequest struct {
	Name        string `json:"name" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
}

type UpdateSupplierRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
	Status      string `json:"status"`
}

type SupplierService interface {
	Create(ctx context.Context, req CreateSupplierRequest) (*model.Supplier, error)
	Get(ctx context.Context, id string) (*model.Supplier, error)
	List(ctx context.Context, status string, page, limit int) ([]model.Supplier, int64, error)
	Update(ctx context.Context, id string, req UpdateSupplierRequest) (*model.Supplier, error)
	Delete(ctx context.Context, id string) error
}

type supplierService struct {
	supplierRepo repository.SupplierRepository
}

func NewSupplierService(supplierRepo repository.SupplierRepository) SupplierService {
	return &supplierService{supplierRepo: supplierRepo}
}

func (s *supplierService) Create(ctx context.Context, req CreateSupplierRequest) (*model.Supplier, error) {
	supplier := &model.Supplier{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Status:      model.StatusActive,
	}
	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}
	return supplier, nil
}

func (s *supplierService) Get(ctx context.Context, id string) (*model.Supplier, error) {
	supplierID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid supplier id", apperr.ErrValidation)
	}

	supplier, err := s.supplierRepo.FindByID(ctx, supplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("supplier %s: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return supplier, nil
}

func (s *supplierService) List(ctx context.Context, status string, page, limit int) ([]model.Supplier, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.supplierRepo.List(ctx, status, page, limit)
}

func (s *supplierService) Update(ctx context.Context, id string, req UpdateSupplierRequest) (*model.Supplier, error) {
	supplier, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		supplier.Name = req.Name
	}
	if req.PhoneNumber != "" {
		supplier.PhoneNumber = req.PhoneNumber
	}
	if req.Email != "" {
		supplier.Email = req.Email
	}
	if req.Status != "" {
		if req.Status != model.StatusActive && req.Status != model.StatusInactive {
			return nil, fmt.Errorf("%w: invalid status %q", apperr.ErrValidation, req.Status)
		}
		supplier.Status = req.Status
	}

	if err := s.supplierRepo.Update(ctx, supplier); err != nil {
		return nil, fmt.Errorf("failed to update supplier: %w", err)
	}
	return supplier, nil
}

func (s *supplierService) Delete(ctx context.Context, id string) error {
	supplier, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.supplierRepo.Delete(ctx, supplier.ID)
}
