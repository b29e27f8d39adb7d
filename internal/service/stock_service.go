package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"warehouse/internal/apperr"
	"warehouse/internal/model"
	"warehouse/internal/notification"
	"warehouse/internal/repository"
	ws "warehouse/internal/websocket"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DTOs
type StockChangeRequest struct {
	StockChange float64 `json:"stock_change" binding:"required"`
	ChangeType  string  `json:"change_type" binding:"required"`
}

type MovementResponse struct {
	ID           string   `json:"id"`
	Date         string   `json:"date"`
	ProductID    string   `json:"product_id"`
	ProductName  string   `json:"product_name,omitempty"`
	Quantity     float64  `json:"quantity"`
	MovementType string   `json:"movement_type"`
	InvoiceID    *string  `json:"invoice_id"`
	StockBefore  float64  `json:"stock_before"`
	StockAfter   float64  `json:"stock_after"`
	UserID       *string  `json:"user_id"`
	UserName     string   `json:"user_name,omitempty"`
}

// Websocket payload
type StockEvent struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

type StockService interface {
	ApplyStockChange(ctx context.Context, userID string, productID string, req StockChangeRequest) (*model.Product, *model.StockMovement, error)
	Apply(txCtx context.Context, userID *uuid.UUID, productID uuid.UUID, quantity float64, changeType string, invoiceID *uuid.UUID) (*model.Product, *model.StockMovement, error)
	ListMovements(ctx context.Context, filter repository.MovementFilter, page, limit int) ([]MovementResponse, int64, error)
	NotifyIfLowStock(product *model.Product)
}

type stockService struct {
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	userRepo     repository.UserRepository
	txManager    repository.TransactionManager
	mailer       *notification.Mailer
	hub          *ws.Hub
}

func NewStockService(
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	userRepo repository.UserRepository,
	txManager repository.TransactionManager,
	mailer *notification.Mailer,
	hub *ws.Hub,
) StockService {
	return &stockService{
		productRepo:  productRepo,
		movementRepo: movementRepo,
		userRepo:     userRepo,
		txManager:    txManager,
		mailer:       mailer,
		hub:          hub,
	}
}

// ApplyStockChange runs a manual stock adjustment in its own transaction and
// fires low-stock notifications after commit.
func (s *stockService) ApplyStockChange(ctx context.Context, userID string, productID string, req StockChangeRequest) (*model.Product, *model.StockMovement, error) {
	pid, err := uuid.Parse(productID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: invalid product id", apperr.ErrValidation)
	}

	var uid *uuid.UUID
	if parsed, err := uuid.Parse(userID); err == nil {
		uid = &parsed
	}

	var product *model.Product
	var movement *model.StockMovement
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		product, movement, err = s.Apply(txCtx, uid, pid, req.StockChange, req.ChangeType, nil)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.NotifyIfLowStock(product)
	return product, movement, nil
}

// Apply validates and records a single stock change inside the caller's
// transaction. The product row stays locked until that transaction ends, so
// the read-modify-write on StockValue and the appended movement are atomic
// against concurrent changes to the same product.
func (s *stockService) Apply(txCtx context.Context, userID *uuid.UUID, productID uuid.UUID, quantity float64, changeType string, invoiceID *uuid.UUID) (*model.Product, *model.StockMovement, error) {
	if changeType != model.MovementIncrease && changeType != model.MovementDecrease {
		return nil, nil, fmt.Errorf("%w: %q", apperr.ErrInvalidChangeType, changeType)
	}
	if quantity <= 0 {
		return nil, nil, fmt.Errorf("%w: stock change must be positive", apperr.ErrValidation)
	}

	product, err := s.productRepo.FindByIDForUpdate(txCtx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("product %s: %w", productID, apperr.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("failed to lock product: %w", err)
	}

	before := product.StockValue
	var after float64
	switch changeType {
	case model.MovementIncrease:
		after = before + quantity
	case model.MovementDecrease:
		if quantity > before {
			return nil, nil, fmt.Errorf("%w: product %s has %.2f, requested %.2f", apperr.ErrInsufficientStock, product.Name, before, quantity)
		}
		after = before - quantity
	}

	if err := s.productRepo.UpdateStockValue(txCtx, productID, after); err != nil {
		return nil, nil, fmt.Errorf("failed to update stock value: %w", err)
	}

	movement := &model.StockMovement{
		Date:         time.Now(),
		ProductID:    productID,
		Quantity:     quantity,
		MovementType: changeType,
		InvoiceID:    invoiceID,
		StockBefore:  before,
		StockAfter:   after,
		UserID:       userID,
	}
	if err := s.movementRepo.Create(txCtx, movement); err != nil {
		return nil, nil, fmt.Errorf("failed to record stock movement: %w", err)
	}

	product.StockValue = after
	return product, movement, nil
}

func (s *stockService) ListMovements(ctx context.Context, filter repository.MovementFilter, page, limit int) ([]MovementResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	movements, total, err := s.movementRepo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]MovementResponse, 0, len(movements))
	for _, m := range movements {
		item := MovementResponse{
			ID:           m.ID.String(),
			Date:         m.Date.Format(time.RFC3339),
			ProductID:    m.ProductID.String(),
			Quantity:     m.Quantity,
			MovementType: m.MovementType,
			StockBefore:  m.StockBefore,
			StockAfter:   m.StockAfter,
		}
		if m.Product != nil {
			item.ProductName = m.Product.Name
		}
		if m.InvoiceID != nil {
			id := m.InvoiceID.String()
			item.InvoiceID = &id
		}
		if m.UserID != nil {
			id := m.UserID.String()
			item.UserID = &id
		}
		if m.User != nil {
			item.UserName = m.User.FullName()
		}
		res = append(res, item)
	}

	return res, total, nil
}

// NotifyIfLowStock alerts warehouse managers when the product is at or below
// its threshold. Called after the stock transaction commits; failures are
// logged and never propagated.
func (s *stockService) NotifyIfLowStock(product *model.Product) {
	if product == nil || product.StockValue > float64(product.ThresholdValue) {
		return
	}

	event := StockEvent{
		Event: "low_stock",
		Data: map[string]interface{}{
			"product_id":      product.ID.String(),
			"product_name":    product.Name,
			"stock_value":     product.StockValue,
			"threshold_value": product.ThresholdValue,
		},
	}
	if payload, err := json.Marshal(event); err == nil {
		s.hub.Publish(payload)
	}

	if s.mailer == nil || !s.mailer.IsConfigured() {
		return
	}
	go func(p model.Product) {
		managers, err := s.userRepo.ListByRole(context.Background(), model.RoleWarehouseManager)
		if err != nil {
			log.Printf("low stock alert: failed to list managers: %v", err)
			return
		}
		if len(managers) == 0 {
			return
		}
		if err := s.mailer.SendLowStockAlert(&p, managers); err != nil {
			log.Printf("low stock alert: failed to send email: %v", err)
		}
	}(*product)
}
