package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"warehouse/internal/apperr"
	"warehouse/internal/model"
	"warehouse/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DTOs
type InvoiceItemRequest struct {
	ProductID string  `json:"product_id" binding:"required"`
	Quantity  float64 `json:"quantity" binding:"required"`
}

type CreateInvoiceRequest struct {
	CustomerName    string               `json:"customer_name" binding:"required"`
	CustomerContact string               `json:"customer_contact"`
	InvoiceStatus   string               `json:"invoice_status"`
	Items           []InvoiceItemRequest `json:"items"`
}

type UpdateInvoiceRequest struct {
	CustomerName    string                `json:"customer_name"`
	CustomerContact string                `json:"customer_contact"`
	Items           *[]InvoiceItemRequest `json:"items"` // nil leaves line items untouched
}

type InvoiceService interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (*model.Invoice, error)
	Get(ctx context.Context, id string) (*model.Invoice, error)
	List(ctx context.Context, filter repository.InvoiceFilter, page, limit int) ([]model.Invoice, int64, error)
	Update(ctx context.Context, id string, req UpdateInvoiceRequest) (*model.Invoice, error)
	Pay(ctx context.Context, id string) (*model.Invoice, error)
	Supply(ctx context.Context, userID string, id string) (*model.Invoice, error)
	Delete(ctx context.Context, id string) error
}

type invoiceService struct {
	invoiceRepo repository.InvoiceRepository
	productRepo repository.ProductRepository
	stockSvc    StockService
	txManager   repository.TransactionManager
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	productRepo repository.ProductRepository,
	stockSvc StockService,
	txManager repository.TransactionManager,
) InvoiceService {
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		productRepo: productRepo,
		stockSvc:    stockSvc,
		txManager:   txManager,
	}
}

// buildItems prices the requested line items at the products' current unit
// price. Cost is frozen per line: quantity times unit price at write time.
func (s *invoiceService) buildItems(ctx context.Context, reqs []InvoiceItemRequest) ([]model.InvoiceProduct, decimal.Decimal, error) {
	items := make([]model.InvoiceProduct, 0, len(reqs))
	total := decimal.Zero

	for _, itemReq := range reqs {
		pid, err := uuid.Parse(itemReq.ProductID)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("%w: invalid product id %q", apperr.ErrValidation, itemReq.ProductID)
		}
		if itemReq.Quantity <= 0 {
			return nil, decimal.Zero, fmt.Errorf("%w: quantity must be positive", apperr.ErrValidation)
		}

		product, err := s.productRepo.FindByID(ctx, pid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, decimal.Zero, fmt.Errorf("product %s: %w", itemReq.ProductID, apperr.ErrNotFound)
			}
			return nil, decimal.Zero, fmt.Errorf("failed to find product: %w", err)
		}
		if product.Status != model.StatusActive {
			return nil, decimal.Zero, fmt.Errorf("%w: product %s is inactive", apperr.ErrValidation, product.Name)
		}

		cost := product.UnitPrice.Mul(decimal.NewFromFloat(itemReq.Quantity))
		items = append(items, model.InvoiceProduct{
			ProductID: pid,
			Quantity:  itemReq.Quantity,
			Cost:      cost,
		})
		total = total.Add(cost)
	}

	return items, total, nil
}

func (s *invoiceService) Create(ctx context.Context, req CreateInvoiceRequest) (*model.Invoice, error) {
	status := req.InvoiceStatus
	if status == "" {
		status = model.InvoicePending
	}
	// Invoices are never born Delivered; stock only moves through Supply
	if status != model.InvoicePending && status != model.InvoicePaid {
		return nil, fmt.Errorf("%w: cannot create invoice as %q", apperr.ErrValidation, req.InvoiceStatus)
	}

	var invoice *model.Invoice
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		items, total, err := s.buildItems(txCtx, req.Items)
		if err != nil {
			return err
		}

		number, err := s.invoiceRepo.NextInvoiceNumber(txCtx)
		if err != nil {
			return fmt.Errorf("failed to allocate invoice number: %w", err)
		}

		invoice = &model.Invoice{
			InvoiceNumber:   number,
			CustomerName:    req.CustomerName,
			CustomerContact: req.CustomerContact,
			Total:           total,
			InvoiceStatus:   status,
			Status:          model.StatusActive,
			Items:           items,
		}
		if status == model.InvoicePaid {
			now := time.Now()
			invoice.DatePaid = &now
		}

		if err := s.invoiceRepo.Create(txCtx, invoice); err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return invoice, nil
}

func (s *invoiceService) Get(ctx context.Context, id string) (*model.Invoice, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid invoice id", apperr.ErrValidation)
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invoice %s: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return invoice, nil
}

func (s *invoiceService) List(ctx context.Context, filter repository.InvoiceFilter, page, limit int) ([]model.Invoice, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.invoiceRepo.List(ctx, filter, page, limit)
}

// Update edits an invoice while it is still Pending: customer fields and,
// optionally, the line item set. Replacing items re-prices every line at the
// products' current unit price and recomputes the total. Any edit of a
// non-Pending invoice is rejected; once paid, the document is frozen.
func (s *invoiceService) Update(ctx context.Context, id string, req UpdateInvoiceRequest) (*model.Invoice, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid invoice id", apperr.ErrValidation)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoice, err := s.invoiceRepo.FindByID(txCtx, invoiceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("invoice %s: %w", id, apperr.ErrNotFound)
			}
			return fmt.Errorf("database error: %w", err)
		}

		if invoice.InvoiceStatus != model.InvoicePending {
			return fmt.Errorf("%w: cannot edit a %s invoice", apperr.ErrInvalidTransition, invoice.InvoiceStatus)
		}

		if req.CustomerName != "" {
			invoice.CustomerName = req.CustomerName
		}
		if req.CustomerContact != "" {
			invoice.CustomerContact = req.CustomerContact
		}

		if req.Items != nil {
			items, total, err := s.buildItems(txCtx, *req.Items)
			if err != nil {
				return err
			}
			if err := s.invoiceRepo.ReplaceItems(txCtx, invoiceID, items); err != nil {
				return fmt.Errorf("failed to replace invoice items: %w", err)
			}
			invoice.Total = total
		}

		if err := s.invoiceRepo.Update(txCtx, invoice); err != nil {
			return fmt.Errorf("failed to update invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

// Pay moves a Pending invoice to Paid and stamps date_paid. Any other starting
// state is rejected; the lifecycle never moves backwards.
func (s *invoiceService) Pay(ctx context.Context, id string) (*model.Invoice, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid invoice id", apperr.ErrValidation)
	}

	var invoice *model.Invoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoice, err = s.invoiceRepo.FindByID(txCtx, invoiceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("invoice %s: %w", id, apperr.ErrNotFound)
			}
			return fmt.Errorf("database error: %w", err)
		}

		if invoice.InvoiceStatus != model.InvoicePending {
			return fmt.Errorf("%w: cannot pay a %s invoice", apperr.ErrInvalidTransition, invoice.InvoiceStatus)
		}

		now := time.Now()
		invoice.InvoiceStatus = model.InvoicePaid
		invoice.DatePaid = &now

		if err := s.invoiceRepo.Update(txCtx, invoice); err != nil {
			return fmt.Errorf("failed to update invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return invoice, nil
}

// Supply fulfils a Paid invoice: every line item becomes a Decrease movement
// and the invoice moves to Delivered, all in one transaction. If any line
// lacks stock the whole fulfilment rolls back and the invoice stays Paid.
func (s *invoiceService) Supply(ctx context.Context, userID string, id string) (*model.Invoice, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid invoice id", apperr.ErrValidation)
	}

	var uid *uuid.UUID
	if parsed, err := uuid.Parse(userID); err == nil {
		uid = &parsed
	}

	var invoice *model.Invoice
	var touched []*model.Product
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoice, err = s.invoiceRepo.FindByID(txCtx, invoiceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("invoice %s: %w", id, apperr.ErrNotFound)
			}
			return fmt.Errorf("database error: %w", err)
		}

		if invoice.InvoiceStatus != model.InvoicePaid {
			return fmt.Errorf("%w: cannot supply a %s invoice", apperr.ErrInvalidTransition, invoice.InvoiceStatus)
		}

		for _, item := range invoice.Items {
			product, _, err := s.stockSvc.Apply(txCtx, uid, item.ProductID, item.Quantity, model.MovementDecrease, &invoice.ID)
			if err != nil {
				return err
			}
			touched = append(touched, product)
		}

		now := time.Now()
		invoice.InvoiceStatus = model.InvoiceDelivered
		invoice.DateSupplied = &now

		if err := s.invoiceRepo.Update(txCtx, invoice); err != nil {
			return fmt.Errorf("failed to update invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, product := range touched {
		s.stockSvc.NotifyIfLowStock(product)
	}

	return invoice, nil
}

func (s *invoiceService) Delete(ctx context.Context, id string) error {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: invalid invoice id", apperr.ErrValidation)
	}

	if _, err := s.invoiceRepo.FindByID(ctx, invoiceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("invoice %s: %w", id, apperr.ErrNotFound)
		}
		return fmt.Errorf("database error: %w", err)
	}

	return s.invoiceRepo.SoftDelete(ctx, invoiceID)
}
