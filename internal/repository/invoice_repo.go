package repository

import (
	"context"
	"fmt"

	"warehouse/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const invoiceNumberPrefix = "INV-"

// InvoiceFilter narrows invoice listings. Soft-deleted invoices are always
// excluded.
type InvoiceFilter struct {
	InvoiceStatus string
	CustomerName  string // substring match
}

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	Update(ctx context.Context, invoice *model.Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	List(ctx context.Context, filter InvoiceFilter, page, limit int) ([]model.Invoice, int64, error)
	ReplaceItems(ctx context.Context, invoiceID uuid.UUID, items []model.InvoiceProduct) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	NextInvoiceNumber(ctx context.Context) (string, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Create(invoice).Error
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Omit("Items").Save(invoice).Error
}

func (r *invoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := GetDB(ctx, r.db).Preload("Items").Preload("Items.Product").
		Where("status = ?", model.StatusActive).
		First(&invoice, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) List(ctx context.Context, filter InvoiceFilter, page, limit int) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Invoice{}).Where("status = ?", model.StatusActive)
	if filter.InvoiceStatus != "" {
		db = db.Where("invoice_status = ?", filter.InvoiceStatus)
	}
	if filter.CustomerName != "" {
		db = db.Where("customer_name ILIKE ?", "%"+filter.CustomerName+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("Items").Order("created_at desc").
		Offset(offset).Limit(limit).Find(&invoices).Error; err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}

// ReplaceItems deletes every line item of the invoice and inserts the given
// set. Callers must run it inside a transaction together with the total
// recomputation.
func (r *invoiceRepository) ReplaceItems(ctx context.Context, invoiceID uuid.UUID, items []model.InvoiceProduct) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("invoice_id = ?", invoiceID).Delete(&model.InvoiceProduct{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].InvoiceID = invoiceID
		if err := db.Create(&items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *invoiceRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.Invoice{}).Where("id = ?", id).
		Update("status", model.StatusInactive).Error
}

// NextInvoiceNumber allocates the next INV-%06d number from the greatest
// existing suffix. Must be called inside the transaction that creates the
// invoice; on postgres an advisory lock on the prefix serializes concurrent
// allocations for the duration of that transaction.
func (r *invoiceRepository) NextInvoiceNumber(ctx context.Context) (string, error) {
	db := GetDB(ctx, r.db)
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", invoiceNumberPrefix).Error; err != nil {
			return "", err
		}
	}

	var numbers []string
	err := db.Model(&model.Invoice{}).
		Where("invoice_number LIKE ?", invoiceNumberPrefix+"%").
		Order("invoice_number desc").
		Limit(1).
		Pluck("invoice_number", &numbers).Error
	if err != nil {
		return "", err
	}

	seq := 0
	if len(numbers) > 0 {
		last := numbers[0]
		if _, err := fmt.Sscanf(last, invoiceNumberPrefix+"%06d", &seq); err != nil {
			return "", fmt.Errorf("malformed invoice number %q: %w", last, err)
		}
	}

	return fmt.Sprintf("%s%06d", invoiceNumberPrefix, seq+1), nil
}
