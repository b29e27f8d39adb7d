package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceStatus enum constants. Transitions are forward-only:
// Pending -> Paid -> Delivered.
const (
	InvoicePending   = "Pending"
	InvoicePaid      = "Paid"
	InvoiceDelivered = "Delivered"
)

// Invoice is a customer sales document. InvoiceNumber is allocated once at
// creation and never changes; Total is derived from the current line items.
// Status carries the soft-delete flag, orthogonal to InvoiceStatus.
type Invoice struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceNumber   string           `gorm:"type:varchar(50);uniqueIndex;not null" json:"invoice_number"`
	CustomerName    string           `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerContact string           `gorm:"type:varchar(15)" json:"customer_contact"`
	Total           decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0" json:"total"`
	InvoiceStatus   string           `gorm:"type:varchar(9);not null;default:'Pending';index" json:"invoice_status"`
	DatePaid        *time.Time       `json:"date_paid"`
	DateSupplied    *time.Time       `json:"date_supplied"`
	Status          string           `gorm:"type:varchar(9);not null;default:'Active';index" json:"status"`
	Items           []InvoiceProduct `gorm:"foreignKey:InvoiceID" json:"items"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// InvoiceProduct is one line item of an invoice. Cost is frozen when the line
// is written: quantity times the product's unit price at that moment.
type InvoiceProduct struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  float64         `gorm:"not null" json:"quantity"`
	Cost      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"cost"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (ip *InvoiceProduct) BeforeCreate(tx *gorm.DB) error {
	if ip.ID == uuid.Nil {
		ip.ID = uuid.New()
	}
	return nil
}
