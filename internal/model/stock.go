package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovementType enum constants
const (
	MovementIncrease = "Increase"
	MovementDecrease = "Decrease"
)

// StockMovement is one entry of the append-only stock ledger. Rows are never
// updated or deleted; the product's StockValue must always equal StockAfter of
// its most recent movement.
type StockMovement struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Date         time.Time  `gorm:"not null;index" json:"date"`
	ProductID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"product_id"`
	Product      *Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity     float64    `gorm:"not null" json:"quantity"`
	MovementType string     `gorm:"type:varchar(9);not null;index" json:"movement_type"`
	InvoiceID    *uuid.UUID `gorm:"type:uuid;index" json:"invoice_id"` // set when the movement fulfils an invoice
	Invoice      *Invoice   `gorm:"foreignKey:InvoiceID" json:"-"`
	StockBefore  float64    `gorm:"not null" json:"stock_before"`
	StockAfter   float64    `gorm:"not null" json:"stock_after"`
	UserID       *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User         *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
