package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog item whose stock level is maintained exclusively by the
// stock ledger: StockValue is only ever mutated together with an appended
// StockMovement row, inside the same transaction.
type Product struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string          `gorm:"type:varchar(255);not null" json:"name"`
	SupplierID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"supplier_id"`
	Supplier       *Supplier       `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	ProductUnit    string          `gorm:"type:varchar(50)" json:"product_unit"`
	ThresholdValue int             `gorm:"type:int;not null" json:"threshold_value"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	StockValue     float64         `gorm:"not null;default:0" json:"stock_value"`
	Status         string          `gorm:"type:varchar(9);not null;default:'Active'" json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
