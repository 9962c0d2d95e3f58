package model

import (
	"go-pos-inventory/internal/pricing"

	"github.com/google/uuid"
)

type PriceMode string

const (
	PriceModeAuto   PriceMode = "auto"
	PriceModeManual PriceMode = "manual"
)

// LowStockThreshold is the inclusive stock level at or below which a product
// is reported as low stock.
const LowStockThreshold = 2

type Product struct {
	BaseModel
	Barcode     string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"barcode"`
	Name        string    `gorm:"type:varchar(255);not null;index" json:"name"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	BasePrice   float64   `gorm:"not null;default:0" json:"base_price"`
	SalePrice   float64   `gorm:"not null;default:0" json:"sale_price"`
	PriceMode   PriceMode `gorm:"type:varchar(10);not null;default:auto" json:"price_mode"`
	StockQty    int       `gorm:"not null;default:0;check:stock_qty >= 0" json:"stock_qty"`
}

// ApplyPricing re-derives SalePrice from BasePrice when the product is auto priced.
func (p *Product) ApplyPricing() {
	if p.PriceMode == PriceModeAuto {
		p.SalePrice = pricing.Compute(p.BasePrice)
	}
}

// IsLowStock reports whether the product is at or under LowStockThreshold.
func (p *Product) IsLowStock() bool {
	return p.StockQty <= LowStockThreshold
}

// Snapshot returns the fields a receipt line freezes at sale time.
func (p *Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{ID: p.ID, Name: p.Name, SalePrice: p.SalePrice}
}

type ProductSnapshot struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	SalePrice float64   `json:"sale_price"`
}

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	Query    string // case-insensitive substring of name or barcode
	LowStock bool
}
