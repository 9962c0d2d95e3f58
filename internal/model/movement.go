package model

import (
	"time"

	"github.com/google/uuid"
)

type MovementType string

const (
	MovementArrival MovementType = "arrival"
	MovementSale    MovementType = "sale"
	MovementReturn  MovementType = "return"
	MovementAdjust  MovementType = "adjust"
)

// MaxQty bounds any single quantity or aggregated sale quantity. It fits the
// 32-bit stock_qty column on postgres.
const MaxQty = 1_000_000_000

// Default notes written to the ledger.
const (
	NoteInitialStock = "Stock inicial"
	NoteSale         = "Venta"
	NoteReturn       = "Devolución"
)

func (t MovementType) Valid() bool {
	switch t {
	case MovementArrival, MovementSale, MovementReturn, MovementAdjust:
		return true
	}
	return false
}

// StockMovement is one immutable ledger row. Qty is signed: positive for
// arrival/return, negative for sales, either sign for adjust.
//
// ProductID is a lookup-only reference: deleting a product leaves its
// movements in place, so there is no foreign key.
type StockMovement struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	ProductID uuid.UUID    `gorm:"type:uuid;not null;index" json:"product_id"`
	Type      MovementType `gorm:"type:varchar(10);not null;index" json:"type"`
	Qty       int          `gorm:"not null" json:"qty"`
	Note      string       `gorm:"type:text" json:"note,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// MovementFilter narrows ledger listings. Zero values mean "any".
type MovementFilter struct {
	ProductID uuid.UUID
	Type      MovementType
	Limit     int
}
