package model

import (
	"strings"

	"github.com/google/uuid"
)

type refKind uint8

const (
	refNone refKind = iota
	refBarcode
	refID
)

// ProductRef identifies a product either by barcode or by id, never both.
// The zero value identifies nothing and is rejected by the engine.
type ProductRef struct {
	kind    refKind
	barcode string
	id      uuid.UUID
}

func RefByBarcode(barcode string) ProductRef {
	return ProductRef{kind: refBarcode, barcode: barcode}
}

func RefByID(id uuid.UUID) ProductRef {
	return ProductRef{kind: refID, id: id}
}

// ParseProductRef builds a ref from the two optional request fields. Exactly
// one of them must be set.
func ParseProductRef(barcode, productID string) (ProductRef, error) {
	barcode = strings.TrimSpace(barcode)
	productID = strings.TrimSpace(productID)

	switch {
	case barcode != "" && productID != "":
		return ProductRef{}, NewInvalidRequest("invalid request", "exactly one of barcode or productId must be given, not both")
	case barcode == "" && productID == "":
		return ProductRef{}, NewInvalidRequest("invalid request", "one of barcode or productId is required")
	case barcode != "":
		return RefByBarcode(barcode), nil
	}

	id, err := uuid.Parse(productID)
	if err != nil {
		return ProductRef{}, NewInvalidRequest("invalid request", "productId is not a valid id")
	}
	return RefByID(id), nil
}

func (r ProductRef) IsZero() bool { return r.kind == refNone }

// Barcode returns the barcode and true when the ref is a barcode ref.
func (r ProductRef) Barcode() (string, bool) { return r.barcode, r.kind == refBarcode }

// ID returns the id and true when the ref is an id ref.
func (r ProductRef) ID() (uuid.UUID, bool) { return r.id, r.kind == refID }

func (r ProductRef) String() string {
	switch r.kind {
	case refBarcode:
		return "barcode " + r.barcode
	case refID:
		return "id " + r.id.String()
	}
	return "<none>"
}
