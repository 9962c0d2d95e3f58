package model

// MovementResult is returned by single-product movements.
type MovementResult struct {
	Product  Product       `json:"product"`
	Movement StockMovement `json:"movement"`
}

type ReceiptLine struct {
	Product ProductSnapshot `json:"product"`
	Qty     int             `json:"qty"`
	Total   float64         `json:"total"`
}

// Receipt is the result of a committed sale. Lines follow the request order.
type Receipt struct {
	Lines     []ReceiptLine   `json:"lines"`
	Total     float64         `json:"total"`
	Movements []StockMovement `json:"movements"`
}

// LowStockRow is the stable projection handed to exporters.
type LowStockRow struct {
	Barcode   string  `json:"barcode"`
	Name      string  `json:"name"`
	StockQty  int     `json:"stock_qty"`
	SalePrice float64 `json:"sale_price"`
}

// InventorySummary is a current-state overview of the catalog.
type InventorySummary struct {
	TotalProducts  int64   `json:"total_products"`
	LowStockCount  int64   `json:"low_stock_count"`
	TotalValuation float64 `json:"total_valuation"`
}

// Discrepancy marks a product whose balance does not match its ledger.
type Discrepancy struct {
	Product   Product `json:"product"`
	LedgerSum int     `json:"ledger_sum"`
}
