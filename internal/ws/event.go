package ws

const TypeStockUpdate = "stock_update"

// Actions carried by stock_update events.
const (
	ActionProductCreated = "product_created"
	ActionProductUpdated = "product_updated"
	ActionProductDeleted = "product_deleted"
	ActionArrival        = "arrival"
	ActionReturn         = "return"
	ActionAdjust         = "adjust"
	ActionSale           = "sale"
)

// ProductState is the slice of a product that clients need to refresh a row.
type ProductState struct {
	ID        string  `json:"id"`
	Barcode   string  `json:"barcode"`
	Name      string  `json:"name"`
	StockQty  int     `json:"stock_qty"`
	SalePrice float64 `json:"sale_price"`
	LowStock  bool    `json:"low_stock"`
}

type Event struct {
	Type     string         `json:"type"`
	Action   string         `json:"action"`
	Products []ProductState `json:"products"`
	Message  string         `json:"message"`
}
