package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/pricing"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/internal/ws"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// InventoryService applies stock movements. Every operation is one database
// transaction covering the balance change and its ledger rows, so a failed
// operation leaves neither behind.
type InventoryService interface {
	RecordArrival(ctx context.Context, req *MovementRequest) (*model.MovementResult, error)
	RecordReturn(ctx context.Context, req *MovementRequest) (*model.MovementResult, error)
	Adjust(ctx context.Context, req *AdjustRequest) (*model.MovementResult, error)
	Sell(ctx context.Context, req *SaleRequest) (*model.Receipt, error)
	ListMovements(ctx context.Context, filter model.MovementFilter) ([]model.StockMovement, error)
}

// MovementRequest addresses one product by barcode or by productId, not both.
type MovementRequest struct {
	Barcode   string `json:"barcode"`
	ProductID string `json:"productId"`
	Qty       *int   `json:"qty" validate:"required,max=1000000000"`
	Note      string `json:"note"`
}

type AdjustRequest struct {
	ProductID string `json:"productId" validate:"required"`
	QtyDelta  *int   `json:"qtyDelta" validate:"required,min=-1000000000,max=1000000000"`
	Note      string `json:"note" validate:"required"`
}

type SaleLine struct {
	Barcode string `json:"barcode" validate:"required"`
	Qty     int    `json:"qty" validate:"required,min=1,max=1000000000"`
}

type SaleRequest struct {
	Lines []SaleLine `json:"lines" validate:"required,min=1,dive"`
}

type inventoryService struct {
	db           *gorm.DB
	productRepo  repository.ProductRepository
	movementRepo repository.MovementRepository
	notifier     Notifier
	logger       *logrus.Logger
}

func NewInventoryService(db *gorm.DB, pRepo repository.ProductRepository, mRepo repository.MovementRepository, notifier Notifier, logger *logrus.Logger) InventoryService {
	return &inventoryService{
		db:           db,
		productRepo:  pRepo,
		movementRepo: mRepo,
		notifier:     orNoop(notifier),
		logger:       logger,
	}
}

func (s *inventoryService) RecordArrival(ctx context.Context, req *MovementRequest) (*model.MovementResult, error) {
	return s.receive(ctx, req, model.MovementArrival, "")
}

func (s *inventoryService) RecordReturn(ctx context.Context, req *MovementRequest) (*model.MovementResult, error) {
	return s.receive(ctx, req, model.MovementReturn, model.NoteReturn)
}

// receive adds stock to one product: arrivals and returns share this path.
func (s *inventoryService) receive(ctx context.Context, req *MovementRequest, kind model.MovementType, defaultNote string) (*model.MovementResult, error) {
	op := "record_" + string(kind)
	fields := logrus.Fields{"barcode": req.Barcode, "product_id": req.ProductID}

	if err := validate(req); err != nil {
		return nil, failure(s.logger, op, err, fields)
	}
	ref, err := model.ParseProductRef(req.Barcode, req.ProductID)
	if err != nil {
		return nil, failure(s.logger, op, err, fields)
	}
	qty := *req.Qty
	if qty < 0 {
		return nil, failure(s.logger, op, model.NewInvalidRequest("validation failed", "qty must not be negative"), fields)
	}
	note := strings.TrimSpace(req.Note)
	if note == "" {
		note = defaultNote
	}

	var result model.MovementResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.productRepo.WithTx(tx)

		product, err := resolve(ctx, products, ref)
		if err != nil {
			return err
		}
		applied, err := products.ApplyStockDelta(ctx, product.ID, qty)
		if err != nil {
			return err
		}
		if !applied {
			// A non-negative delta only misses when the row is gone.
			return model.NewNotFound("product not found", "product "+ref.String()+" not found")
		}

		movement := model.StockMovement{ProductID: product.ID, Type: kind, Qty: qty, Note: note}
		if err := s.movementRepo.WithTx(tx).Append(ctx, &movement); err != nil {
			return err
		}

		updated, err := products.FindByID(ctx, product.ID)
		if err != nil {
			return err
		}
		result = model.MovementResult{Product: *updated, Movement: movement}
		return nil
	})
	if err != nil {
		return nil, failure(s.logger, op, err, fields)
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": result.Product.ID,
		"type":       kind,
		"qty":        qty,
		"stock_qty":  result.Product.StockQty,
	}).Info("stock movement recorded")
	s.notifier.Publish(stockEvent(string(kind),
		fmt.Sprintf("%s: %+d units of '%s'", kind, qty, result.Product.Name), result.Product))

	return &result, nil
}

// Adjust applies a signed correction by product id. A correction that would
// take stock below zero is rejected and changes nothing.
func (s *inventoryService) Adjust(ctx context.Context, req *AdjustRequest) (*model.MovementResult, error) {
	const op = "adjust"
	fields := logrus.Fields{"product_id": req.ProductID}

	req.Note = strings.TrimSpace(req.Note)
	if err := validate(req); err != nil {
		return nil, failure(s.logger, op, err, fields)
	}
	id, err := uuid.Parse(strings.TrimSpace(req.ProductID))
	if err != nil {
		return nil, failure(s.logger, op, model.NewInvalidRequest("validation failed", "productId is not a valid id"), fields)
	}
	delta := *req.QtyDelta

	var result model.MovementResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.productRepo.WithTx(tx)

		product, err := products.FindByID(ctx, id)
		if err != nil {
			return err
		}
		applied, err := products.ApplyStockDelta(ctx, id, delta)
		if err != nil {
			return err
		}
		if !applied {
			return model.NewStockNegative(fmt.Sprintf("stock %d %+d for '%s' would be negative", product.StockQty, delta, product.Name))
		}

		movement := model.StockMovement{ProductID: id, Type: model.MovementAdjust, Qty: delta, Note: req.Note}
		if err := s.movementRepo.WithTx(tx).Append(ctx, &movement); err != nil {
			return err
		}

		updated, err := products.FindByID(ctx, id)
		if err != nil {
			return err
		}
		result = model.MovementResult{Product: *updated, Movement: movement}
		return nil
	})
	if err != nil {
		return nil, failure(s.logger, op, err, fields)
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": id,
		"qty_delta":  delta,
		"stock_qty":  result.Product.StockQty,
	}).Info("stock adjusted")
	s.notifier.Publish(stockEvent(ws.ActionAdjust,
		fmt.Sprintf("adjust: %+d units of '%s' (%s)", delta, result.Product.Name, req.Note), result.Product))

	return &result, nil
}

// Sell commits a multi-line sale all-or-nothing.
//
// Lines are aggregated per barcode, every barcode is resolved and pre-checked,
// and then each aggregate is taken with a conditional decrement that only
// succeeds while stock_qty covers it. The decrements run in barcode order so
// concurrent sales lock rows in the same order. One sale movement is written
// per request line, in request order, after all decrements succeed.
func (s *inventoryService) Sell(ctx context.Context, req *SaleRequest) (*model.Receipt, error) {
	const op = "sale"

	for i := range req.Lines {
		req.Lines[i].Barcode = strings.TrimSpace(req.Lines[i].Barcode)
	}
	if err := validate(req); err != nil {
		return nil, failure(s.logger, op, err, nil)
	}
	totals, barcodes, err := aggregateLines(req.Lines)
	if err != nil {
		return nil, failure(s.logger, op, err, nil)
	}
	fields := logrus.Fields{"lines": len(req.Lines), "barcodes": barcodes}

	var receipt *model.Receipt
	var sold []model.Product
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.productRepo.WithTx(tx)

		// 1. Resolve every barcode; any miss fails the whole sale
		found, err := products.FindByBarcodes(ctx, barcodes)
		if err != nil {
			return err
		}
		byBarcode := make(map[string]model.Product, len(found))
		for _, p := range found {
			byBarcode[p.Barcode] = p
		}
		for _, bc := range barcodes {
			if _, ok := byBarcode[bc]; !ok {
				return model.NewNotFound("product not found", "product with barcode "+bc+" not found")
			}
		}

		// 2. Fast fail on the snapshot
		for _, bc := range barcodes {
			if p := byBarcode[bc]; p.StockQty < totals[bc] {
				return model.NewStockNegative(fmt.Sprintf("'%s' has %d in stock, %d requested", p.Name, p.StockQty, totals[bc]))
			}
		}

		// 3. Authoritative conditional decrements
		commitOrder := append([]string(nil), barcodes...)
		sort.Strings(commitOrder)
		for _, bc := range commitOrder {
			p := byBarcode[bc]
			applied, err := products.ApplyStockDelta(ctx, p.ID, -totals[bc])
			if err != nil {
				return err
			}
			if !applied {
				return model.NewStockNegative(fmt.Sprintf("'%s' no longer has %d in stock", p.Name, totals[bc]))
			}
		}

		// 4. Ledger rows, one per line, in request order
		movements := make([]model.StockMovement, len(req.Lines))
		for i, line := range req.Lines {
			movements[i] = model.StockMovement{
				ProductID: byBarcode[line.Barcode].ID,
				Type:      model.MovementSale,
				Qty:       -line.Qty,
				Note:      model.NoteSale,
			}
		}
		if err := s.movementRepo.WithTx(tx).AppendBatch(ctx, movements); err != nil {
			return err
		}

		receipt = buildReceipt(req.Lines, byBarcode, movements)

		sold, err = products.FindByBarcodes(ctx, barcodes)
		return err
	})
	if err != nil {
		return nil, failure(s.logger, op, err, fields)
	}

	s.logger.WithFields(fields).WithField("total", receipt.Total).Info("sale committed")
	s.notifier.Publish(stockEvent(ws.ActionSale,
		fmt.Sprintf("sale of %d line(s), total %.2f", len(receipt.Lines), receipt.Total), sold...))

	return receipt, nil
}

func (s *inventoryService) ListMovements(ctx context.Context, filter model.MovementFilter) ([]model.StockMovement, error) {
	movements, err := s.movementRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, failure(s.logger, "list_movements", err, logrus.Fields{"product_id": filter.ProductID})
	}
	return movements, nil
}

// aggregateLines sums quantities per barcode and returns the distinct barcodes
// in first-seen order. A line outside 1..MaxQty, or a total above MaxQty, is
// rejected before any addition can overflow.
func aggregateLines(lines []SaleLine) (map[string]int, []string, error) {
	totals := make(map[string]int, len(lines))
	var order []string
	for _, line := range lines {
		if line.Qty < 1 || line.Qty > model.MaxQty {
			return nil, nil, model.NewInvalidRequest("validation failed",
				fmt.Sprintf("qty for barcode %s must be between 1 and %d", line.Barcode, model.MaxQty))
		}
		current, seen := totals[line.Barcode]
		if !seen {
			order = append(order, line.Barcode)
		}
		if current > model.MaxQty-line.Qty {
			return nil, nil, model.NewInvalidRequest("validation failed",
				fmt.Sprintf("total qty for barcode %s exceeds %d", line.Barcode, model.MaxQty))
		}
		totals[line.Barcode] = current + line.Qty
	}
	return totals, order, nil
}

// buildReceipt prices each line at the sale price read before the decrement.
func buildReceipt(lines []SaleLine, byBarcode map[string]model.Product, movements []model.StockMovement) *model.Receipt {
	receipt := &model.Receipt{
		Lines:     make([]model.ReceiptLine, 0, len(lines)),
		Movements: movements,
	}
	lineTotals := make([]float64, 0, len(lines))
	for _, line := range lines {
		p := byBarcode[line.Barcode]
		total := pricing.LineTotal(p.SalePrice, line.Qty)
		receipt.Lines = append(receipt.Lines, model.ReceiptLine{
			Product: p.Snapshot(),
			Qty:     line.Qty,
			Total:   total,
		})
		lineTotals = append(lineTotals, total)
	}
	receipt.Total = pricing.Sum(lineTotals...)
	return receipt
}

func resolve(ctx context.Context, products repository.ProductRepository, ref model.ProductRef) (*model.Product, error) {
	if barcode, ok := ref.Barcode(); ok {
		return products.FindByBarcode(ctx, barcode)
	}
	if id, ok := ref.ID(); ok {
		return products.FindByID(ctx, id)
	}
	return nil, model.NewInvalidRequest("invalid request", "one of barcode or productId is required")
}
