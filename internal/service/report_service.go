package service

import (
	"context"
	"database/sql"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Exporter turns low-stock rows into a file artifact and returns its name.
type Exporter interface {
	Export(rows []model.LowStockRow) (string, error)
}

// ReportService is read-only over the catalog and ledger.
type ReportService interface {
	LowStock(ctx context.Context) ([]model.Product, error)
	LowStockRows(ctx context.Context) ([]model.LowStockRow, error)
	ExportLowStock(ctx context.Context) (string, error)
	Summary(ctx context.Context) (*model.InventorySummary, error)
	// Reconcile lists products whose stock_qty differs from the sum of their
	// ledger movements.
	Reconcile(ctx context.Context) ([]model.Discrepancy, error)
}

type reportService struct {
	db           *gorm.DB
	productRepo  repository.ProductRepository
	movementRepo repository.MovementRepository
	exporter     Exporter
	logger       *logrus.Logger
}

func NewReportService(db *gorm.DB, pRepo repository.ProductRepository, mRepo repository.MovementRepository, exporter Exporter, logger *logrus.Logger) ReportService {
	return &reportService{
		db:           db,
		productRepo:  pRepo,
		movementRepo: mRepo,
		exporter:     exporter,
		logger:       logger,
	}
}

// LowStock returns products at or below the threshold, by stock then name.
func (s *reportService) LowStock(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.FindLowStock(ctx, model.LowStockThreshold)
	if err != nil {
		return nil, failure(s.logger, "low_stock", err, nil)
	}
	return products, nil
}

func (s *reportService) LowStockRows(ctx context.Context) ([]model.LowStockRow, error) {
	products, err := s.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	return ToLowStockRows(products), nil
}

func (s *reportService) ExportLowStock(ctx context.Context) (string, error) {
	rows, err := s.LowStockRows(ctx)
	if err != nil {
		return "", err
	}
	name, err := s.exporter.Export(rows)
	if err != nil {
		return "", failure(s.logger, "export_low_stock", err, nil)
	}
	s.logger.WithFields(logrus.Fields{"file": name, "rows": len(rows)}).Info("low stock report exported")
	return name, nil
}

func (s *reportService) Summary(ctx context.Context) (*model.InventorySummary, error) {
	stats, err := s.productRepo.Stats(ctx, model.LowStockThreshold)
	if err != nil {
		return nil, failure(s.logger, "summary", err, nil)
	}
	return stats, nil
}

// Reconcile reads balances and ledger sums from one snapshot, so a sale
// committing in between cannot show up as drift.
func (s *reportService) Reconcile(ctx context.Context) ([]model.Discrepancy, error) {
	var products []model.Product
	var sums map[uuid.UUID]int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if products, err = s.productRepo.WithTx(tx).FindAll(ctx, model.ProductFilter{}); err != nil {
			return err
		}
		sums, err = s.movementRepo.WithTx(tx).SumByProduct(ctx)
		return err
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, failure(s.logger, "reconcile", err, nil)
	}

	discrepancies := []model.Discrepancy{}
	for _, p := range products {
		if sum := sums[p.ID]; sum != p.StockQty {
			discrepancies = append(discrepancies, model.Discrepancy{Product: p, LedgerSum: sum})
		}
	}
	if len(discrepancies) > 0 {
		s.logger.WithField("count", len(discrepancies)).Warn("stock ledger out of balance")
	}
	return discrepancies, nil
}

// ToLowStockRows projects products onto the export fields.
func ToLowStockRows(products []model.Product) []model.LowStockRow {
	rows := make([]model.LowStockRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, model.LowStockRow{
			Barcode:   p.Barcode,
			Name:      p.Name,
			StockQty:  p.StockQty,
			SalePrice: p.SalePrice,
		})
	}
	return rows
}
