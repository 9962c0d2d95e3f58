package service

import (
	"context"
	"sync"
	"testing"

	"go-pos-inventory/internal/export"
	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/internal/storetest"
	"go-pos-inventory/internal/ws"
	"go-pos-inventory/pkg/logger"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// recorder captures published events.
type recorder struct {
	mu     sync.Mutex
	events []ws.Event
}

func (r *recorder) Publish(payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := payload.(ws.Event); ok {
		r.events = append(r.events, e)
	}
}

func (r *recorder) all() []ws.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ws.Event(nil), r.events...)
}

type fixture struct {
	db        *gorm.DB
	movements repository.MovementRepository
	products  ProductService
	inventory InventoryService
	reports   ReportService
	events    *recorder
	exportDir string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := storetest.NewDB(t)
	pRepo := repository.NewProductRepo(db)
	mRepo := repository.NewMovementRepo(db)
	log := logger.Discard()
	events := &recorder{}
	dir := t.TempDir()

	return &fixture{
		db:        db,
		movements: mRepo,
		products:  NewProductService(db, pRepo, mRepo, nil, events, log),
		inventory: NewInventoryService(db, pRepo, mRepo, events, log),
		reports:   NewReportService(db, pRepo, mRepo, export.NewFileExporter(dir), log),
		events:    events,
		exportDir: dir,
	}
}

// create registers an auto-priced product with an opening balance.
func (f *fixture) create(t *testing.T, barcode, name string, base float64, stock int) *model.Product {
	t.Helper()
	p, err := f.products.CreateProduct(context.Background(), &ProductRequest{
		Name:         name,
		Barcode:      barcode,
		BasePrice:    floatPtr(base),
		InitialStock: intPtr(stock),
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) stock(t *testing.T, barcode string) int {
	t.Helper()
	p, err := f.products.GetProductByBarcode(context.Background(), barcode)
	require.NoError(t, err)
	return p.StockQty
}

func (f *fixture) ledger(t *testing.T, filter model.MovementFilter) []model.StockMovement {
	t.Helper()
	movements, err := f.movements.FindAll(context.Background(), filter)
	require.NoError(t, err)
	return movements
}

// requireBalanced checks that every stock_qty equals its ledger sum.
func (f *fixture) requireBalanced(t *testing.T) {
	t.Helper()
	discrepancies, err := f.reports.Reconcile(context.Background())
	require.NoError(t, err)
	require.Empty(t, discrepancies)
}

func intPtr(v int) *int            { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }
