package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestLowStock_SortedByStockThenName(t *testing.T) {
	f := newFixture(t)
	f.create(t, "1", "Zapallo", 1, 0)
	f.create(t, "2", "Banana", 1, 2)
	f.create(t, "3", "Anana", 1, 2)
	f.create(t, "4", "Cebolla", 1, 3)

	low, err := f.reports.LowStock(context.Background())
	require.NoError(t, err)

	var names []string
	for _, p := range low {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Zapallo", "Anana", "Banana"}, names)
}

func TestLowStock_FollowsSales(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, "A", "Arroz", 10, 3)

	low, err := f.reports.LowStock(ctx)
	require.NoError(t, err)
	assert.Empty(t, low)

	_, err = f.inventory.Sell(ctx, sale(SaleLine{Barcode: "A", Qty: 1}))
	require.NoError(t, err)

	rows, err := f.reports.LowStockRows(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.LowStockRow{{Barcode: "A", Name: "Arroz", StockQty: 2, SalePrice: 13.5}}, rows)
}

func TestExportLowStock(t *testing.T) {
	f := newFixture(t)
	f.create(t, "779", "Pan, integral", 10, 1)

	name, err := f.reports.ExportLowStock(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "bajo-stock-"))
	assert.True(t, strings.HasSuffix(name, ".csv"))

	data, err := os.ReadFile(filepath.Join(f.exportDir, name))
	require.NoError(t, err)
	assert.Equal(t, "CÓDIGO,NOMBRE,STOCK,PRECIO VENTA\n779,\"Pan, integral\",1,13.5\n", string(data))
}

func TestSummary(t *testing.T) {
	f := newFixture(t)
	f.create(t, "A", "Arroz", 10, 2)
	f.create(t, "B", "Bizcocho", 3, 10)

	stats, err := f.reports.Summary(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalProducts)
	assert.EqualValues(t, 1, stats.LowStockCount)
	assert.InDelta(t, 68.0, stats.TotalValuation, 1e-9)
}

func TestReconcile_ReportsDrift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t, "A", "Arroz", 10, 4)
	f.create(t, "B", "Bizcocho", 3, 1)
	f.requireBalanced(t)

	// simulate an out-of-band write
	require.NoError(t, f.db.Model(&model.Product{}).Where("id = ?", a.ID).Update("stock_qty", 9).Error)

	discrepancies, err := f.reports.Reconcile(ctx)
	require.NoError(t, err)
	require.Len(t, discrepancies, 1)
	assert.Equal(t, a.ID, discrepancies[0].Product.ID)
	assert.Equal(t, 9, discrepancies[0].Product.StockQty)
	assert.Equal(t, 4, discrepancies[0].LedgerSum)
}

// txProducts and txMovements record whether reads ran on a transaction-bound
// repository.
type txProducts struct {
	repository.ProductRepository
	bound bool
	reads *[]string
}

func (r *txProducts) WithTx(tx *gorm.DB) repository.ProductRepository {
	return &txProducts{ProductRepository: r.ProductRepository.WithTx(tx), bound: true, reads: r.reads}
}

func (r *txProducts) FindAll(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	*r.reads = append(*r.reads, fmt.Sprintf("products tx=%v", r.bound))
	return r.ProductRepository.FindAll(ctx, filter)
}

type txMovements struct {
	repository.MovementRepository
	bound bool
	reads *[]string
}

func (r *txMovements) WithTx(tx *gorm.DB) repository.MovementRepository {
	return &txMovements{MovementRepository: r.MovementRepository.WithTx(tx), bound: true, reads: r.reads}
}

func (r *txMovements) SumByProduct(ctx context.Context) (map[uuid.UUID]int, error) {
	*r.reads = append(*r.reads, fmt.Sprintf("movements tx=%v", r.bound))
	return r.MovementRepository.SumByProduct(ctx)
}

func TestReconcile_ReadsOneSnapshot(t *testing.T) {
	f := newFixture(t)
	f.create(t, "A", "Arroz", 10, 4)

	var reads []string
	reports := NewReportService(f.db,
		&txProducts{ProductRepository: repository.NewProductRepo(f.db), reads: &reads},
		&txMovements{MovementRepository: f.movements, reads: &reads},
		nil, logger.Discard())

	discrepancies, err := reports.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Empty(t, discrepancies)
	assert.Equal(t, []string{"products tx=true", "movements tx=true"}, reads)
}
