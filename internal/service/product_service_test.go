package service

import (
	"context"
	"sync"
	"testing"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/internal/ws"
	"go-pos-inventory/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProduct_AutoPricingAndOpeningBalance(t *testing.T) {
	f := newFixture(t)

	p := f.create(t, "779001", "Yerba 1kg", 10, 5)

	assert.Equal(t, 13.5, p.SalePrice)
	assert.Equal(t, model.PriceModeAuto, p.PriceMode)
	assert.Equal(t, 5, p.StockQty)

	movements := f.ledger(t, model.MovementFilter{ProductID: p.ID})
	require.Len(t, movements, 1)
	assert.Equal(t, model.MovementArrival, movements[0].Type)
	assert.Equal(t, 5, movements[0].Qty)
	assert.Equal(t, model.NoteInitialStock, movements[0].Note)

	events := f.events.all()
	require.Len(t, events, 1)
	assert.Equal(t, ws.ActionProductCreated, events[0].Action)
}

func TestCreateProduct_NoOpeningMovementForZeroStock(t *testing.T) {
	f := newFixture(t)

	p := f.create(t, "A", "Arroz", 3, 0)

	assert.Equal(t, 4.1, p.SalePrice)
	assert.Empty(t, f.ledger(t, model.MovementFilter{ProductID: p.ID}))
	f.requireBalanced(t)
}

func TestCreateProduct_ManualPricing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.products.CreateProduct(ctx, &ProductRequest{
		Name:        "Queso",
		Description: strPtr("Cremoso"),
		Barcode:     "Q1",
		BasePrice:   floatPtr(10),
		PriceMode:   model.PriceModeManual,
		SalePrice:   floatPtr(12.25),
	})
	require.NoError(t, err)
	assert.Equal(t, 12.25, p.SalePrice)
	require.NotNil(t, p.Description)
	assert.Equal(t, "Cremoso", *p.Description)

	_, err = f.products.CreateProduct(ctx, &ProductRequest{
		Name:      "Queso duro",
		Barcode:   "Q2",
		BasePrice: floatPtr(10),
		PriceMode: model.PriceModeManual,
	})
	assert.ErrorIs(t, err, model.ErrInvalidRequest)
}

func TestCreateProduct_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string]*ProductRequest{
		"missing name":    {Barcode: "X", BasePrice: floatPtr(1)},
		"blank barcode":   {Name: "X", Barcode: "   ", BasePrice: floatPtr(1)},
		"missing price":   {Name: "X", Barcode: "X"},
		"negative price":  {Name: "X", Barcode: "X", BasePrice: floatPtr(-1)},
		"negative stock":  {Name: "X", Barcode: "X", BasePrice: floatPtr(1), InitialStock: intPtr(-3)},
		"unknown mode":    {Name: "X", Barcode: "X", BasePrice: floatPtr(1), PriceMode: "dynamic"},
		"negative manual": {Name: "X", Barcode: "X", BasePrice: floatPtr(1), PriceMode: model.PriceModeManual, SalePrice: floatPtr(-2)},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.products.CreateProduct(ctx, req)
			require.Error(t, err)
			assert.Equal(t, model.KindInvalidRequest, model.KindOf(err))
			assert.NotEmpty(t, model.AsAppError(err).Details)
		})
	}

	all, err := f.products.ListProducts(ctx, model.ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateProduct_DuplicateBarcode(t *testing.T) {
	f := newFixture(t)
	f.create(t, "779001", "Yerba", 10, 1)

	_, err := f.products.CreateProduct(context.Background(), &ProductRequest{
		Name: "Otra", Barcode: "779001", BasePrice: floatPtr(5), InitialStock: intPtr(4),
	})
	assert.ErrorIs(t, err, model.ErrDuplicateBarcode)

	// no stray opening movement from the rejected create
	assert.Len(t, f.ledger(t, model.MovementFilter{}), 1)
}

func TestUpdateProduct_RepricesAndKeepsStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.create(t, "A", "Arroz", 10, 7)

	updated, err := f.products.UpdateProduct(ctx, p.ID, &ProductRequest{
		Name: "Arroz largo fino", Barcode: "A2", BasePrice: floatPtr(20),
	})
	require.NoError(t, err)
	assert.Equal(t, "Arroz largo fino", updated.Name)
	assert.Equal(t, "A2", updated.Barcode)
	assert.Equal(t, 27.0, updated.SalePrice)
	assert.Equal(t, 7, updated.StockQty)

	_, err = f.products.GetProductByBarcode(ctx, "A")
	assert.ErrorIs(t, err, model.ErrNotFound)

	f.create(t, "B", "Bizcochos", 1, 0)
	_, err = f.products.UpdateProduct(ctx, p.ID, &ProductRequest{Name: "Arroz", Barcode: "B", BasePrice: floatPtr(1)})
	assert.ErrorIs(t, err, model.ErrDuplicateBarcode)

	_, err = f.products.UpdateProduct(ctx, uuid.New(), &ProductRequest{Name: "X", Barcode: "X", BasePrice: floatPtr(1)})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDeleteProduct_KeepsLedgerAndFreesBarcode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.create(t, "A", "Arroz", 10, 3)

	require.NoError(t, f.products.DeleteProduct(ctx, p.ID))

	_, err := f.products.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.ErrorIs(t, f.products.DeleteProduct(ctx, p.ID), model.ErrNotFound)
	assert.Len(t, f.ledger(t, model.MovementFilter{ProductID: p.ID}), 1)

	again := f.create(t, "A", "Arroz nuevo", 11, 0)
	assert.NotEqual(t, p.ID, again.ID)

	events := f.events.all()
	assert.Equal(t, ws.ActionProductDeleted, events[1].Action)
}

func TestListProducts(t *testing.T) {
	f := newFixture(t)
	f.create(t, "111", "Leche entera", 1, 10)
	f.create(t, "222", "Leche descremada", 1, 1)
	f.create(t, "333", "Pan", 1, 0)

	leche, err := f.products.ListProducts(context.Background(), model.ProductFilter{Query: "leche"})
	require.NoError(t, err)
	assert.Len(t, leche, 2)

	low, err := f.products.ListProducts(context.Background(), model.ProductFilter{LowStock: true})
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "Leche descremada", low[0].Name)
	assert.Equal(t, "Pan", low[1].Name)
}

// mapIndex is an in-memory BarcodeIndex.
type mapIndex struct {
	mu      sync.Mutex
	entries map[string]uuid.UUID
	hits    int
}

func (m *mapIndex) Lookup(_ context.Context, barcode string) (uuid.UUID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.entries[barcode]
	if ok {
		m.hits++
	}
	return id, ok
}

func (m *mapIndex) Remember(_ context.Context, barcode string, id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[barcode] = id
}

func (m *mapIndex) Forget(_ context.Context, barcode string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, barcode)
}

func TestGetProductByBarcode_UsesAndRepairsIndex(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	index := &mapIndex{entries: map[string]uuid.UUID{}}
	products := NewProductService(f.db, repository.NewProductRepo(f.db), f.movements, index, nil, logger.Discard())

	p := f.create(t, "779", "Mate", 10, 1)

	got, err := products.GetProductByBarcode(ctx, "779")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.ID, index.entries["779"])

	_, err = products.GetProductByBarcode(ctx, "779")
	require.NoError(t, err)
	assert.Equal(t, 1, index.hits)

	// a stale entry is verified against the store and replaced
	index.entries["779"] = uuid.New()
	got, err = products.GetProductByBarcode(ctx, "779")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.ID, index.entries["779"])

	require.NoError(t, products.DeleteProduct(ctx, p.ID))
	assert.NotContains(t, index.entries, "779")
	_, err = products.GetProductByBarcode(ctx, "779")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
