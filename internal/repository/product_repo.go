package repository

import (
	"context"
	"strings"
	"time"

	"go-pos-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type ProductRepository interface {
	// WithTx returns a repository bound to tx, for use inside db.Transaction.
	WithTx(tx *gorm.DB) ProductRepository

	Create(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)
	FindLowStock(ctx context.Context, threshold int) ([]model.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Product, error)
	FindByBarcodes(ctx context.Context, barcodes []string) ([]model.Product, error)
	UpdateDetails(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uuid.UUID) error

	// ApplyStockDelta adds delta to stock_qty only if the result stays
	// non-negative, as one conditional UPDATE. It reports whether a row changed.
	ApplyStockDelta(ctx context.Context, id uuid.UUID, delta int) (bool, error)

	Stats(ctx context.Context, threshold int) (*model.InventorySummary, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepo{tx}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	err := r.db.WithContext(ctx).Create(product).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return model.NewDuplicateBarcode(product.Barcode)
	}
	return errors.Wrap(err, "create product")
}

func (r *productRepo) FindAll(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	var products []model.Product
	q := r.db.WithContext(ctx).Model(&model.Product{})

	if query := strings.TrimSpace(filter.Query); query != "" {
		pattern := likePattern(query)
		q = q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(barcode) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if filter.LowStock {
		q = q.Where("stock_qty <= ?", model.LowStockThreshold)
	}

	err := q.Order("name ASC").Find(&products).Error
	return products, errors.Wrap(err, "list products")
}

func (r *productRepo) FindLowStock(ctx context.Context, threshold int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("stock_qty <= ?", threshold).
		Order("stock_qty ASC").
		Order("name ASC").
		Find(&products).Error
	return products, errors.Wrap(err, "list low stock products")
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, "product "+id.String()+" not found")
	}
	return &product, nil
}

func (r *productRepo) FindByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).First(&product, "barcode = ?", barcode).Error
	if err != nil {
		return nil, notFound(err, "product with barcode "+barcode+" not found")
	}
	return &product, nil
}

func (r *productRepo) FindByBarcodes(ctx context.Context, barcodes []string) ([]model.Product, error) {
	var products []model.Product
	if len(barcodes) == 0 {
		return products, nil
	}
	err := r.db.WithContext(ctx).Where("barcode IN ?", barcodes).Find(&products).Error
	return products, errors.Wrap(err, "find products by barcode")
}

// UpdateDetails writes the mutable catalog fields. stock_qty is never written
// here; balances change only through ApplyStockDelta.
func (r *productRepo) UpdateDetails(ctx context.Context, product *model.Product) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", product.ID).
		UpdateColumns(map[string]interface{}{
			"name":        product.Name,
			"description": product.Description,
			"barcode":     product.Barcode,
			"base_price":  product.BasePrice,
			"sale_price":  product.SalePrice,
			"price_mode":  product.PriceMode,
			"updated_at":  time.Now(),
		})
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return model.NewDuplicateBarcode(product.Barcode)
	}
	if res.Error != nil {
		return errors.Wrap(res.Error, "update product")
	}
	if res.RowsAffected == 0 {
		return model.NewNotFound("product not found", "product "+product.ID.String()+" not found")
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete product")
	}
	if res.RowsAffected == 0 {
		return model.NewNotFound("product not found", "product "+id.String()+" not found")
	}
	return nil
}

func (r *productRepo) ApplyStockDelta(ctx context.Context, id uuid.UUID, delta int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND stock_qty + ? >= 0", id, delta).
		UpdateColumns(map[string]interface{}{
			"stock_qty":  gorm.Expr("stock_qty + ?", delta),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, errors.Wrapf(res.Error, "apply stock delta %d to %s", delta, id)
	}
	return res.RowsAffected == 1, nil
}

func (r *productRepo) Stats(ctx context.Context, threshold int) (*model.InventorySummary, error) {
	var stats model.InventorySummary
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, errors.Wrap(err, "count products")
	}
	if err := db.Model(&model.Product{}).Where("stock_qty <= ?", threshold).Count(&stats.LowStockCount).Error; err != nil {
		return nil, errors.Wrap(err, "count low stock products")
	}
	if err := db.Model(&model.Product{}).Select("COALESCE(SUM(stock_qty * sale_price), 0)").Scan(&stats.TotalValuation).Error; err != nil {
		return nil, errors.Wrap(err, "sum stock valuation")
	}
	return &stats, nil
}

func notFound(err error, detail string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.NewNotFound("product not found", detail)
	}
	return errors.Wrap(err, "find product")
}

// likePattern lower-cases q and escapes LIKE wildcards so user input matches literally.
func likePattern(q string) string {
	escaper := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + escaper.Replace(strings.ToLower(q)) + "%"
}
