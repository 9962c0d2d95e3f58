package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-pos-inventory/internal/cache"
	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/internal/ws"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ProductService is the product catalog: CRUD over products plus the
// initial-stock arrival written on create.
type ProductService interface {
	CreateProduct(ctx context.Context, req *ProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *ProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	GetProductByBarcode(ctx context.Context, barcode string) (*model.Product, error)
	ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)
}

// ProductRequest is the full mutable record for create and update.
// InitialStock is honoured on create only.
type ProductRequest struct {
	Name         string          `json:"name" validate:"required"`
	Description  *string         `json:"description"`
	Barcode      string          `json:"barcode" validate:"required"`
	BasePrice    *float64        `json:"base_price" validate:"required,gte=0"`
	PriceMode    model.PriceMode `json:"price_mode" validate:"omitempty,oneof=auto manual"`
	SalePrice    *float64        `json:"sale_price" validate:"omitempty,gte=0"`
	InitialStock *int            `json:"initial_stock" validate:"omitempty,gte=0"`
}

type productService struct {
	db           *gorm.DB
	productRepo  repository.ProductRepository
	movementRepo repository.MovementRepository
	index        cache.BarcodeIndex
	notifier     Notifier
	logger       *logrus.Logger
}

func NewProductService(db *gorm.DB, pRepo repository.ProductRepository, mRepo repository.MovementRepository, index cache.BarcodeIndex, notifier Notifier, logger *logrus.Logger) ProductService {
	if index == nil {
		index = cache.Noop{}
	}
	return &productService{
		db:           db,
		productRepo:  pRepo,
		movementRepo: mRepo,
		index:        index,
		notifier:     orNoop(notifier),
		logger:       logger,
	}
}

// buildProduct validates req and returns the product it describes, priced.
func buildProduct(req *ProductRequest) (*model.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Barcode = strings.TrimSpace(req.Barcode)
	if req.PriceMode == "" {
		req.PriceMode = model.PriceModeAuto
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	if req.PriceMode == model.PriceModeManual && req.SalePrice == nil {
		return nil, model.NewInvalidRequest("validation failed", "sale_price is required when price_mode is manual")
	}

	product := &model.Product{
		Name:        req.Name,
		Description: req.Description,
		Barcode:     req.Barcode,
		BasePrice:   *req.BasePrice,
		PriceMode:   req.PriceMode,
	}
	if req.SalePrice != nil {
		product.SalePrice = *req.SalePrice
	}
	product.ApplyPricing()
	return product, nil
}

func (s *productService) CreateProduct(ctx context.Context, req *ProductRequest) (*model.Product, error) {
	fields := logrus.Fields{"barcode": req.Barcode}

	product, err := buildProduct(req)
	if err != nil {
		return nil, failure(s.logger, "create_product", err, fields)
	}
	initialStock := 0
	if req.InitialStock != nil {
		initialStock = *req.InitialStock
	}
	product.StockQty = initialStock

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.productRepo.WithTx(tx)

		// 1. Barcode must be unique (the unique index backs this up under races)
		if _, err := products.FindByBarcode(ctx, product.Barcode); err == nil {
			return model.NewDuplicateBarcode(product.Barcode)
		} else if !errors.Is(err, model.ErrNotFound) {
			return err
		}

		// 2. Insert the product with its opening balance
		if err := products.Create(ctx, product); err != nil {
			return err
		}

		// 3. The opening balance is itself a ledger arrival
		if initialStock > 0 {
			return s.movementRepo.WithTx(tx).Append(ctx, &model.StockMovement{
				ProductID: product.ID,
				Type:      model.MovementArrival,
				Qty:       initialStock,
				Note:      model.NoteInitialStock,
			})
		}
		return nil
	})
	if err != nil {
		return nil, failure(s.logger, "create_product", err, fields)
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": product.ID,
		"barcode":    product.Barcode,
		"sale_price": product.SalePrice,
		"stock_qty":  product.StockQty,
	}).Info("product created")
	s.notifier.Publish(stockEvent(ws.ActionProductCreated, fmt.Sprintf("product '%s' created", product.Name), *product))

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, req *ProductRequest) (*model.Product, error) {
	fields := logrus.Fields{"product_id": id, "barcode": req.Barcode}

	incoming, err := buildProduct(req)
	if err != nil {
		return nil, failure(s.logger, "update_product", err, fields)
	}

	var updated *model.Product
	var oldBarcode string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.productRepo.WithTx(tx)

		existing, err := products.FindByID(ctx, id)
		if err != nil {
			return err
		}
		oldBarcode = existing.Barcode

		if incoming.Barcode != existing.Barcode {
			other, err := products.FindByBarcode(ctx, incoming.Barcode)
			if err == nil && other.ID != id {
				return model.NewDuplicateBarcode(incoming.Barcode)
			} else if err != nil && !errors.Is(err, model.ErrNotFound) {
				return err
			}
		}

		incoming.ID = id
		if err := products.UpdateDetails(ctx, incoming); err != nil {
			return err
		}

		updated, err = products.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, failure(s.logger, "update_product", err, fields)
	}

	if oldBarcode != updated.Barcode {
		s.index.Forget(ctx, oldBarcode)
	}
	s.logger.WithFields(logrus.Fields{
		"product_id": updated.ID,
		"barcode":    updated.Barcode,
		"sale_price": updated.SalePrice,
	}).Info("product updated")
	s.notifier.Publish(stockEvent(ws.ActionProductUpdated, fmt.Sprintf("product '%s' updated", updated.Name), *updated))

	return updated, nil
}

// DeleteProduct removes the product. Its movements stay in the ledger.
func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	var deleted *model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.productRepo.WithTx(tx)

		p, err := products.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := products.Delete(ctx, id); err != nil {
			return err
		}
		deleted = p
		return nil
	})
	if err != nil {
		return failure(s.logger, "delete_product", err, logrus.Fields{"product_id": id})
	}

	s.index.Forget(ctx, deleted.Barcode)
	s.logger.WithFields(logrus.Fields{"product_id": id, "barcode": deleted.Barcode}).Info("product deleted")
	s.notifier.Publish(stockEvent(ws.ActionProductDeleted, fmt.Sprintf("product '%s' deleted", deleted.Name), *deleted))
	return nil
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, failure(s.logger, "get_product", err, logrus.Fields{"product_id": id})
	}
	return p, nil
}

// GetProductByBarcode consults the barcode index first and confirms the hit
// against the store before trusting it.
func (s *productService) GetProductByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	if id, ok := s.index.Lookup(ctx, barcode); ok {
		if p, err := s.productRepo.FindByID(ctx, id); err == nil && p.Barcode == barcode {
			return p, nil
		}
		s.index.Forget(ctx, barcode)
	}

	p, err := s.productRepo.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, failure(s.logger, "get_product_by_barcode", err, logrus.Fields{"barcode": barcode})
	}
	s.index.Remember(ctx, barcode, p.ID)
	return p, nil
}

func (s *productService) ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, failure(s.logger, "list_products", err, logrus.Fields{"query": filter.Query})
	}
	return products, nil
}
