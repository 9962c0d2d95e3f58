package repository

import (
	"context"

	"go-pos-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const defaultMovementLimit = 100

// MovementRepository is the append-only stock ledger. There is no update or
// delete: a movement is written once and never changed.
type MovementRepository interface {
	WithTx(tx *gorm.DB) MovementRepository

	Append(ctx context.Context, movement *model.StockMovement) error
	AppendBatch(ctx context.Context, movements []model.StockMovement) error
	FindAll(ctx context.Context, filter model.MovementFilter) ([]model.StockMovement, error)
	// SumByProduct returns the signed qty total per referenced product id.
	SumByProduct(ctx context.Context) (map[uuid.UUID]int, error)
}

type movementRepo struct {
	db *gorm.DB
}

func NewMovementRepo(db *gorm.DB) MovementRepository {
	return &movementRepo{db}
}

func (r *movementRepo) WithTx(tx *gorm.DB) MovementRepository {
	return &movementRepo{tx}
}

func (r *movementRepo) Append(ctx context.Context, movement *model.StockMovement) error {
	if err := checkMovement(movement); err != nil {
		return err
	}
	return errors.Wrap(r.db.WithContext(ctx).Create(movement).Error, "append movement")
}

// AppendBatch inserts movements in slice order; ids are assigned in that order.
func (r *movementRepo) AppendBatch(ctx context.Context, movements []model.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	for i := range movements {
		if err := checkMovement(&movements[i]); err != nil {
			return err
		}
	}
	return errors.Wrap(r.db.WithContext(ctx).Create(&movements).Error, "append movements")
}

func (r *movementRepo) FindAll(ctx context.Context, filter model.MovementFilter) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	q := r.db.WithContext(ctx).Model(&model.StockMovement{})

	if filter.ProductID != uuid.Nil {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultMovementLimit
	}

	err := q.Order("id DESC").Limit(limit).Find(&movements).Error
	return movements, errors.Wrap(err, "list movements")
}

func (r *movementRepo) SumByProduct(ctx context.Context) (map[uuid.UUID]int, error) {
	var rows []struct {
		ProductID uuid.UUID
		Total     int
	}
	err := r.db.WithContext(ctx).Model(&model.StockMovement{}).
		Select("product_id, COALESCE(SUM(qty), 0) AS total").
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "sum movements by product")
	}

	sums := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		sums[row.ProductID] = row.Total
	}
	return sums, nil
}

func checkMovement(m *model.StockMovement) error {
	if m.ProductID == uuid.Nil {
		return model.NewInvalidRequest("invalid movement", "movement product_id is required")
	}
	if !m.Type.Valid() {
		return model.NewInvalidRequest("invalid movement", "movement type "+string(m.Type)+" is not valid")
	}
	return nil
}
