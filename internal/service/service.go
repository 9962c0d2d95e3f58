package service

import (
	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/ws"
	"go-pos-inventory/pkg/validator"

	"github.com/sirupsen/logrus"
)

// Notifier receives stock events after a mutation commits.
type Notifier interface {
	Publish(payload interface{})
}

type noopNotifier struct{}

func (noopNotifier) Publish(interface{}) {}

func orNoop(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

// validate runs struct-tag validation and returns an InvalidRequest on failure.
func validate(req interface{}) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return model.NewInvalidRequest("validation failed", validator.Messages(errs)...)
	}
	return nil
}

// failure converts err to an *AppError and logs it: internal errors at error
// level with their stack, business rejections at info.
func failure(logger *logrus.Logger, op string, err error, fields logrus.Fields) error {
	appErr := model.AsAppError(err)
	entry := logger.WithFields(fields).WithField("op", op)
	if appErr.Kind == model.KindInternal {
		entry.Errorf("%+v", err)
	} else {
		entry.WithField("kind", appErr.Kind).Info(appErr.Message)
	}
	return appErr
}

func productState(p model.Product) ws.ProductState {
	return ws.ProductState{
		ID:        p.ID.String(),
		Barcode:   p.Barcode,
		Name:      p.Name,
		StockQty:  p.StockQty,
		SalePrice: p.SalePrice,
		LowStock:  p.IsLowStock(),
	}
}

func stockEvent(action, message string, products ...model.Product) ws.Event {
	states := make([]ws.ProductState, 0, len(products))
	for _, p := range products {
		states = append(states, productState(p))
	}
	return ws.Event{
		Type:     ws.TypeStockUpdate,
		Action:   action,
		Products: states,
		Message:  message,
	}
}
