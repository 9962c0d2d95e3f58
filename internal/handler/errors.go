package handler

import (
	"errors"

	"go-pos-inventory/internal/model"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps an error kind to its HTTP status.
func statusFor(kind model.ErrorKind) int {
	switch kind {
	case model.KindInvalidRequest, model.KindDuplicateBarcode, model.KindStockNegative:
		return fiber.StatusBadRequest
	case model.KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes the standard error envelope: error, code, details.
func respondError(c *fiber.Ctx, err error) error {
	appErr := model.AsAppError(err)
	return c.Status(statusFor(appErr.Kind)).JSON(fiber.Map{
		"error":   appErr.Message,
		"code":    appErr.Kind,
		"details": appErr.Details,
	})
}

func badRequest(c *fiber.Ctx, details ...string) error {
	return respondError(c, model.NewInvalidRequest("invalid request", details...))
}

// ErrorHandler renders errors that escape handlers (unknown routes, panics
// turned into errors by the recover middleware) in the same envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		kind := model.KindInternal
		switch {
		case fe.Code == fiber.StatusNotFound:
			kind = model.KindNotFound
		case fe.Code < fiber.StatusInternalServerError:
			kind = model.KindInvalidRequest
		}
		return c.Status(fe.Code).JSON(fiber.Map{
			"error":   fe.Message,
			"code":    kind,
			"details": []string{fe.Message},
		})
	}
	return respondError(c, err)
}
