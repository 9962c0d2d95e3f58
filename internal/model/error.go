package model

import (
	"errors"
	"fmt"
)

// ErrorKind is the stable discriminant carried by every failure the core returns.
type ErrorKind string

const (
	KindInvalidRequest   ErrorKind = "INVALID_REQUEST"
	KindNotFound         ErrorKind = "NOT_FOUND"
	KindDuplicateBarcode ErrorKind = "DUPLICATE_BARCODE"
	KindStockNegative    ErrorKind = "STOCK_NEGATIVE"
	KindInternal         ErrorKind = "INTERNAL"
)

// AppError is a typed failure with a human-readable detail list.
type AppError struct {
	Kind    ErrorKind
	Message string
	Details []string
	Err     error
}

// Sentinels for errors.Is. Matching is by Kind only.
var (
	ErrInvalidRequest   = &AppError{Kind: KindInvalidRequest, Message: "invalid request"}
	ErrNotFound         = &AppError{Kind: KindNotFound, Message: "product not found"}
	ErrDuplicateBarcode = &AppError{Kind: KindDuplicateBarcode, Message: "duplicate barcode"}
	ErrStockNegative    = &AppError{Kind: KindStockNegative, Message: "insufficient stock"}
	ErrInternal         = &AppError{Kind: KindInternal, Message: "internal error"}
)

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Kind == e.Kind
}

func NewInvalidRequest(message string, details ...string) *AppError {
	return newError(KindInvalidRequest, message, details)
}

func NewNotFound(message string, details ...string) *AppError {
	return newError(KindNotFound, message, details)
}

func NewDuplicateBarcode(barcode string) *AppError {
	return newError(KindDuplicateBarcode, "duplicate barcode",
		[]string{fmt.Sprintf("a product with barcode %q already exists", barcode)})
}

func NewStockNegative(details ...string) *AppError {
	if len(details) == 0 {
		details = []string{"not enough stock to complete the operation"}
	}
	return newError(KindStockNegative, "insufficient stock", details)
}

// NewInternal wraps an unexpected failure. The wrapped error is kept for
// logging; only its message reaches the caller.
func NewInternal(err error) *AppError {
	e := newError(KindInternal, "internal error", nil)
	e.Err = err
	if err != nil {
		e.Details = []string{err.Error()}
	}
	return e
}

func newError(kind ErrorKind, message string, details []string) *AppError {
	if len(details) == 0 {
		details = []string{message}
	}
	return &AppError{Kind: kind, Message: message, Details: details}
}

// AsAppError returns err as an *AppError, wrapping anything untyped as Internal.
func AsAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternal(err)
}

// KindOf reports the discriminant of err, or "" for nil.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	return AsAppError(err).Kind
}
