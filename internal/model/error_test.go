package model

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestAppError_IsMatchesKind(t *testing.T) {
	err := NewStockNegative("only 1 left")

	assert.ErrorIs(t, err, ErrStockNegative)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []string{"only 1 left"}, err.Details)
}

func TestAsAppError(t *testing.T) {
	wrapped := errors.Wrap(NewNotFound("product not found", "barcode X"), "lookup")
	assert.Equal(t, KindNotFound, KindOf(wrapped))

	raw := errors.New("connection reset")
	appErr := AsAppError(raw)
	assert.Equal(t, KindInternal, appErr.Kind)
	assert.Equal(t, []string{"connection reset"}, appErr.Details)
	assert.ErrorIs(t, appErr, ErrInternal)

	assert.Nil(t, AsAppError(nil))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}

func TestNewError_DefaultsDetailsToMessage(t *testing.T) {
	err := NewInvalidRequest("validation failed")
	assert.Equal(t, []string{"validation failed"}, err.Details)

	dup := NewDuplicateBarcode("779")
	assert.Equal(t, KindDuplicateBarcode, dup.Kind)
	assert.Contains(t, dup.Details[0], `"779"`)
}
