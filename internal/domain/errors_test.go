package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrorValidation, CodeOf(NewValidation("nome", "nome is required")))
	assert.Equal(t, ErrorNotFound, CodeOf(NewNotFound("id", 7)))
	assert.Equal(t, ErrorVersionConflict, CodeOf(NewConflict(1, 2, 3)))
	assert.Equal(t, ErrorInsufficientBalance,
		CodeOf(NewInsufficientBalance(1, decimal.NewFromInt(5), decimal.NewFromInt(9))))

	assert.Empty(t, CodeOf(errors.New("plain")))
	assert.Empty(t, CodeOf(nil))
}

func TestCodeOfWrapped(t *testing.T) {
	err := fmt.Errorf("handling request: %w", NewNotFound("fromId", 42))
	assert.True(t, IsCode(err, ErrorNotFound))
}

func TestErrorMessagesCarryDetail(t *testing.T) {
	err := NewInsufficientBalance(7, decimal.NewFromInt(100), decimal.NewFromInt(250))
	assert.Contains(t, err.Error(), "7")
	assert.Contains(t, err.Error(), "100")
	assert.Contains(t, err.Error(), "250")

	err = NewConflict(3, 1, 4)
	assert.Contains(t, err.Error(), "expected 1")
	assert.Contains(t, err.Error(), "current 4")
}
