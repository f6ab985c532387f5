package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryError_Format(t *testing.T) {
	err := &MemoryError{Op: "Store", Err: errors.New("boom")}
	assert.Equal(t, "memento: Store: boom", err.Error())
}

func TestMemoryError_Unwrap(t *testing.T) {
	wrapped := NewMemoryError("Search", fmt.Errorf("%w: user id is required", ErrValidation))
	require.Error(t, wrapped)

	assert.ErrorIs(t, wrapped, ErrValidation)

	var memErr *MemoryError
	require.ErrorAs(t, wrapped, &memErr)
	assert.Equal(t, "Search", memErr.Op)
}

func TestNewMemoryError_NilPassthrough(t *testing.T) {
	assert.NoError(t, NewMemoryError("Store", nil))
}
