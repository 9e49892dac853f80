package interfaces

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRepositoryErrors_Wrapping(t *testing.T) {
	wrapped := fmt.Errorf("insert bookmark: %w", ErrDuplicateKey)

	require.True(t, errors.Is(wrapped, ErrDuplicateKey))
	require.False(t, errors.Is(wrapped, ErrNoDocuments))
	require.Equal(t, "DUPLICATE_KEY", ErrDuplicateKey.Code)
	require.Equal(t, "duplicate key error", ErrDuplicateKey.Error())
}
