package errors

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	original := New("original")
	wrapped := Wrap(original, "wrapped")

	assert.Contains(t, wrapped.Error(), "wrapped")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestNewConfigurationError(t *testing.T) {
	err := NewConfigurationError("alpha %v outside (0, 1]", 1.5)

	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
	assert.False(t, IsPersistenceError(err))
	assert.Contains(t, err.Error(), "alpha 1.5 outside (0, 1]")
}

func TestWrapPersistence(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, WrapPersistence(nil, "load", "x.json"))
	})

	t.Run("keeps the cause inspectable", func(t *testing.T) {
		_, cause := os.Open("/definitely/not/here.json")
		require.Error(t, cause)

		err := WrapPersistence(cause, "load", "/definitely/not/here.json")
		assert.True(t, IsPersistenceError(err))
		assert.True(t, Is(err, os.ErrNotExist))
		assert.Contains(t, err.Error(), "load /definitely/not/here.json")
	})

	t.Run("has stack trace", func(t *testing.T) {
		err := WrapPersistence(New("disk full"), "save", "t.json")
		assert.NotNil(t, GetStack(err))
	})
}

func TestHints(t *testing.T) {
	err := WithHint(NewNotFoundError("state %q", "left"), "run qlearn train first")

	assert.True(t, IsNotFoundError(err))
	hints := GetAllHints(err)
	require.Len(t, hints, 1)
	assert.Equal(t, "run qlearn train first", hints[0])
}

func TestIs_Nil(t *testing.T) {
	assert.False(t, IsConfigurationError(nil))
	assert.False(t, IsPersistenceError(nil))
	assert.False(t, IsNotFoundError(nil))
}
