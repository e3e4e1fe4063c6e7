package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", Validation(CodeEmptyDelay, "delay is blank"))

	assert.True(t, errors.Is(err, ErrValidation))
	assert.True(t, errors.Is(err, &Error{Kind: KindValidation, Code: CodeEmptyDelay}))
	assert.False(t, errors.Is(err, &Error{Kind: KindValidation, Code: CodeEmptyAnswer}))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestAsError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, AsError(nil))
	})

	t.Run("typed error is unwrapped", func(t *testing.T) {
		nf := NotFound("card", 7)
		got := AsError(fmt.Errorf("lookup: %w", nf))
		assert.Same(t, nf, got)
		assert.Equal(t, CodeNotFound, got.Code)
		assert.Equal(t, "card 7 not found", got.Message)
	})

	t.Run("untyped error becomes storage error", func(t *testing.T) {
		cause := errors.New("disk I/O error")
		got := AsError(cause)
		require.NotNil(t, got)
		assert.Equal(t, KindStorage, got.Kind)
		assert.Equal(t, CodeStorage, got.Code)
		assert.Equal(t, "disk I/O error", got.Message)
		assert.ErrorIs(t, got, cause)
	})
}

func TestVersioningIntegrityMessage(t *testing.T) {
	err := VersioningIntegrity("content", int64(3), 0)
	assert.Equal(t, CodeVersioningIntegrity, err.Code)
	assert.ErrorIs(t, err, ErrVersioningIntegrity)
	assert.Contains(t, err.Error(), "expected exactly one content row for key 3, got 0")
}
