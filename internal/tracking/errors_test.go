package tracking

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrors(t *testing.T) {
	t.Run("validation error carries its field", func(t *testing.T) {
		err := NewValidationError("floor", "is required")
		assert.True(t, IsValidationError(err))
		assert.Equal(t, "floor", ValidationField(err))
		assert.Contains(t, err.Error(), "floor")
	})

	t.Run("internal error is not a validation error", func(t *testing.T) {
		err := NewInternalError("state corrupted")
		assert.False(t, IsValidationError(err))
		assert.Empty(t, ValidationField(err))
	})

	t.Run("plain errors are not validation errors", func(t *testing.T) {
		assert.False(t, IsValidationError(errors.New("boom")))
	})
}
