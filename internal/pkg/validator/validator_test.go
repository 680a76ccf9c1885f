package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	type wallet struct {
		UserID  string `validate:"required"`
		Network string `validate:"required"`
		Address string `validate:"required"`
	}

	t.Run("should accept a fully populated struct", func(t *testing.T) {
		err := Validate(wallet{
			UserID:  "user-1",
			Network: "bsc",
			Address: "0x1111111111111111111111111111111111111111",
		})
		assert.NoError(t, err)
	})

	t.Run("should wrap failures with the sentinel error", func(t *testing.T) {
		err := Validate(wallet{UserID: "user-1"})

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("should name every failing field", func(t *testing.T) {
		err := Validate(wallet{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "'UserID'")
		assert.Contains(t, err.Error(), "'Network'")
		assert.Contains(t, err.Error(), "'Address'")
	})

	t.Run("should reject the empty struct but not a populated nested one", func(t *testing.T) {
		type subscription struct {
			Owner wallet `validate:"required"`
		}

		assert.Error(t, Validate(subscription{}))
		assert.NoError(t, Validate(subscription{Owner: wallet{
			UserID:  "user-1",
			Network: "bsc",
			Address: "0x1111111111111111111111111111111111111111",
		}}))
	})
}
