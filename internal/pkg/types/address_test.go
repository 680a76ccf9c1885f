package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressFromString(t *testing.T) {
	t.Run("should normalize a checksummed address to lowercase", func(t *testing.T) {
		addr, err := AddressFromString("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
		require.NoError(t, err)
		assert.Equal(t, Address("0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"), addr)
	})

	t.Run("should reject a missing 0x prefix", func(t *testing.T) {
		_, err := AddressFromString("c02aaa39b223fe8d0a0e5c4f27ead9083c756cc2")
		assert.Error(t, err)
	})

	t.Run("should reject a wrong length", func(t *testing.T) {
		_, err := AddressFromString("0xc02aaa39")
		assert.Error(t, err)
	})

	t.Run("should reject non-hex characters", func(t *testing.T) {
		_, err := AddressFromString("0xz02aaa39b223fe8d0a0e5c4f27ead9083c756cc2")
		assert.Error(t, err)
	})
}

func TestAddress_IsZero(t *testing.T) {
	t.Run("should detect the zero address", func(t *testing.T) {
		assert.True(t, Address("0x0000000000000000000000000000000000000000").IsZero())
	})

	t.Run("should detect an empty address", func(t *testing.T) {
		assert.True(t, Address("").IsZero())
	})

	t.Run("should report false for a real address", func(t *testing.T) {
		assert.False(t, Address("0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2").IsZero())
	})
}

func TestAddress_JSON(t *testing.T) {
	t.Run("should round trip through JSON with normalization", func(t *testing.T) {
		data, err := json.Marshal(Address("0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"))
		require.NoError(t, err)

		var addr Address
		require.NoError(t, json.Unmarshal(data, &addr))
		assert.Equal(t, Address("0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"), addr)
	})

	t.Run("should reject an invalid address on unmarshal", func(t *testing.T) {
		var addr Address
		assert.Error(t, json.Unmarshal([]byte(`"not-an-address"`), &addr))
	})
}
