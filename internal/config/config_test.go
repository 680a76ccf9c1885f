package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/pkg/types"
)

func TestLoad(t *testing.T) {
	t.Run("should enable only networks with an RPC endpoint", func(t *testing.T) {
		t.Setenv("REDIS_ADDR", "localhost:6379")
		t.Setenv("WALLET_ENCRYPTION_KEY", "0f32b1a9d9ed68ba9f2bd164fe379ca51145e3b1be1b417608ba14fda4b44d24")
		t.Setenv("BSC_RPC_ENDPOINT", "https://bsc.example")
		t.Setenv("BSC_WS_ENDPOINT", "wss://bsc.example/ws")
		t.Setenv("BSC_ROUTER_ADDRESS", "0x10ED43C718714eb63d5aA57B78B54704E256024E")

		cfg, err := Load()
		require.NoError(t, err)

		require.Len(t, cfg.Networks, 1)
		require.Contains(t, cfg.Networks, chainregistry.NetworkBSC)
		assert.Equal(t, int64(56), cfg.Networks[chainregistry.NetworkBSC].ChainID)
	})

	t.Run("should apply defaults for tuning knobs", func(t *testing.T) {
		t.Setenv("REDIS_ADDR", "localhost:6379")
		t.Setenv("WALLET_ENCRYPTION_KEY", "0f32b1a9d9ed68ba9f2bd164fe379ca51145e3b1be1b417608ba14fda4b44d24")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, int64(300), cfg.SlippageBps)
		assert.Equal(t, 3, cfg.MaxReplicationDepth)
		assert.Equal(t, 5, cfg.MaxTokensPerNetwork)
		assert.False(t, cfg.AllowZeroMinOut)
	})

	t.Run("should opt in to zero minimum outputs", func(t *testing.T) {
		t.Setenv("REDIS_ADDR", "localhost:6379")
		t.Setenv("WALLET_ENCRYPTION_KEY", "0f32b1a9d9ed68ba9f2bd164fe379ca51145e3b1be1b417608ba14fda4b44d24")
		t.Setenv("ALLOW_ZERO_MIN_OUT", "true")

		cfg, err := Load()
		require.NoError(t, err)

		assert.True(t, cfg.AllowZeroMinOut)
	})

	t.Run("should fail without the wallet encryption key", func(t *testing.T) {
		t.Setenv("REDIS_ADDR", "localhost:6379")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestNetworkMetadata(t *testing.T) {
	t.Run("should normalize contract addresses", func(t *testing.T) {
		cfg := Config{
			Networks: map[chainregistry.Network]NetworkConfig{
				chainregistry.NetworkBSC: {
					ChainID:       56,
					RPCEndpoint:   "https://bsc.example",
					RouterAddress: "0x10ED43C718714eb63d5aA57B78B54704E256024E",
				},
			},
		}

		networks := cfg.NetworkMetadata()
		require.Contains(t, networks, chainregistry.NetworkBSC)
		assert.Equal(t, types.Address("0x10ed43c718714eb63d5aa57b78b54704e256024e"), networks[chainregistry.NetworkBSC].Router)
	})
}
