package evm

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/pairresolver"
)

func TestParseContractABIs(t *testing.T) {
	t.Run("should parse every embedded fragment", func(t *testing.T) {
		abis, err := parseContractABIs()
		require.NoError(t, err)

		assert.Contains(t, abis.factory.Methods, "getPair")
		assert.Contains(t, abis.pair.Methods, "token0")
		assert.Contains(t, abis.router.Methods, "swapExactETHForTokens")
		assert.Contains(t, abis.erc20.Methods, "balanceOf")
	})

	t.Run("should derive the canonical swap topic from the pair event", func(t *testing.T) {
		abis, err := parseContractABIs()
		require.NoError(t, err)

		assert.Equal(t,
			strings.ToLower(pairresolver.SwapTopic),
			strings.ToLower(abis.pair.Events["Swap"].ID.Hex()),
		)
	})
}

func TestGenerateWallet(t *testing.T) {
	t.Run("should produce a key that derives the reported address", func(t *testing.T) {
		client := &Client{}

		address, privateKeyHex, err := client.GenerateWallet()
		require.NoError(t, err)

		key, err := crypto.HexToECDSA(privateKeyHex)
		require.NoError(t, err)

		derived := crypto.PubkeyToAddress(key.PublicKey)
		assert.Equal(t, strings.ToLower(derived.Hex()), address.String())
	})

	t.Run("should generate distinct keys", func(t *testing.T) {
		client := &Client{}

		_, first, err := client.GenerateWallet()
		require.NoError(t, err)
		_, second, err := client.GenerateWallet()
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})
}

func swapLog(amount0In, amount1In, amount0Out, amount1Out int64) *gethtypes.Log {
	data := make([]byte, 4*32)
	for i, amount := range []int64{amount0In, amount1In, amount0Out, amount1Out} {
		big.NewInt(amount).FillBytes(data[i*32 : (i+1)*32])
	}
	return &gethtypes.Log{
		Topics: []common.Hash{common.HexToHash(pairresolver.SwapTopic)},
		Data:   data,
	}
}

func TestSwapAmountsFromLogs(t *testing.T) {
	t.Run("should read amounts from a leg 0 input", func(t *testing.T) {
		amountIn, amountOut, ok := swapAmountsFromLogs([]*gethtypes.Log{swapLog(100, 0, 0, 95)})
		require.True(t, ok)

		assert.Equal(t, big.NewInt(100), amountIn)
		assert.Equal(t, big.NewInt(95), amountOut)
	})

	t.Run("should read amounts from a leg 1 input", func(t *testing.T) {
		amountIn, amountOut, ok := swapAmountsFromLogs([]*gethtypes.Log{swapLog(0, 100, 95, 0)})
		require.True(t, ok)

		assert.Equal(t, big.NewInt(100), amountIn)
		assert.Equal(t, big.NewInt(95), amountOut)
	})

	t.Run("should use the last swap log of the receipt", func(t *testing.T) {
		logs := []*gethtypes.Log{swapLog(1, 0, 0, 1), swapLog(200, 0, 0, 190)}

		amountIn, amountOut, ok := swapAmountsFromLogs(logs)
		require.True(t, ok)

		assert.Equal(t, big.NewInt(200), amountIn)
		assert.Equal(t, big.NewInt(190), amountOut)
	})

	t.Run("should report when no swap log exists", func(t *testing.T) {
		other := &gethtypes.Log{Topics: []common.Hash{common.HexToHash("0x" + strings.Repeat("11", 32))}}

		_, _, ok := swapAmountsFromLogs([]*gethtypes.Log{other})
		assert.False(t, ok)
	})
}

func TestMapLog(t *testing.T) {
	t.Run("should normalize addresses and keep topic order", func(t *testing.T) {
		raw := gethtypes.Log{
			Address: common.HexToAddress("0xABCDEF0123456789abcdef0123456789ABCDEF01"),
			Topics: []common.Hash{
				common.HexToHash(pairresolver.SwapTopic),
				common.HexToHash("0x" + strings.Repeat("22", 32)),
			},
			Data:    []byte{0x01},
			TxHash:  common.HexToHash("0x" + strings.Repeat("33", 32)),
			Removed: true,
		}

		log := mapLog(chainregistry.NetworkEthereum, raw)

		assert.Equal(t, chainregistry.NetworkEthereum, log.Network)
		assert.Equal(t, "0xabcdef0123456789abcdef0123456789abcdef01", log.Address.String())
		assert.Len(t, log.Topics, 2)
		assert.True(t, log.Removed)
	})
}
