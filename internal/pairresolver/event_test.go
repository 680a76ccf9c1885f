package pairresolver

import (
	"math/big"
	"testing"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// topicFor packs an address into a 32-byte indexed topic.
func topicFor(addr types.Address) string {
	return "0x000000000000000000000000" + addr.String()[2:]
}

// swapData ABI-encodes the four Swap amounts into log data.
func swapData(amount0In, amount1In, amount0Out, amount1Out *big.Int) []byte {
	data := make([]byte, 4*evmWordSize)
	for i, amount := range []*big.Int{amount0In, amount1In, amount0Out, amount1Out} {
		amount.FillBytes(data[i*evmWordSize : (i+1)*evmWordSize])
	}
	return data
}

func testSharedVars() chainregistry.SharedVars {
	return chainregistry.SharedVars{
		Meta:        chainregistry.Metadata{Network: chainregistry.NetworkBSC, ChainID: 56},
		NativeToken: testWNB,
		Router:      "0x10ed43c718714eb63d5aa57b78b54704e256024e",
	}
}

func validSwapLog() EventLog {
	return EventLog{
		Network: chainregistry.NetworkBSC,
		Address: testPair,
		Topics: []string{
			SwapTopic,
			topicFor("0x10ed43c718714eb63d5aa57b78b54704e256024e"),
			topicFor("0x4444444444444444444444444444444444444444"),
		},
		Data:   swapData(big.NewInt(1000), big.NewInt(0), big.NewInt(0), big.NewInt(500)),
		TxHash: "0xABCDEF",
	}
}

func TestResolver_ParseEventLog(t *testing.T) {
	vars := testSharedVars()

	t.Run("should decode a token0 to token1 swap", func(t *testing.T) {
		r, _, _ := newTestResolver()

		event, err := r.ParseEventLog(t.Context(), validSwapLog(), vars)
		require.NoError(t, err)
		require.NotNil(t, event)

		assert.Equal(t, "Swap", event.EventName)
		assert.Equal(t, testToken0, event.TokenIn)
		assert.Equal(t, testToken1, event.TokenOut)
		assert.Equal(t, big.NewInt(1000), event.AmountIn)
		assert.Equal(t, big.NewInt(500), event.AmountOut)
		assert.Equal(t, vars.Router, event.Router)
		assert.Equal(t, "0xabcdef", event.TxHash)
		assert.Zero(t, event.ReplicationDepth)
	})

	t.Run("should decode the reverse direction from leg 1", func(t *testing.T) {
		r, _, _ := newTestResolver()

		log := validSwapLog()
		log.Data = swapData(big.NewInt(0), big.NewInt(2000), big.NewInt(750), big.NewInt(0))

		event, err := r.ParseEventLog(t.Context(), log, vars)
		require.NoError(t, err)
		require.NotNil(t, event)

		assert.Equal(t, testToken1, event.TokenIn)
		assert.Equal(t, testToken0, event.TokenOut)
		assert.Equal(t, big.NewInt(2000), event.AmountIn)
		assert.Equal(t, big.NewInt(750), event.AmountOut)
	})

	t.Run("should return nil for a log with a different signature", func(t *testing.T) {
		r, _, _ := newTestResolver()

		log := validSwapLog()
		log.Topics[0] = "0x1c411e9a96e071241c2f21f7726b17ae89e3cab4c78be50e062b03a9fffbbad1"

		event, err := r.ParseEventLog(t.Context(), log, vars)
		require.NoError(t, err)
		assert.Nil(t, event)
	})

	t.Run("should return nil for a log with missing topics", func(t *testing.T) {
		r, _, _ := newTestResolver()

		log := validSwapLog()
		log.Topics = log.Topics[:2]

		event, err := r.ParseEventLog(t.Context(), log, vars)
		require.NoError(t, err)
		assert.Nil(t, event)
	})

	t.Run("should return nil for truncated data", func(t *testing.T) {
		r, _, _ := newTestResolver()

		log := validSwapLog()
		log.Data = log.Data[:3*evmWordSize]

		event, err := r.ParseEventLog(t.Context(), log, vars)
		require.NoError(t, err)
		assert.Nil(t, event)
	})

	t.Run("should return nil for a reorged-out log", func(t *testing.T) {
		r, _, _ := newTestResolver()

		log := validSwapLog()
		log.Removed = true

		event, err := r.ParseEventLog(t.Context(), log, vars)
		require.NoError(t, err)
		assert.Nil(t, event)
	})
}

func TestSwapEvent_Counterpart(t *testing.T) {
	t.Run("should use the recipient when it is not the router", func(t *testing.T) {
		event := SwapEvent{
			Router:    "0x10ed43c718714eb63d5aa57b78b54704e256024e",
			Sender:    "0x5555555555555555555555555555555555555555",
			Recipient: "0x4444444444444444444444444444444444444444",
		}
		assert.Equal(t, types.Address("0x4444444444444444444444444444444444444444"), event.Counterpart())
	})

	t.Run("should fall back to the sender when the router receives the output", func(t *testing.T) {
		event := SwapEvent{
			Router:    "0x10ed43c718714eb63d5aa57b78b54704e256024e",
			Sender:    "0x5555555555555555555555555555555555555555",
			Recipient: "0x10ed43c718714eb63d5aa57b78b54704e256024e",
		}
		assert.Equal(t, types.Address("0x5555555555555555555555555555555555555555"), event.Counterpart())
	})
}
