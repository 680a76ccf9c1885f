package pairresolver

import (
	"context"
	"math/big"
	"strings"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/pkg/types"
)

// swapEventName is the canonical name of the AMM swap event.
const swapEventName = "Swap"

// SwapTopic is the keccak256 hash of the canonical pair swap event
// signature, Swap(address,uint256,uint256,uint256,uint256,address).
const SwapTopic = "0xd78ad95fa46c994b6551d0da85fc275fe613ce37657fb8d5e3d130840159d822"

const (
	// swapTopicCount is the expected number of topics on a Swap log: the
	// event signature plus the indexed sender and recipient.
	swapTopicCount = 3

	// swapDataWords is the number of 32-byte words in the Swap log data:
	// amount0In, amount1In, amount0Out, amount1Out.
	swapDataWords = 4

	// evmWordSize is the size of one ABI-encoded word in bytes.
	evmWordSize = 32
)

// EventLog is a raw log delivered by a network subscription, reduced to the
// fields the resolver needs to decode a swap.
type EventLog struct {
	Network chainregistry.Network // network the log was emitted on
	Address types.Address         // emitting contract (the pair)
	Topics  []string              // indexed fields, topic 0 is the signature
	Data    []byte                // ABI-encoded non-indexed fields
	TxHash  string                // transaction that emitted the log
	Removed bool                  // true when the log was reorged out
}

// SwapEvent is a fully decoded swap with its direction resolved against the
// pair's token order. ReplicationDepth and Initiators carry the replication
// cascade state across trades: depth grows by exactly one per mirrored hop
// and the initiator list accumulates every user already involved.
type SwapEvent struct {
	EventName        string
	Pair             types.Address
	Router           types.Address
	Sender           types.Address
	Recipient        types.Address
	AmountIn         *big.Int
	AmountOut        *big.Int
	TokenIn          types.Address
	TokenOut         types.Address
	Network          chainregistry.Network
	TxHash           string
	ReplicationDepth int
	Initiators       []string
}

// Counterpart returns the wallet address the swap is attributed to for
// subscription gating: the recipient of the output leg, unless that is the
// router itself (token-to-native swaps pay out through the router), in which
// case the sender is used.
func (e SwapEvent) Counterpart() types.Address {
	if e.Recipient == e.Router {
		return e.Sender
	}
	return e.Recipient
}

// addressFromTopic extracts the address packed into a 32-byte indexed topic.
func addressFromTopic(topic string) (types.Address, bool) {
	raw := strings.TrimPrefix(strings.ToLower(topic), "0x")
	if len(raw) != evmWordSize*2 {
		return "", false
	}
	return types.NormalizeAddress("0x" + raw[24:]), true
}

// wordAt decodes the i-th 32-byte word of ABI-encoded data as an unsigned
// big integer.
func wordAt(data []byte, i int) *big.Int {
	return new(big.Int).SetBytes(data[i*evmWordSize : (i+1)*evmWordSize])
}

func (r *resolver) ParseEventLog(ctx context.Context, log EventLog, vars chainregistry.SharedVars) (*SwapEvent, error) {
	// Shape checks: anything that is not a well-formed Swap log is silently
	// irrelevant, including reorged-out logs.
	if log.Removed || len(log.Topics) != swapTopicCount || len(log.Data) != swapDataWords*evmWordSize {
		return nil, nil
	}

	if !strings.EqualFold(log.Topics[0], SwapTopic) {
		return nil, nil
	}

	sender, ok := addressFromTopic(log.Topics[1])
	if !ok {
		return nil, nil
	}

	recipient, ok := addressFromTopic(log.Topics[2])
	if !ok {
		return nil, nil
	}

	pair, err := r.PairByAddress(ctx, log.Network, log.Address)
	if err != nil {
		return nil, err
	}

	var (
		amount0In  = wordAt(log.Data, 0)
		amount1In  = wordAt(log.Data, 1)
		amount0Out = wordAt(log.Data, 2)
		amount1Out = wordAt(log.Data, 3)
	)

	event := &SwapEvent{
		EventName: swapEventName,
		Pair:      pair.Pair,
		Router:    vars.Router,
		Sender:    sender,
		Recipient: recipient,
		Network:   log.Network,
		TxHash:    strings.ToLower(log.TxHash),
	}

	// Direction comes from which leg carries the input amount: a non-zero
	// amount on leg 0 means token0 entered the pair.
	if amount0In.Sign() > 0 {
		event.TokenIn, event.AmountIn = pair.Token0, amount0In
		event.TokenOut, event.AmountOut = pair.Token1, amount1Out
	} else {
		event.TokenIn, event.AmountIn = pair.Token1, amount1In
		event.TokenOut, event.AmountOut = pair.Token0, amount0Out
	}

	return event, nil
}
