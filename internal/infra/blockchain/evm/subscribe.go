package evm

import (
	"context"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/pairresolver"
	"github.com/gabapcia/swapmirror/internal/pkg/logger"
	"github.com/gabapcia/swapmirror/internal/pkg/x/chflow"
	"github.com/gabapcia/swapmirror/internal/swapwatch"
)

const (
	// resubscribeCooldown is the fixed pause before reopening a dropped
	// log subscription.
	resubscribeCooldown = 5 * time.Second

	rawLogChannelBufferSize = 256
)

// swapFilterQuery matches every pair Swap log on the network. Relevance
// filtering happens downstream; the subscription only pins the topic.
func swapFilterQuery() ethereum.FilterQuery {
	return ethereum.FilterQuery{
		Topics: [][]common.Hash{{common.HexToHash(pairresolver.SwapTopic)}},
	}
}

// mapLog converts a go-ethereum log delivery into the watcher's model.
func mapLog(network chainregistry.Network, log gethtypes.Log) swapwatch.RouterLog {
	topics := make([]string, len(log.Topics))
	for i, topic := range log.Topics {
		topics[i] = topic.Hex()
	}

	return swapwatch.RouterLog{
		Network: network,
		Address: fromCommon(log.Address),
		Topics:  topics,
		Data:    log.Data,
		TxHash:  log.TxHash.Hex(),
		Removed: log.Removed,
	}
}

// streamSwapLogs keeps one subscription alive for the lifetime of ctx,
// resubscribing after a fixed cooldown whenever the transport drops.
// Subscription errors are surfaced as events; they never terminate the
// stream.
func (c *Client) streamSwapLogs(ctx context.Context, nc *networkClient, network chainregistry.Network, eventsCh chan<- swapwatch.LogEvent) {
	defer close(eventsCh)

	for {
		rawCh := make(chan gethtypes.Log, rawLogChannelBufferSize)

		sub, err := nc.ws.SubscribeFilterLogs(ctx, swapFilterQuery(), rawCh)
		if err != nil {
			if !chflow.Send(ctx, eventsCh, swapwatch.LogEvent{Err: err}) {
				return
			}
			if !sleep(ctx, resubscribeCooldown) {
				return
			}
			continue
		}

		logger.Info(ctx, "swap log subscription established", "log.network", network)

		if !c.drainSubscription(ctx, network, sub, rawCh, eventsCh) {
			sub.Unsubscribe()
			return
		}

		sub.Unsubscribe()
		if !sleep(ctx, resubscribeCooldown) {
			return
		}
	}
}

// drainSubscription forwards raw logs until the subscription errors out
// (returns true, caller resubscribes) or ctx ends (returns false).
func (c *Client) drainSubscription(ctx context.Context, network chainregistry.Network, sub ethereum.Subscription, rawCh <-chan gethtypes.Log, eventsCh chan<- swapwatch.LogEvent) bool {
	for {
		select {
		case <-ctx.Done():
			return false

		case err := <-sub.Err():
			if err != nil {
				chflow.Send(ctx, eventsCh, swapwatch.LogEvent{Err: err})
			}
			return true

		case log := <-rawCh:
			if !chflow.Send(ctx, eventsCh, swapwatch.LogEvent{Log: mapLog(network, log)}) {
				return false
			}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// SubscribeSwapLogs opens the swap log stream for one network. The returned
// channel closes when ctx is canceled; transport drops are handled
// internally with a cooldown-based resubscribe.
func (c *Client) SubscribeSwapLogs(ctx context.Context, network chainregistry.Network) (<-chan swapwatch.LogEvent, error) {
	nc, err := c.network(network)
	if err != nil {
		return nil, err
	}

	eventsCh := make(chan swapwatch.LogEvent, rawLogChannelBufferSize)
	go c.streamSwapLogs(ctx, nc, network, eventsCh)

	return eventsCh, nil
}
