// Package swapproc coordinates the trade-replication pipeline: it consumes
// swap logs from the watcher, decodes and gates them, matches them against
// follower policies and hands qualifying trades to the executor.
package swapproc

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/pairresolver"
	"github.com/gabapcia/swapmirror/internal/pkg/logger"
	"github.com/gabapcia/swapmirror/internal/pkg/usererr"
	"github.com/gabapcia/swapmirror/internal/pkg/x/chflow"
	"github.com/gabapcia/swapmirror/internal/replication"
	"github.com/gabapcia/swapmirror/internal/swapwatch"
	"github.com/gabapcia/swapmirror/internal/tradeexec"
)

// ErrServiceAlreadyStarted is returned if Start is called more than once.
var ErrServiceAlreadyStarted = errors.New("service already started")

// Service is the pipeline lifecycle entrypoint.
type Service interface {
	// Start launches the swap watcher and the processing loop. Returns
	// ErrServiceAlreadyStarted when called twice. Call Close to shut down.
	Start(ctx context.Context) error

	// Close cancels the watcher subscription and the processing loop. It is
	// safe to call without starting; in-flight trades complete on their own.
	Close()
}

type closeFunc func()

type service struct {
	mu        sync.Mutex
	isStarted bool
	closeFunc closeFunc

	watcher  swapwatch.Service
	resolver pairresolver.Resolver
	index    *replication.Index
	executor tradeexec.Service
	registry chainregistry.Registry

	contextStorage ContextStorage
	policyStorage  PolicyStorage
	notifier       Notifier
}

var _ Service = (*service)(nil)

// mapRouterLog converts a watcher delivery into the resolver's log model.
func mapRouterLog(log swapwatch.RouterLog) pairresolver.EventLog {
	return pairresolver.EventLog{
		Network: log.Network,
		Address: log.Address,
		Topics:  log.Topics,
		Data:    log.Data,
		TxHash:  log.TxHash,
		Removed: log.Removed,
	}
}

// mapSwapEvent converts a decoded swap into the matcher's view.
func mapSwapEvent(event *pairresolver.SwapEvent) replication.Swap {
	return replication.Swap{
		Network:     event.Network,
		TokenIn:     event.TokenIn,
		TokenOut:    event.TokenOut,
		AmountIn:    event.AmountIn,
		AmountOut:   event.AmountOut,
		Counterpart: event.Counterpart(),
	}
}

// notify delivers a notification, logging delivery failures instead of
// propagating them into the pipeline.
func (s *service) notify(ctx context.Context, userID, text string) {
	if err := s.notifier.Notify(ctx, userID, text); err != nil {
		logger.Error(ctx, "error delivering notification", "user.id", userID, "error", err)
	}
}

// replicateForFollower matches the swap against one follower's policies and
// executes the mirrored trade when a policy qualifies. Trade failures are
// surfaced through the notifier once and never retried.
func (s *service) replicateForFollower(ctx context.Context, userID string, event *pairresolver.SwapEvent, swap replication.Swap, native chainregistry.SharedVars) {
	if slices.Contains(event.Initiators, userID) {
		return
	}

	policies, err := s.policyStorage.UserPolicies(ctx, userID, swap.Network, swap.Counterpart)
	if err != nil {
		logger.Error(ctx, "error loading replication policies", "user.id", userID, "error", err)
		return
	}

	policy := replication.Match(swap, policies, swap.Counterpart, native.NativeToken)
	if policy == nil {
		return
	}

	execution, err := s.executor.Execute(ctx, userID, tradeexec.ReplicatedSwap{
		Network:          swap.Network,
		TokenIn:          swap.TokenIn,
		TokenOut:         swap.TokenOut,
		AmountIn:         swap.AmountIn,
		ReplicationDepth: event.ReplicationDepth,
		Initiators:       event.Initiators,
	})
	if err != nil {
		logger.Error(ctx, "error executing replicated trade", "user.id", userID, "trade.network", swap.Network, "error", err)
		s.notify(ctx, userID, fmt.Sprintf("Trade replication on %s failed: %s",
			swap.Network, usererr.Message(err, "the trade could not be executed."),
		))
		return
	}
	if execution == nil {
		return
	}

	s.notify(ctx, userID, fmt.Sprintf(
		"Replicated swap on %s: spent %s of %s for %s of %s (tx %s)",
		swap.Network, execution.AmountIn, execution.TokenIn, execution.AmountOut, execution.TokenOut, execution.TxHash,
	))
}

// processLog runs the full pipeline for one raw swap log. Every failure is
// logged and swallowed: a single bad log must never halt the stream.
func (s *service) processLog(ctx context.Context, log swapwatch.RouterLog) {
	vars, err := s.registry.SharedVars(ctx, log.Network)
	if err != nil {
		logger.Error(ctx, "error resolving chain variables", "log.network", log.Network, "error", err)
		return
	}

	event, err := s.resolver.ParseEventLog(ctx, mapRouterLog(log), vars)
	if err != nil {
		logger.Error(ctx, "error decoding swap log", "log.network", log.Network, "log.tx_hash", log.TxHash, "error", err)
		return
	}
	if event == nil {
		return
	}

	cascade, found, err := s.contextStorage.ReplicationContext(ctx, log.Network, log.TxHash)
	if err != nil {
		logger.Error(ctx, "error restoring replication context", "log.tx_hash", log.TxHash, "error", err)
		return
	}
	if found {
		event.ReplicationDepth = cascade.Depth
		event.Initiators = cascade.Initiators
	}

	swap := mapSwapEvent(event)

	process, err := s.index.ShouldProcess(ctx, swap)
	if err != nil {
		logger.Error(ctx, "error gating swap", "log.tx_hash", log.TxHash, "error", err)
		return
	}
	if !process {
		return
	}

	followers, err := s.policyStorage.Followers(ctx, swap.Network, swap.Counterpart)
	if err != nil {
		logger.Error(ctx, "error listing followers", "swap.counterpart", swap.Counterpart, "error", err)
		return
	}

	for _, userID := range followers {
		s.replicateForFollower(ctx, userID, event, swap, vars)
	}
}

// handleSwapLogs drains the watcher channel, processing each log in its own
// goroutine. Logs within a delivery arrive in chain order, but downstream
// processing of distinct logs has no required ordering.
func (s *service) handleSwapLogs(ctx context.Context, logsCh <-chan swapwatch.RouterLog) {
	for {
		log, ok := chflow.Receive(ctx, logsCh)
		if !ok {
			return
		}

		go s.processLog(ctx, log)
	}
}

func (s *service) startHandleSwapLogs(ctx context.Context, logsCh <-chan swapwatch.RouterLog) {
	go s.handleSwapLogs(ctx, logsCh)
}

func (s *service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isStarted {
		return ErrServiceAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)

	logsCh, err := s.watcher.Start(ctx)
	if err != nil {
		cancel()
		return err
	}

	s.startHandleSwapLogs(ctx, logsCh)

	s.closeFunc = func() {
		cancel()
		s.watcher.Close()
	}
	s.isStarted = true
	return nil
}

func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closeFunc != nil {
		s.closeFunc()
	}
	s.closeFunc = nil
	s.isStarted = false
}

// New wires the pipeline stages together.
func New(
	watcher swapwatch.Service,
	resolver pairresolver.Resolver,
	index *replication.Index,
	executor tradeexec.Service,
	registry chainregistry.Registry,
	contextStorage ContextStorage,
	policyStorage PolicyStorage,
	notifier Notifier,
) *service {
	return &service{
		watcher:        watcher,
		resolver:       resolver,
		index:          index,
		executor:       executor,
		registry:       registry,
		contextStorage: contextStorage,
		policyStorage:  policyStorage,
		notifier:       notifier,
	}
}
