// Package swapwatch streams decentralized-exchange swap logs from every
// configured network and fans them into a single bounded channel for the
// processing pipeline. Listeners for different networks are independent:
// one network stalling or disconnecting never blocks another, and a single
// malformed delivery is skipped, not fatal to its subscription.
package swapwatch

import (
	"context"
	"errors"
	"sync"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/pkg/logger"
	"github.com/gabapcia/swapmirror/internal/pkg/x/chflow"
)

// ErrServiceAlreadyStarted is returned when Start is called on a service
// that is already watching.
var ErrServiceAlreadyStarted = errors.New("service already started")

const (
	dispatchFailureChannelBufferSize = 5
	swapLogChannelBufferSize         = 64
)

// Service is the swap watcher lifecycle: Idle until Start, Watching while
// the per-network listeners run, Stopped after Close.
type Service interface {
	// Start opens a swap log subscription per configured network and
	// returns the channel decoded deliveries are fanned into. Returns
	// ErrServiceAlreadyStarted when already watching.
	Start(ctx context.Context) (<-chan RouterLog, error)

	// Close cancels all active subscriptions. It is idempotent and safe to
	// call with none active; in-flight downstream processing is not awaited.
	Close()
}

type closeFunc func()

type dispatchFailureHandler func(ctx context.Context, failure LogDispatchFailure)

type service struct {
	mu        sync.Mutex
	isStarted bool
	closeFunc closeFunc

	networks map[chainregistry.Network]LogStreamer

	dispatchFailureHandler dispatchFailureHandler
}

var _ Service = (*service)(nil)

// dispatchSubscriptionEvents drains one network's subscription, forwarding
// raw logs to logsCh and delivery errors to failuresCh. A failed delivery
// never terminates the loop: the next event is processed normally.
func (s *service) dispatchSubscriptionEvents(ctx context.Context, network chainregistry.Network, eventsCh <-chan LogEvent, logsCh chan<- RouterLog, failuresCh chan<- LogDispatchFailure) {
	for {
		event, ok := chflow.Receive(ctx, eventsCh)
		if !ok {
			return
		}

		if event.Err != nil {
			failure := LogDispatchFailure{
				Network: network,
				Errors:  []error{event.Err},
			}
			if ok := chflow.Send(ctx, failuresCh, failure); !ok {
				return
			}
			continue
		}

		if ok := chflow.Send(ctx, logsCh, event.Log); !ok {
			return
		}
	}
}

// launchAllNetworkSubscriptions opens one subscription per configured
// network and starts a dispatch goroutine for each. logsCh and failuresCh
// are shared channels owned by the caller, which must wait on wg before
// closing them: a dispatcher may still be inside a send.
func (s *service) launchAllNetworkSubscriptions(ctx context.Context, wg *sync.WaitGroup, logsCh chan<- RouterLog, failuresCh chan<- LogDispatchFailure) error {
	for network, streamer := range s.networks {
		eventsCh, err := streamer.SubscribeSwapLogs(ctx, network)
		if err != nil {
			return err
		}

		wg.Add(1)
		go func(network chainregistry.Network, eventsCh <-chan LogEvent) {
			defer wg.Done()
			s.dispatchSubscriptionEvents(ctx, network, eventsCh, logsCh, failuresCh)
		}(network, eventsCh)
	}

	return nil
}

// handleDispatchFailures consumes delivery failures and hands each to the
// configured handler. It blocks until failuresCh closes or ctx is canceled.
func (s *service) handleDispatchFailures(ctx context.Context, failuresCh <-chan LogDispatchFailure) {
	for {
		failure, ok := chflow.Receive(ctx, failuresCh)
		if !ok {
			return
		}

		if s.dispatchFailureHandler != nil {
			s.dispatchFailureHandler(ctx, failure)
		}
	}
}

func (s *service) startHandleDispatchFailures(ctx context.Context, failuresCh <-chan LogDispatchFailure) {
	go s.handleDispatchFailures(ctx, failuresCh)
}

func (s *service) Start(ctx context.Context) (<-chan RouterLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isStarted {
		return nil, ErrServiceAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)

	var (
		failuresCh = make(chan LogDispatchFailure, dispatchFailureChannelBufferSize)
		logsCh     = make(chan RouterLog, swapLogChannelBufferSize)

		dispatchers sync.WaitGroup
	)

	s.closeFunc = func() {
		cancel()
		dispatchers.Wait()
		close(logsCh)
		close(failuresCh)
	}

	s.startHandleDispatchFailures(ctx, failuresCh)

	if err := s.launchAllNetworkSubscriptions(ctx, &dispatchers, logsCh, failuresCh); err != nil {
		s.closeFunc()
		return nil, err
	}

	s.isStarted = true
	return logsCh, nil
}

func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closeFunc != nil {
		s.closeFunc()
	}
	s.isStarted = false
	s.closeFunc = nil
}

type config struct {
	dispatchFailureHandler dispatchFailureHandler
}

// Option customizes the service.
type Option func(*config)

// WithDispatchFailureHandler replaces the default failure handler, which
// logs and drops the failed delivery.
func WithDispatchFailureHandler(f dispatchFailureHandler) Option {
	return func(c *config) {
		c.dispatchFailureHandler = f
	}
}

func defaultOnDispatchFailure(ctx context.Context, failure LogDispatchFailure) {
	logger.Error(ctx, "swap log dispatch failure",
		"log.network", failure.Network,
		"log.errors", errors.Join(failure.Errors...),
	)
}

// New creates the watcher over one LogStreamer per network.
func New(networks map[chainregistry.Network]LogStreamer, opts ...Option) *service {
	cfg := config{
		dispatchFailureHandler: defaultOnDispatchFailure,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		networks:               networks,
		dispatchFailureHandler: cfg.dispatchFailureHandler,
	}
}
