package swapwatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/pkg/logger"
)

func init() {
	// Initialize logger for tests to prevent nil pointer dereference
	_ = logger.Init(logger.WithLevel("error")) // Use error level to reduce test output
}

type logStreamerFake struct {
	mu     sync.Mutex
	events map[chainregistry.Network]chan LogEvent
	err    error
	calls  []chainregistry.Network
}

func newLogStreamerFake() *logStreamerFake {
	return &logStreamerFake{events: make(map[chainregistry.Network]chan LogEvent)}
}

func (f *logStreamerFake) SubscribeSwapLogs(ctx context.Context, network chainregistry.Network) (<-chan LogEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, network)
	if f.err != nil {
		return nil, f.err
	}

	ch := make(chan LogEvent, 10)
	f.events[network] = ch
	return ch, nil
}

func (f *logStreamerFake) emit(network chainregistry.Network, event LogEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.events[network] <- event
}

// staticStreamerFake hands out a pre-filled events channel.
type staticStreamerFake struct {
	events chan LogEvent
}

func (f staticStreamerFake) SubscribeSwapLogs(ctx context.Context, network chainregistry.Network) (<-chan LogEvent, error) {
	return f.events, nil
}

func TestStart(t *testing.T) {
	t.Run("should forward swap logs from every network into a single channel", func(t *testing.T) {
		streamer := newLogStreamerFake()
		svc := New(map[chainregistry.Network]LogStreamer{
			chainregistry.NetworkEthereum: streamer,
			chainregistry.NetworkBSC:      streamer,
		})
		t.Cleanup(svc.Close)

		logsCh, err := svc.Start(t.Context())
		require.NoError(t, err)

		streamer.emit(chainregistry.NetworkEthereum, LogEvent{
			Log: RouterLog{Network: chainregistry.NetworkEthereum, TxHash: "0xaaa"},
		})
		streamer.emit(chainregistry.NetworkBSC, LogEvent{
			Log: RouterLog{Network: chainregistry.NetworkBSC, TxHash: "0xbbb"},
		})

		seen := make(map[string]chainregistry.Network)
		for range 2 {
			select {
			case log := <-logsCh:
				seen[log.TxHash] = log.Network
			case <-time.After(time.Second):
				t.Fatal("timed out waiting for swap log")
			}
		}

		assert.Equal(t, chainregistry.NetworkEthereum, seen["0xaaa"])
		assert.Equal(t, chainregistry.NetworkBSC, seen["0xbbb"])
		assert.ElementsMatch(t, []chainregistry.Network{chainregistry.NetworkEthereum, chainregistry.NetworkBSC}, streamer.calls)
	})

	t.Run("should fail when already started", func(t *testing.T) {
		svc := New(map[chainregistry.Network]LogStreamer{
			chainregistry.NetworkEthereum: newLogStreamerFake(),
		})
		t.Cleanup(svc.Close)

		_, err := svc.Start(t.Context())
		require.NoError(t, err)

		_, err = svc.Start(t.Context())
		assert.ErrorIs(t, err, ErrServiceAlreadyStarted)
	})

	t.Run("should fail when a subscription cannot be opened", func(t *testing.T) {
		streamer := newLogStreamerFake()
		streamer.err = errors.New("dial failed")

		svc := New(map[chainregistry.Network]LogStreamer{
			chainregistry.NetworkEthereum: streamer,
		})

		_, err := svc.Start(t.Context())
		assert.Error(t, err)
	})

	t.Run("should route delivery errors to the failure handler without stopping the stream", func(t *testing.T) {
		var (
			failuresMu sync.Mutex
			failures   []LogDispatchFailure
		)

		streamer := newLogStreamerFake()
		svc := New(
			map[chainregistry.Network]LogStreamer{chainregistry.NetworkEthereum: streamer},
			WithDispatchFailureHandler(func(ctx context.Context, failure LogDispatchFailure) {
				failuresMu.Lock()
				defer failuresMu.Unlock()
				failures = append(failures, failure)
			}),
		)
		t.Cleanup(svc.Close)

		logsCh, err := svc.Start(t.Context())
		require.NoError(t, err)

		streamer.emit(chainregistry.NetworkEthereum, LogEvent{Err: errors.New("connection reset")})
		streamer.emit(chainregistry.NetworkEthereum, LogEvent{
			Log: RouterLog{Network: chainregistry.NetworkEthereum, TxHash: "0xccc"},
		})

		select {
		case log := <-logsCh:
			assert.Equal(t, "0xccc", log.TxHash)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for swap log after delivery error")
		}

		assert.Eventually(t, func() bool {
			failuresMu.Lock()
			defer failuresMu.Unlock()
			return len(failures) == 1
		}, time.Second, 10*time.Millisecond)
	})
}

func TestClose(t *testing.T) {
	t.Run("should be safe to call without starting", func(t *testing.T) {
		svc := New(nil)
		assert.NotPanics(t, svc.Close)
	})

	t.Run("should wait for blocked deliveries before closing the stream", func(t *testing.T) {
		// More pending events than the output buffer holds, so the
		// dispatcher is blocked mid-send when Close runs.
		events := make(chan LogEvent, swapLogChannelBufferSize+16)
		for range cap(events) {
			events <- LogEvent{Log: RouterLog{Network: chainregistry.NetworkEthereum}}
		}

		svc := New(map[chainregistry.Network]LogStreamer{
			chainregistry.NetworkEthereum: staticStreamerFake{events: events},
		})

		logsCh, err := svc.Start(t.Context())
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			return len(logsCh) == swapLogChannelBufferSize
		}, time.Second, time.Millisecond)

		assert.NotPanics(t, svc.Close)
	})

	t.Run("should allow starting again after close", func(t *testing.T) {
		svc := New(map[chainregistry.Network]LogStreamer{
			chainregistry.NetworkEthereum: newLogStreamerFake(),
		})

		_, err := svc.Start(t.Context())
		require.NoError(t, err)

		svc.Close()

		_, err = svc.Start(t.Context())
		require.NoError(t, err)
		svc.Close()
	})
}
