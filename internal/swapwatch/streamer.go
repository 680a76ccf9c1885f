package swapwatch

import (
	"context"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/pkg/types"
)

// RouterLog is a raw swap log delivered by a network subscription, annotated
// with the network it was emitted on.
type RouterLog struct {
	Network chainregistry.Network // network the log was observed on
	Address types.Address         // emitting pair contract
	Topics  []string              // indexed fields, topic 0 is the signature
	Data    []byte                // ABI-encoded non-indexed fields
	TxHash  string                // transaction that emitted the log
	Removed bool                  // true when the log was reorged out
}

// LogEvent is one delivery from a log subscription: either a raw log or a
// transport error. Transport errors are recoverable; the streamer keeps the
// subscription alive and reconnects after a cooldown.
type LogEvent struct {
	Log RouterLog // the delivered log (zero value if Err is set)
	Err error     // transport or decode error (nil on success)
}

// LogStreamer is a source of swap logs for one or more networks.
type LogStreamer interface {
	// SubscribeSwapLogs opens a log subscription filtered to the network's
	// router pairs and the canonical swap event signature. The returned
	// channel is closed when ctx is canceled. Implementations must survive
	// transport disconnects by resubscribing after a fixed cooldown,
	// surfacing each failure as a LogEvent with Err set.
	SubscribeSwapLogs(ctx context.Context, network chainregistry.Network) (<-chan LogEvent, error)
}

// LogDispatchFailure describes a subscription delivery that could not be
// forwarded into the pipeline. The errors slice preserves the complete
// failure history for the event.
type LogDispatchFailure struct {
	Network chainregistry.Network
	Errors  []error
}
