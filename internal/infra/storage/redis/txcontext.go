package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/swapproc"
	"github.com/gabapcia/swapmirror/internal/tradeexec"
)

// replicationContextTTL bounds how long cascade state lives. A mirrored
// transaction is observed within a few blocks of submission, so anything
// older is stale.
const replicationContextTTL = 15 * time.Minute

// txContextKey is the cascade state stored under a submitted transaction
// hash.
//
// Format: "txcontext:{network}:{txHash}"
func txContextKey(network chainregistry.Network, txHash string) string {
	return fmt.Sprintf("txcontext:%s:%s", network, txHash)
}

// SaveReplicationContext stores cascade state under the transaction hash of
// a freshly submitted mirror.
func (c *client) SaveReplicationContext(ctx context.Context, network chainregistry.Network, txHash string, rc tradeexec.ReplicationContext) error {
	payload, err := json.Marshal(rc)
	if err != nil {
		return err
	}
	return c.conn.Set(ctx, txContextKey(network, txHash), payload, replicationContextTTL).Err()
}

// ReplicationContext restores the cascade state stored under an observed
// transaction hash. Absence means the transaction was organic.
func (c *client) ReplicationContext(ctx context.Context, network chainregistry.Network, txHash string) (swapproc.CascadeState, bool, error) {
	payload, err := c.conn.Get(ctx, txContextKey(network, txHash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return swapproc.CascadeState{}, false, nil
	}
	if err != nil {
		return swapproc.CascadeState{}, false, err
	}

	var rc tradeexec.ReplicationContext
	if err := json.Unmarshal(payload, &rc); err != nil {
		return swapproc.CascadeState{}, false, err
	}

	return swapproc.CascadeState{
		Initiators: rc.Initiators,
		Depth:      rc.Depth,
	}, true, nil
}

var _ tradeexec.ContextStorage = new(client)
var _ swapproc.ContextStorage = new(client)
