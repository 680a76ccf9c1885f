package redis

import (
	"context"
	"fmt"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/pkg/types"
	"github.com/gabapcia/swapmirror/internal/replication"
)

// subscriptionIndexKey is the set of every followed address on a network.
//
// Format: "index:subscriptions:{network}"
func subscriptionIndexKey(network chainregistry.Network) string {
	return fmt.Sprintf("index:subscriptions:%s", network)
}

// tokenIndexKey is the set of every tracked token on a network.
//
// Format: "index:tokens:{network}"
func tokenIndexKey(network chainregistry.Network) string {
	return fmt.Sprintf("index:tokens:%s", network)
}

// IsSubscribedAddress reports whether any user follows the address on the
// network, using an O(1) set membership check.
func (c *client) IsSubscribedAddress(ctx context.Context, network chainregistry.Network, address types.Address) (bool, error) {
	return c.conn.SIsMember(ctx, subscriptionIndexKey(network), address.String()).Result()
}

// IsTrackedToken reports whether any user tracks the token on the network.
func (c *client) IsTrackedToken(ctx context.Context, network chainregistry.Network, token types.Address) (bool, error) {
	return c.conn.SIsMember(ctx, tokenIndexKey(network), token.String()).Result()
}

var _ replication.MembershipStorage = new(client)
