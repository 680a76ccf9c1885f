package redis

import (
	"context"
	"encoding/json"
	"fmt"

	redis "github.com/redis/go-redis/v9"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/pkg/types"
	"github.com/gabapcia/swapmirror/internal/replication"
	"github.com/gabapcia/swapmirror/internal/swapproc"
	"github.com/gabapcia/swapmirror/internal/walletregistry"
)

// policiesKey is the ordered list of one user's replication policies under a
// followed address. Insertion order is preserved because the first
// qualifying policy wins at match time.
//
// Format: "policies:{userID}:{network}:{subscription}"
func policiesKey(userID string, network chainregistry.Network, subscription types.Address) string {
	return fmt.Sprintf("policies:%s:%s:%s", userID, network, subscription)
}

// SavePolicy upserts a policy: an existing entry for the same token is
// updated in place, keeping its position, a new one is appended.
func (c *client) SavePolicy(ctx context.Context, userID string, policy replication.Policy) error {
	payload, err := json.Marshal(policy)
	if err != nil {
		return err
	}

	key := policiesKey(userID, policy.Network, policy.Subscription)

	entries, err := c.conn.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return err
	}

	for i, entry := range entries {
		var existing replication.Policy
		if err := json.Unmarshal([]byte(entry), &existing); err != nil {
			return err
		}
		if existing.Token.Address == policy.Token.Address {
			return c.conn.LSet(ctx, key, int64(i), payload).Err()
		}
	}

	return c.conn.RPush(ctx, key, payload).Err()
}

// UserPolicies returns the user's policies under a followed address, in
// insertion order.
func (c *client) UserPolicies(ctx context.Context, userID string, network chainregistry.Network, subscription types.Address) ([]replication.Policy, error) {
	entries, err := c.conn.LRange(ctx, policiesKey(userID, network, subscription), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	policies := make([]replication.Policy, 0, len(entries))
	for _, entry := range entries {
		var policy replication.Policy
		if err := json.Unmarshal([]byte(entry), &policy); err != nil {
			return nil, err
		}
		policies = append(policies, policy)
	}
	return policies, nil
}

// deleteTokenPolicies drops every policy the user holds over the token,
// across all of their followed addresses on the network.
func (c *client) deleteTokenPolicies(ctx context.Context, userID string, network chainregistry.Network, token types.Address) error {
	subscriptions, err := c.conn.SMembers(ctx, subscriptionsKey(userID, network)).Result()
	if err != nil {
		return err
	}

	for _, subscription := range subscriptions {
		key := policiesKey(userID, network, types.Address(subscription))

		entries, err := c.conn.LRange(ctx, key, 0, -1).Result()
		if err != nil {
			return err
		}

		kept := make([]any, 0, len(entries))
		for _, entry := range entries {
			var policy replication.Policy
			if err := json.Unmarshal([]byte(entry), &policy); err != nil {
				return err
			}
			if policy.Token.Address != token {
				kept = append(kept, entry)
			}
		}
		if len(kept) == len(entries) {
			continue
		}

		_, err = c.conn.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			if len(kept) > 0 {
				pipe.RPush(ctx, key, kept...)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

var _ walletregistry.Storage = new(client)
var _ swapproc.PolicyStorage = new(client)
