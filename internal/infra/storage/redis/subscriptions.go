package redis

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/pkg/types"
	"github.com/gabapcia/swapmirror/internal/walletregistry"
)

// subscriptionsKey is the set of addresses one user follows on a network.
//
// Format: "subscriptions:{userID}:{network}"
func subscriptionsKey(userID string, network chainregistry.Network) string {
	return fmt.Sprintf("subscriptions:%s:%s", userID, network)
}

// followersKey is the reverse index: the set of users following one
// address on a network.
//
// Format: "followers:{network}:{address}"
func followersKey(network chainregistry.Network, address types.Address) string {
	return fmt.Sprintf("followers:%s:%s", network, address)
}

// SaveSubscription persists a follow. The per-user record, the follower
// reverse index and the gating index are written in one transaction, so
// index membership never exceeds persisted subscriptions for long and every
// indexed address has a persisted follow.
func (c *client) SaveSubscription(ctx context.Context, sub walletregistry.Subscription) error {
	followed, err := c.conn.SIsMember(ctx, subscriptionsKey(sub.UserID, sub.Network), sub.Address.String()).Result()
	if err != nil {
		return err
	}
	if followed {
		return walletregistry.ErrAlreadySubscribed
	}

	_, err = c.conn.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, subscriptionsKey(sub.UserID, sub.Network), sub.Address.String())
		pipe.SAdd(ctx, followersKey(sub.Network, sub.Address), sub.UserID)
		pipe.SAdd(ctx, subscriptionIndexKey(sub.Network), sub.Address.String())
		return nil
	})
	return err
}

// DeleteSubscription removes a follow, its reverse index entry and every
// policy keyed under it. The gating index entry is dropped once the last
// follower of the address is gone.
func (c *client) DeleteSubscription(ctx context.Context, sub walletregistry.Subscription) error {
	removed, err := c.conn.SRem(ctx, subscriptionsKey(sub.UserID, sub.Network), sub.Address.String()).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return walletregistry.ErrSubscriptionNotFound
	}

	_, err = c.conn.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SRem(ctx, followersKey(sub.Network, sub.Address), sub.UserID)
		pipe.Del(ctx, policiesKey(sub.UserID, sub.Network, sub.Address))
		return nil
	})
	if err != nil {
		return err
	}

	remaining, err := c.conn.SCard(ctx, followersKey(sub.Network, sub.Address)).Result()
	if err != nil {
		return err
	}
	if remaining == 0 {
		return c.conn.SRem(ctx, subscriptionIndexKey(sub.Network), sub.Address.String()).Err()
	}
	return nil
}

// HasSubscription reports whether the user follows the address.
func (c *client) HasSubscription(ctx context.Context, sub walletregistry.Subscription) (bool, error) {
	return c.conn.SIsMember(ctx, subscriptionsKey(sub.UserID, sub.Network), sub.Address.String()).Result()
}

// Followers returns the IDs of every user following the address.
func (c *client) Followers(ctx context.Context, network chainregistry.Network, address types.Address) ([]string, error) {
	return c.conn.SMembers(ctx, followersKey(network, address)).Result()
}
