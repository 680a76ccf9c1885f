package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	redis "github.com/redis/go-redis/v9"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/pairresolver"
	"github.com/gabapcia/swapmirror/internal/pkg/types"
)

// pairKey is the cached token legs of one resolved pair. Pair identity is
// immutable on chain, so entries carry no TTL.
//
// Format: "pairs:{network}:{pairAddress}"
func pairKey(network chainregistry.Network, pairAddress types.Address) string {
	return fmt.Sprintf("pairs:%s:%s", network, pairAddress)
}

// AddPair caches a resolved pair with no expiry.
func (c *client) AddPair(ctx context.Context, network chainregistry.Network, pair pairresolver.PairAddresses) error {
	payload, err := json.Marshal(pair)
	if err != nil {
		return err
	}
	return c.conn.Set(ctx, pairKey(network, pair.Pair), payload, 0).Err()
}

// GetPair returns the cached legs of a pair, or ErrPairNotCached.
func (c *client) GetPair(ctx context.Context, network chainregistry.Network, pairAddress types.Address) (pairresolver.PairAddresses, error) {
	payload, err := c.conn.Get(ctx, pairKey(network, pairAddress)).Bytes()
	if errors.Is(err, redis.Nil) {
		return pairresolver.PairAddresses{}, pairresolver.ErrPairNotCached
	}
	if err != nil {
		return pairresolver.PairAddresses{}, err
	}

	var pair pairresolver.PairAddresses
	if err := json.Unmarshal(payload, &pair); err != nil {
		return pairresolver.PairAddresses{}, err
	}
	return pair, nil
}

var _ pairresolver.PairStorage = new(client)
