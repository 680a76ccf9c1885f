package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	redis "github.com/redis/go-redis/v9"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
)

// contractsKey holds the lazily discovered sandbox contract addresses.
//
// Format: "contracts:{network}"
func contractsKey(network chainregistry.Network) string {
	return fmt.Sprintf("contracts:%s", network)
}

// CachedContracts returns the bootstrap contract addresses discovered for
// the network, or ErrContractsNotCached when the sandbox has not been
// bootstrapped yet.
func (c *client) CachedContracts(ctx context.Context, network chainregistry.Network) (chainregistry.CachedContracts, error) {
	payload, err := c.conn.Get(ctx, contractsKey(network)).Bytes()
	if errors.Is(err, redis.Nil) {
		return chainregistry.CachedContracts{}, chainregistry.ErrContractsNotCached
	}
	if err != nil {
		return chainregistry.CachedContracts{}, err
	}

	var contracts chainregistry.CachedContracts
	if err := json.Unmarshal(payload, &contracts); err != nil {
		return chainregistry.CachedContracts{}, err
	}
	return contracts, nil
}

// SaveCachedContracts persists the discovered contract addresses for the
// process lifetime and beyond; sandbox restarts overwrite them.
func (c *client) SaveCachedContracts(ctx context.Context, network chainregistry.Network, contracts chainregistry.CachedContracts) error {
	payload, err := json.Marshal(contracts)
	if err != nil {
		return err
	}
	return c.conn.Set(ctx, contractsKey(network), payload, 0).Err()
}

var _ chainregistry.ContractCache = new(client)
