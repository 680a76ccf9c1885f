// Package pairresolver resolves AMM liquidity pairs to their token legs and
// decodes raw Swap logs into canonical swap events. Resolved pairs are
// cached indefinitely; a concurrent miss for the same pair may trigger a
// duplicate factory lookup, which is wasteful but harmless.
package pairresolver

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/pkg/logger"
	"github.com/gabapcia/swapmirror/internal/pkg/types"
)

// ErrPairNotFound is returned when the factory reports no pair for the
// requested token combination (the zero address).
var ErrPairNotFound = errors.New("pair not found on factory")

// Resolver resolves and caches liquidity pairs.
type Resolver interface {
	// PairByTokens resolves the pair for (nativeToken, token) through the
	// network's factory, reading token0/token1 and caching the result.
	// Returns ErrPairNotFound when the factory has no such pair.
	PairByTokens(ctx context.Context, network chainregistry.Network, factory, nativeToken, token types.Address) (PairAddresses, error)

	// PairByAddress resolves the token legs of a known pair contract,
	// consulting the cache first. The second resolution of the same pair
	// performs no contract reads.
	PairByAddress(ctx context.Context, network chainregistry.Network, pairAddress types.Address) (PairAddresses, error)

	// ParseEventLog validates and decodes a raw router/pair log into a
	// SwapEvent. Logs that do not match the canonical Swap shape yield
	// (nil, nil), never an error: irrelevant logs are expected traffic.
	ParseEventLog(ctx context.Context, log EventLog, vars chainregistry.SharedVars) (*SwapEvent, error)
}

type resolver struct {
	chain   ChainReader
	storage PairStorage
}

var _ Resolver = (*resolver)(nil)

// New creates a Resolver over the given chain reader and pair cache.
func New(chain ChainReader, storage PairStorage) *resolver {
	return &resolver{
		chain:   chain,
		storage: storage,
	}
}

// pairTokens reads token0 and token1 from the pair contract. The two reads
// are independent and run concurrently.
func (r *resolver) pairTokens(ctx context.Context, network chainregistry.Network, pairAddress types.Address) (PairAddresses, error) {
	var (
		wg             sync.WaitGroup
		token0, token1 types.Address
		err0, err1     error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		token0, err0 = r.chain.PairToken0(ctx, network, pairAddress)
	}()
	go func() {
		defer wg.Done()
		token1, err1 = r.chain.PairToken1(ctx, network, pairAddress)
	}()
	wg.Wait()

	if err := errors.Join(err0, err1); err != nil {
		return PairAddresses{}, fmt.Errorf("reading pair tokens: %w", err)
	}

	return PairAddresses{
		Pair:   pairAddress,
		Token0: token0,
		Token1: token1,
	}, nil
}

// resolveAndCache reads the pair's token legs and stores the triple. A cache
// write failure is logged but does not fail the resolution: the caller still
// gets a usable pair and the next lookup retries the write.
func (r *resolver) resolveAndCache(ctx context.Context, network chainregistry.Network, pairAddress types.Address) (PairAddresses, error) {
	pair, err := r.pairTokens(ctx, network, pairAddress)
	if err != nil {
		return PairAddresses{}, err
	}

	if err := r.storage.AddPair(ctx, network, pair); err != nil {
		logger.Warn(ctx, "failed to cache resolved pair",
			"pair.network", network,
			"pair.address", pairAddress,
			"error", err,
		)
	}

	return pair, nil
}

func (r *resolver) PairByTokens(ctx context.Context, network chainregistry.Network, factory, nativeToken, token types.Address) (PairAddresses, error) {
	pairAddress, err := r.chain.FactoryPair(ctx, network, factory, nativeToken, token)
	if err != nil {
		return PairAddresses{}, fmt.Errorf("querying factory for pair: %w", err)
	}

	if pairAddress.IsZero() {
		return PairAddresses{}, fmt.Errorf("%w: %s/%s on %s", ErrPairNotFound, nativeToken, token, network)
	}

	if pair, err := r.storage.GetPair(ctx, network, pairAddress); err == nil {
		return pair, nil
	} else if !errors.Is(err, ErrPairNotCached) {
		return PairAddresses{}, err
	}

	return r.resolveAndCache(ctx, network, pairAddress)
}

func (r *resolver) PairByAddress(ctx context.Context, network chainregistry.Network, pairAddress types.Address) (PairAddresses, error) {
	if pair, err := r.storage.GetPair(ctx, network, pairAddress); err == nil {
		return pair, nil
	} else if !errors.Is(err, ErrPairNotCached) {
		return PairAddresses{}, err
	}

	return r.resolveAndCache(ctx, network, pairAddress)
}
