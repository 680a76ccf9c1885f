package pairresolver

import (
	"context"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/pkg/types"
)

// ChainReader exposes the read-only AMM contract calls the resolver needs.
// Implementations talk to the factory and pair contracts of one or more
// networks over JSON-RPC.
type ChainReader interface {
	// FactoryPair calls getPair(tokenA, tokenB) on the network's factory
	// contract. A pair that does not exist is reported as the zero address,
	// not as an error.
	FactoryPair(ctx context.Context, network chainregistry.Network, factory, tokenA, tokenB types.Address) (types.Address, error)

	// PairToken0 reads token0() from the pair contract.
	PairToken0(ctx context.Context, network chainregistry.Network, pair types.Address) (types.Address, error)

	// PairToken1 reads token1() from the pair contract.
	PairToken1(ctx context.Context, network chainregistry.Network, pair types.Address) (types.Address, error)
}
