package pairresolver

import (
	"context"
	"errors"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/pkg/types"
)

// ErrPairNotCached is returned by PairStorage.GetPair when the pair has not
// been resolved before.
var ErrPairNotCached = errors.New("pair not cached")

// PairAddresses is the resolved identity of a liquidity pair: the pair
// contract address and its two tokens in contract order. It is immutable
// once resolved; on-chain pair identity cannot change, so cached entries
// never expire.
type PairAddresses struct {
	Pair   types.Address
	Token0 types.Address
	Token1 types.Address
}

// PairStorage persists resolved pairs keyed by (network, pair address).
// Entries are written once and stored with no TTL.
type PairStorage interface {
	// AddPair stores a resolved pair for the network.
	AddPair(ctx context.Context, network chainregistry.Network, pair PairAddresses) error

	// GetPair returns the stored pair, or ErrPairNotCached when the pair has
	// never been resolved on this network.
	GetPair(ctx context.Context, network chainregistry.Network, pairAddress types.Address) (PairAddresses, error)
}
