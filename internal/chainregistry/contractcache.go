package chainregistry

import (
	"context"
	"errors"

	"github.com/gabapcia/swapmirror/internal/pkg/types"
)

// ErrContractsNotCached is returned by ContractCache.CachedContracts when no
// sandbox addresses have been discovered yet for the requested network.
var ErrContractsNotCached = errors.New("no cached contracts for network")

// CachedContracts holds the lazily discovered contract addresses of a
// sandbox chain: the wrapped-native token, the AMM factory and the router.
type CachedContracts struct {
	NativeToken types.Address
	Factory     types.Address
	Router      types.Address
}

// ContractCache persists sandbox contract addresses between runs so the
// disposable chain only has to be scanned once per deployment.
type ContractCache interface {
	// CachedContracts returns the stored addresses for the network, or
	// ErrContractsNotCached when the sandbox has not been bootstrapped yet.
	CachedContracts(ctx context.Context, network Network) (CachedContracts, error)

	// SaveCachedContracts stores the discovered addresses for the network,
	// overwriting any previous entry.
	SaveCachedContracts(ctx context.Context, network Network, contracts CachedContracts) error
}
