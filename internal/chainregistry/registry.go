package chainregistry

import (
	"context"
	"fmt"

	"github.com/gabapcia/swapmirror/internal/pkg/types"
)

// SharedVars bundles the resolved chain variables the trading pipeline needs
// for one network: its metadata plus the effective wrapped-native token and
// router addresses. In sandbox mode the addresses come from the contract
// cache instead of static configuration; callers never tell the difference.
type SharedVars struct {
	Meta        Metadata
	NativeToken types.Address
	Router      types.Address
}

// Registry resolves per-network chain variables. It is created once at
// startup from static configuration and lives for the process lifetime.
type Registry interface {
	// Networks returns the identifiers of every configured network.
	Networks() []Network

	// Metadata returns the static metadata for the given network, or
	// ErrUnsupportedNetwork when the network is not configured.
	Metadata(network Network) (Metadata, error)

	// SharedVars resolves the effective chain variables for the network.
	// For the sandbox network it reads the lazily populated contract cache
	// and returns ErrContractsNotCached until the sandbox is bootstrapped.
	SharedVars(ctx context.Context, network Network) (SharedVars, error)
}

type registry struct {
	networks      map[Network]Metadata
	contractCache ContractCache
}

var _ Registry = (*registry)(nil)

// New creates a Registry over the given per-network metadata. The contract
// cache is only consulted for the sandbox network.
func New(networks map[Network]Metadata, contractCache ContractCache) *registry {
	return &registry{
		networks:      networks,
		contractCache: contractCache,
	}
}

func (r *registry) Networks() []Network {
	networks := make([]Network, 0, len(r.networks))
	for network := range r.networks {
		networks = append(networks, network)
	}
	return networks
}

func (r *registry) Metadata(network Network) (Metadata, error) {
	meta, ok := r.networks[network]
	if !ok {
		return Metadata{}, fmt.Errorf("%w: %q", ErrUnsupportedNetwork, network)
	}
	return meta, nil
}

func (r *registry) SharedVars(ctx context.Context, network Network) (SharedVars, error) {
	meta, err := r.Metadata(network)
	if err != nil {
		return SharedVars{}, err
	}

	if network != NetworkSandbox {
		return SharedVars{
			Meta:        meta,
			NativeToken: meta.WrappedNative,
			Router:      meta.Router,
		}, nil
	}

	contracts, err := r.contractCache.CachedContracts(ctx, network)
	if err != nil {
		return SharedVars{}, err
	}

	meta.Router = contracts.Router
	meta.Factory = contracts.Factory
	meta.WrappedNative = contracts.NativeToken

	return SharedVars{
		Meta:        meta,
		NativeToken: contracts.NativeToken,
		Router:      contracts.Router,
	}, nil
}
