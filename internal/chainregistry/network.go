// Package chainregistry holds the static identity of every supported
// blockchain network: chain IDs, endpoints and the DEX contract addresses
// the trading pipeline needs. It resolves the effective router and
// wrapped-native token per network, transparently swapping in sandbox
// addresses when the process runs against a disposable local chain, so
// callers never branch on run mode themselves.
package chainregistry

import (
	"fmt"

	"github.com/gabapcia/swapmirror/internal/pkg/types"
	"github.com/gabapcia/swapmirror/internal/pkg/usererr"
)

// Network is the enumerated identifier of a supported blockchain network.
type Network string

const (
	NetworkEthereum Network = "ethereum"
	NetworkBSC      Network = "bsc"
	NetworkPolygon  Network = "polygon"

	// NetworkSandbox is a disposable local chain simulating a DEX. Its
	// contract addresses are discovered at bootstrap and cached, not
	// configured.
	NetworkSandbox Network = "sandbox"
)

// ErrUnsupportedNetwork is returned when a network identifier is not one of
// the supported networks.
var ErrUnsupportedNetwork = usererr.New("unsupported network", "That network is not supported.")

// supportedNetworks lists every network the engine can operate on.
var supportedNetworks = types.NewSet(NetworkEthereum, NetworkBSC, NetworkPolygon, NetworkSandbox)

// ParseNetwork validates a raw network identifier and returns the typed
// Network value, or ErrUnsupportedNetwork.
func ParseNetwork(s string) (Network, error) {
	network := Network(s)
	if !supportedNetworks.Contains(network) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedNetwork, s)
	}
	return network, nil
}

// String returns the network identifier.
func (n Network) String() string {
	return string(n)
}

// Metadata is the immutable per-network configuration: endpoints, the native
// currency and the DEX contract addresses. For the sandbox network the
// contract addresses are left empty and resolved through the contract cache.
type Metadata struct {
	Network        Network       // network this metadata belongs to
	ChainID        int64         // EVM chain ID used for transaction signing
	RPCEndpoint    string        // HTTP JSON-RPC endpoint
	WSEndpoint     string        // WebSocket endpoint for log subscriptions
	NativeCurrency string        // symbol of the native currency (e.g. "BNB")
	Router         types.Address // DEX router contract
	Factory        types.Address // AMM factory contract
	WrappedNative  types.Address // wrapped-native token (e.g. WBNB)
}
