// Package evm is the go-ethereum adapter behind every chain-facing port:
// pair resolution, router quoting and swap submission, token metadata and
// balances, wallet generation and swap log streaming. One client serves all
// configured networks, holding a request/response connection and a
// subscription connection per network.
package evm

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/pairresolver"
	"github.com/gabapcia/swapmirror/internal/pkg/types"
	"github.com/gabapcia/swapmirror/internal/swapwatch"
	"github.com/gabapcia/swapmirror/internal/tradeexec"
	"github.com/gabapcia/swapmirror/internal/walletregistry"
)

// networkClient is the dialed connection pair for one network.
type networkClient struct {
	meta chainregistry.Metadata
	rpc  *ethclient.Client // request/response calls
	ws   *ethclient.Client // log subscriptions
}

// Client implements the chain-facing ports over go-ethereum connections.
// Contract addresses are resolved through the registry on every use, so the
// sandbox network picks up its lazily discovered contracts.
type Client struct {
	networks map[chainregistry.Network]*networkClient
	registry chainregistry.Registry
	abis     contractABIs
}

var (
	_ pairresolver.ChainReader  = (*Client)(nil)
	_ tradeexec.Blockchain      = (*Client)(nil)
	_ swapwatch.LogStreamer     = (*Client)(nil)
	_ walletregistry.Blockchain = (*Client)(nil)
)

// network returns the dialed client for a network.
func (c *Client) network(network chainregistry.Network) (*networkClient, error) {
	nc, ok := c.networks[network]
	if !ok {
		return nil, fmt.Errorf("%w: %q", chainregistry.ErrUnsupportedNetwork, network)
	}
	return nc, nil
}

// toCommon converts a canonical address into go-ethereum's representation.
func toCommon(address types.Address) common.Address {
	return common.HexToAddress(address.String())
}

// fromCommon converts a go-ethereum address into the canonical lowercase
// form used across the engine.
func fromCommon(address common.Address) types.Address {
	return types.NormalizeAddress(address.Hex())
}

// GenerateWallet creates a fresh secp256k1 keypair.
func (c *Client) GenerateWallet() (types.Address, string, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return "", "", fmt.Errorf("generating key: %w", err)
	}

	address := fromCommon(crypto.PubkeyToAddress(key.PublicKey))
	privateKey := fmt.Sprintf("%x", crypto.FromECDSA(key))
	return address, privateKey, nil
}

// Close tears down every dialed connection.
func (c *Client) Close() {
	for _, nc := range c.networks {
		nc.rpc.Close()
		nc.ws.Close()
	}
}

// New dials the request/response and subscription endpoints of every
// configured network. Dialing is pure setup: no calls are issued until the
// services use the client.
func New(ctx context.Context, registry chainregistry.Registry) (*Client, error) {
	abis, err := parseContractABIs()
	if err != nil {
		return nil, fmt.Errorf("parsing contract abis: %w", err)
	}

	networks := make(map[chainregistry.Network]*networkClient)
	for _, network := range registry.Networks() {
		meta, err := registry.Metadata(network)
		if err != nil {
			return nil, err
		}

		rpc, err := ethclient.DialContext(ctx, meta.RPCEndpoint)
		if err != nil {
			return nil, fmt.Errorf("dialing %s rpc endpoint: %w", network, err)
		}

		ws, err := ethclient.DialContext(ctx, meta.WSEndpoint)
		if err != nil {
			rpc.Close()
			return nil, fmt.Errorf("dialing %s ws endpoint: %w", network, err)
		}

		networks[network] = &networkClient{meta: meta, rpc: rpc, ws: ws}
	}

	return &Client{
		networks: networks,
		registry: registry,
		abis:     abis,
	}, nil
}
