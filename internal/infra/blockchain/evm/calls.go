package evm

import (
	"context"
	"fmt"
	"math/big"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/pkg/types"
	"github.com/gabapcia/swapmirror/internal/replication"
)

// call packs a read-only contract call, executes it against the latest
// block and unpacks the outputs.
func (c *Client) call(ctx context.Context, network chainregistry.Network, to common.Address, contract abi.ABI, method string, args ...any) ([]any, error) {
	nc, err := c.network(network)
	if err != nil {
		return nil, err
	}

	data, err := contract.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("packing %s call: %w", method, err)
	}

	output, err := nc.rpc.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", method, err)
	}

	values, err := contract.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("unpacking %s output: %w", method, err)
	}
	return values, nil
}

// FactoryPair queries the AMM factory for the pair of (tokenA, tokenB). The
// zero address is returned as-is when no pair exists; interpreting it is the
// resolver's job.
func (c *Client) FactoryPair(ctx context.Context, network chainregistry.Network, factory, tokenA, tokenB types.Address) (types.Address, error) {
	values, err := c.call(ctx, network, toCommon(factory), c.abis.factory, "getPair", toCommon(tokenA), toCommon(tokenB))
	if err != nil {
		return "", err
	}
	return fromCommon(values[0].(common.Address)), nil
}

// PairToken0 reads the first token leg of a pair contract.
func (c *Client) PairToken0(ctx context.Context, network chainregistry.Network, pair types.Address) (types.Address, error) {
	values, err := c.call(ctx, network, toCommon(pair), c.abis.pair, "token0")
	if err != nil {
		return "", err
	}
	return fromCommon(values[0].(common.Address)), nil
}

// PairToken1 reads the second token leg of a pair contract.
func (c *Client) PairToken1(ctx context.Context, network chainregistry.Network, pair types.Address) (types.Address, error) {
	values, err := c.call(ctx, network, toCommon(pair), c.abis.pair, "token1")
	if err != nil {
		return "", err
	}
	return fromCommon(values[0].(common.Address)), nil
}

// AmountsOut quotes the router for the expected output of amountIn along
// path, returning the last element of the amounts vector.
func (c *Client) AmountsOut(ctx context.Context, network chainregistry.Network, amountIn *big.Int, path []types.Address) (*big.Int, error) {
	vars, err := c.registry.SharedVars(ctx, network)
	if err != nil {
		return nil, err
	}

	route := make([]common.Address, len(path))
	for i, address := range path {
		route[i] = toCommon(address)
	}

	values, err := c.call(ctx, network, toCommon(vars.Router), c.abis.router, "getAmountsOut", amountIn, route)
	if err != nil {
		return nil, err
	}

	amounts := values[0].([]*big.Int)
	if len(amounts) == 0 {
		return nil, fmt.Errorf("getAmountsOut returned no amounts")
	}
	return amounts[len(amounts)-1], nil
}

// TokenMetadata reads name, symbol and decimals from a token contract.
func (c *Client) TokenMetadata(ctx context.Context, network chainregistry.Network, address types.Address) (replication.Token, error) {
	to := toCommon(address)

	nameValues, err := c.call(ctx, network, to, c.abis.erc20, "name")
	if err != nil {
		return replication.Token{}, err
	}

	symbolValues, err := c.call(ctx, network, to, c.abis.erc20, "symbol")
	if err != nil {
		return replication.Token{}, err
	}

	decimalsValues, err := c.call(ctx, network, to, c.abis.erc20, "decimals")
	if err != nil {
		return replication.Token{}, err
	}

	return replication.Token{
		Address:  address,
		Network:  network,
		Name:     nameValues[0].(string),
		Symbol:   symbolValues[0].(string),
		Decimals: decimalsValues[0].(uint8),
	}, nil
}

// TokenBalance reads the owner's ERC-20 balance.
func (c *Client) TokenBalance(ctx context.Context, network chainregistry.Network, token, owner types.Address) (*big.Int, error) {
	values, err := c.call(ctx, network, toCommon(token), c.abis.erc20, "balanceOf", toCommon(owner))
	if err != nil {
		return nil, err
	}
	return values[0].(*big.Int), nil
}

// NativeBalance reads the owner's native asset balance at the latest block.
func (c *Client) NativeBalance(ctx context.Context, network chainregistry.Network, owner types.Address) (*big.Int, error) {
	nc, err := c.network(network)
	if err != nil {
		return nil, err
	}
	return nc.rpc.BalanceAt(ctx, toCommon(owner), nil)
}

// routerAllowance reads how much of token the router may spend on the
// owner's behalf.
func (c *Client) routerAllowance(ctx context.Context, network chainregistry.Network, token, owner, router types.Address) (*big.Int, error) {
	values, err := c.call(ctx, network, toCommon(token), c.abis.erc20, "allowance", toCommon(owner), toCommon(router))
	if err != nil {
		return nil, err
	}
	return values[0].(*big.Int), nil
}
