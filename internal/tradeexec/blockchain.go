package tradeexec

import (
	"context"
	"math/big"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/pkg/types"
)

// SwapVariant identifies which router swap function a trade uses. The
// variant is derived from which leg of the path, if any, is the network's
// wrapped-native token.
type SwapVariant string

const (
	// VariantExactNativeForTokens spends the native asset to buy a token.
	VariantExactNativeForTokens SwapVariant = "swapExactETHForTokens"

	// VariantExactTokensForNative sells a token for the native asset.
	VariantExactTokensForNative SwapVariant = "swapExactTokensForETH"

	// VariantExactTokensForTokens trades between two non-native tokens.
	VariantExactTokensForTokens SwapVariant = "swapExactTokensForTokens"
)

// SwapArgs is a fully resolved router call: variant, path, exact input and
// the slippage-bounded output floor.
type SwapArgs struct {
	Network      chainregistry.Network
	Variant      SwapVariant
	Path         []types.Address // [tokenIn, tokenOut]
	AmountIn     *big.Int
	MinAmountOut *big.Int // floor below which the router reverts the trade
	Recipient    types.Address
}

// SwapReceipt is the confirmed on-chain outcome of a submitted swap. The
// amounts come from the receipt's emitted swap log, not from the quote.
type SwapReceipt struct {
	TxHash    string
	Succeeded bool
	AmountIn  *big.Int
	AmountOut *big.Int
}

// Blockchain is the chain-side surface trade execution depends on: quoting,
// signed submission, confirmation and balance reads.
type Blockchain interface {
	// AmountsOut quotes the router for the expected output of swapping
	// amountIn along path.
	AmountsOut(ctx context.Context, network chainregistry.Network, amountIn *big.Int, path []types.Address) (*big.Int, error)

	// SubmitRouterSwap signs the router call with the given private key and
	// broadcasts it, returning the pending transaction hash.
	SubmitRouterSwap(ctx context.Context, args SwapArgs, privateKeyHex string) (string, error)

	// WaitSwapReceipt blocks until the transaction is mined and returns its
	// confirmed outcome.
	WaitSwapReceipt(ctx context.Context, network chainregistry.Network, txHash string) (SwapReceipt, error)

	// TokenBalance returns the owner's balance of an ERC-20 token.
	TokenBalance(ctx context.Context, network chainregistry.Network, token, owner types.Address) (*big.Int, error)

	// NativeBalance returns the owner's balance of the chain's native asset.
	NativeBalance(ctx context.Context, network chainregistry.Network, owner types.Address) (*big.Int, error)

	// SubmitTokenTransfer signs and broadcasts an ERC-20 transfer, returning
	// the pending transaction hash.
	SubmitTokenTransfer(ctx context.Context, network chainregistry.Network, token, to types.Address, amount *big.Int, privateKeyHex string) (string, error)

	// SubmitNativeTransfer signs and broadcasts a plain value transfer,
	// returning the pending transaction hash.
	SubmitNativeTransfer(ctx context.Context, network chainregistry.Network, to types.Address, amount *big.Int, privateKeyHex string) (string, error)
}
