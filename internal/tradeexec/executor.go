// Package tradeexec builds slippage-bounded router swaps, signs them with
// vault-decrypted custodial keys and submits them, enforcing the
// replication-depth ceiling that terminates mirror cascades.
package tradeexec

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/keyvault"
	"github.com/gabapcia/swapmirror/internal/pkg/logger"
	"github.com/gabapcia/swapmirror/internal/pkg/types"
	"github.com/gabapcia/swapmirror/internal/pkg/usererr"
)

var (
	// ErrTransactionFailed is returned when a submitted transaction mines
	// with a non-success status.
	ErrTransactionFailed = usererr.New("transaction failed", "Your trade was submitted but the transaction did not succeed.")

	// ErrInsufficientFunds is returned when the source wallet cannot cover
	// the requested amount.
	ErrInsufficientFunds = usererr.New("insufficient funds", "Your wallet balance is too low for this operation.")

	// ErrQuoteBelowFloor is returned when slippage rounding would drive the
	// minimum output to zero, which would let the trade execute at any
	// price. Opt in to zero floors with WithZeroMinOutAllowed.
	ErrQuoteBelowFloor = errors.New("quoted output rounds to a zero minimum")

	// ErrUnsupportedSwapVariant is returned when no router function covers
	// the requested path, such as native on both legs.
	ErrUnsupportedSwapVariant = errors.New("unsupported swap variant")
)

const (
	bpsDenominator     = 10_000
	defaultSlippageBps = 300
	defaultMaxDepth    = 3
)

// ReplicatedSwap is a matched swap about to be mirrored for a follower,
// carrying the cascade state threaded through the pipeline.
type ReplicatedSwap struct {
	Network          chainregistry.Network
	TokenIn          types.Address
	TokenOut         types.Address
	AmountIn         *big.Int
	ReplicationDepth int
	Initiators       []string
}

// Execution is the confirmed result of a mirrored trade.
type Execution struct {
	TxHash    string
	TokenIn   types.Address
	TokenOut  types.Address
	AmountIn  *big.Int
	AmountOut *big.Int
}

// Service executes trades and transfers from custodial wallets.
type Service interface {
	// BuildSwapArgs quotes the router for the [tokenIn, tokenOut] path and
	// assembles the call arguments with a slippage-bounded output floor and
	// the variant matching which leg is the native asset.
	BuildSwapArgs(ctx context.Context, network chainregistry.Network, tokenIn, tokenOut types.Address, amountIn *big.Int, recipient types.Address) (SwapArgs, error)

	// Execute mirrors the swap from the user's custodial wallet. A swap
	// already at the depth ceiling is dropped silently, returning (nil, nil):
	// that is the expected termination of a replication cascade, not an
	// error. Submissions against the same wallet are serialized; a failed
	// submission is never retried.
	Execute(ctx context.Context, userID string, swap ReplicatedSwap) (*Execution, error)

	// Transfer sends an ERC-20 amount from the user's wallet, failing with
	// ErrInsufficientFunds when the balance cannot cover it.
	Transfer(ctx context.Context, userID string, network chainregistry.Network, token, to types.Address, amount *big.Int) (string, error)

	// TransferNative sends native value from the user's wallet, failing
	// with ErrInsufficientFunds when the balance cannot cover it.
	TransferNative(ctx context.Context, userID string, network chainregistry.Network, to types.Address, amount *big.Int) (string, error)
}

type service struct {
	blockchain     Blockchain
	walletStorage  WalletStorage
	contextStorage ContextStorage
	registry       chainregistry.Registry

	encryptionKey string

	slippageBps       int64
	maxDepth          int
	zeroMinOutAllowed bool

	walletLocksMu sync.Mutex
	walletLocks   types.DefaultMap[types.Address, *sync.Mutex]
}

var _ Service = (*service)(nil)

// minAmountOut applies the slippage tolerance to a quoted output,
// truncating toward zero.
func minAmountOut(quote *big.Int, slippageBps int64) *big.Int {
	out := new(big.Int).Mul(quote, big.NewInt(bpsDenominator-slippageBps))
	return out.Quo(out, big.NewInt(bpsDenominator))
}

// swapVariant selects the router function from which leg of the path is
// the wrapped-native token.
func swapVariant(tokenIn, tokenOut, native types.Address) (SwapVariant, error) {
	var (
		nativeIn  = tokenIn == native
		nativeOut = tokenOut == native
	)

	switch {
	case nativeIn && nativeOut:
		return "", ErrUnsupportedSwapVariant
	case nativeIn:
		return VariantExactNativeForTokens, nil
	case nativeOut:
		return VariantExactTokensForNative, nil
	default:
		return VariantExactTokensForTokens, nil
	}
}

func (s *service) BuildSwapArgs(ctx context.Context, network chainregistry.Network, tokenIn, tokenOut types.Address, amountIn *big.Int, recipient types.Address) (SwapArgs, error) {
	vars, err := s.registry.SharedVars(ctx, network)
	if err != nil {
		return SwapArgs{}, err
	}

	variant, err := swapVariant(tokenIn, tokenOut, vars.NativeToken)
	if err != nil {
		return SwapArgs{}, err
	}

	path := []types.Address{tokenIn, tokenOut}

	quote, err := s.blockchain.AmountsOut(ctx, network, amountIn, path)
	if err != nil {
		return SwapArgs{}, err
	}

	minOut := minAmountOut(quote, s.slippageBps)
	if minOut.Sign() == 0 && !s.zeroMinOutAllowed {
		return SwapArgs{}, ErrQuoteBelowFloor
	}

	return SwapArgs{
		Network:      network,
		Variant:      variant,
		Path:         path,
		AmountIn:     amountIn,
		MinAmountOut: minOut,
		Recipient:    recipient,
	}, nil
}

// walletLock returns the mutex serializing submissions for one wallet.
// On-chain nonces impose a total order per account, so concurrent signs
// against the same wallet must not race.
func (s *service) walletLock(address types.Address) *sync.Mutex {
	s.walletLocksMu.Lock()
	defer s.walletLocksMu.Unlock()

	return s.walletLocks.Get(address)
}

func (s *service) Execute(ctx context.Context, userID string, swap ReplicatedSwap) (*Execution, error) {
	if swap.ReplicationDepth >= s.maxDepth {
		return nil, nil
	}

	wallet, err := s.walletStorage.Wallet(ctx, userID, swap.Network)
	if err != nil {
		return nil, err
	}

	args, err := s.BuildSwapArgs(ctx, swap.Network, swap.TokenIn, swap.TokenOut, swap.AmountIn, wallet.Address)
	if err != nil {
		return nil, err
	}

	privateKey, err := keyvault.Decrypt(wallet.EncryptedKey, s.encryptionKey)
	if err != nil {
		return nil, err
	}

	lock := s.walletLock(wallet.Address)
	lock.Lock()
	txHash, err := s.blockchain.SubmitRouterSwap(ctx, args, privateKey)
	lock.Unlock()
	if err != nil {
		return nil, err
	}

	rc := ReplicationContext{
		Initiators: append(append([]string(nil), swap.Initiators...), userID),
		Depth:      swap.ReplicationDepth + 1,
	}
	// The swap is already on chain. A context-store failure only stops the
	// cascade from propagating past this trade, so it must not surface as a
	// trade failure to the user.
	if err := s.contextStorage.SaveReplicationContext(ctx, swap.Network, txHash, rc); err != nil {
		logger.Error(ctx, "error saving replication context",
			"trade.network", swap.Network,
			"trade.tx_hash", txHash,
			"error", err,
		)
	}

	receipt, err := s.blockchain.WaitSwapReceipt(ctx, swap.Network, txHash)
	if err != nil {
		return nil, err
	}
	if !receipt.Succeeded {
		return nil, ErrTransactionFailed
	}

	return &Execution{
		TxHash:    receipt.TxHash,
		TokenIn:   swap.TokenIn,
		TokenOut:  swap.TokenOut,
		AmountIn:  receipt.AmountIn,
		AmountOut: receipt.AmountOut,
	}, nil
}

func (s *service) transfer(ctx context.Context, userID string, network chainregistry.Network, amount *big.Int, balance func(context.Context, Wallet) (*big.Int, error), submit func(context.Context, Wallet, string) (string, error)) (string, error) {
	wallet, err := s.walletStorage.Wallet(ctx, userID, network)
	if err != nil {
		return "", err
	}

	available, err := balance(ctx, wallet)
	if err != nil {
		return "", err
	}
	if available.Sign() == 0 || available.Cmp(amount) < 0 {
		return "", ErrInsufficientFunds
	}

	privateKey, err := keyvault.Decrypt(wallet.EncryptedKey, s.encryptionKey)
	if err != nil {
		return "", err
	}

	lock := s.walletLock(wallet.Address)
	lock.Lock()
	defer lock.Unlock()

	return submit(ctx, wallet, privateKey)
}

func (s *service) Transfer(ctx context.Context, userID string, network chainregistry.Network, token, to types.Address, amount *big.Int) (string, error) {
	return s.transfer(ctx, userID, network, amount,
		func(ctx context.Context, wallet Wallet) (*big.Int, error) {
			return s.blockchain.TokenBalance(ctx, network, token, wallet.Address)
		},
		func(ctx context.Context, wallet Wallet, privateKey string) (string, error) {
			return s.blockchain.SubmitTokenTransfer(ctx, network, token, to, amount, privateKey)
		},
	)
}

func (s *service) TransferNative(ctx context.Context, userID string, network chainregistry.Network, to types.Address, amount *big.Int) (string, error) {
	return s.transfer(ctx, userID, network, amount,
		func(ctx context.Context, wallet Wallet) (*big.Int, error) {
			return s.blockchain.NativeBalance(ctx, network, wallet.Address)
		},
		func(ctx context.Context, wallet Wallet, privateKey string) (string, error) {
			return s.blockchain.SubmitNativeTransfer(ctx, network, to, amount, privateKey)
		},
	)
}

type config struct {
	slippageBps       int64
	maxDepth          int
	zeroMinOutAllowed bool
}

// Option customizes the service.
type Option func(*config)

// WithSlippageBps overrides the default 300 bps slippage tolerance.
func WithSlippageBps(bps int64) Option {
	return func(c *config) {
		c.slippageBps = bps
	}
}

// WithMaxReplicationDepth overrides the default cascade ceiling of 3.
func WithMaxReplicationDepth(depth int) Option {
	return func(c *config) {
		c.maxDepth = depth
	}
}

// WithZeroMinOutAllowed lets trades through even when slippage rounding
// drives the output floor to zero.
func WithZeroMinOutAllowed() Option {
	return func(c *config) {
		c.zeroMinOutAllowed = true
	}
}

// New creates the executor. encryptionKey is the hex-encoded 32-byte vault
// key used to decrypt custodial signing keys.
func New(blockchain Blockchain, walletStorage WalletStorage, contextStorage ContextStorage, registry chainregistry.Registry, encryptionKey string, opts ...Option) *service {
	cfg := config{
		slippageBps: defaultSlippageBps,
		maxDepth:    defaultMaxDepth,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		blockchain:        blockchain,
		walletStorage:     walletStorage,
		contextStorage:    contextStorage,
		registry:          registry,
		encryptionKey:     encryptionKey,
		slippageBps:       cfg.slippageBps,
		maxDepth:          cfg.maxDepth,
		zeroMinOutAllowed: cfg.zeroMinOutAllowed,
		walletLocks:       types.NewDefaultMap[types.Address](func() *sync.Mutex { return new(sync.Mutex) }),
	}
}
