package evm

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/pairresolver"
	"github.com/gabapcia/swapmirror/internal/pkg/resilience/retry"
	"github.com/gabapcia/swapmirror/internal/pkg/types"
	"github.com/gabapcia/swapmirror/internal/tradeexec"
)

const (
	// swapDeadline bounds how long a submitted router swap stays valid.
	swapDeadline = 5 * time.Minute

	// nativeTransferGasLimit is the fixed gas cost of a plain value send.
	nativeTransferGasLimit = 21_000

	receiptPollAttempts = 60
	receiptPollDelay    = 2 * time.Second
)

// signer bundles a decoded private key with its derived account address.
type signer struct {
	key     *ecdsa.PrivateKey
	account common.Address
}

func newSigner(privateKeyHex string) (signer, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return signer{}, fmt.Errorf("decoding private key: %w", err)
	}
	return signer{key: key, account: crypto.PubkeyToAddress(key.PublicKey)}, nil
}

// submitTx signs a legacy transaction for the signer's next pending nonce
// and broadcasts it. When gasLimit is zero the node estimates it.
func (c *Client) submitTx(ctx context.Context, network chainregistry.Network, sig signer, to common.Address, value *big.Int, gasLimit uint64, data []byte) (string, error) {
	nc, err := c.network(network)
	if err != nil {
		return "", err
	}

	nonce, err := nc.rpc.PendingNonceAt(ctx, sig.account)
	if err != nil {
		return "", fmt.Errorf("fetching nonce: %w", err)
	}

	gasPrice, err := nc.rpc.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("fetching gas price: %w", err)
	}

	if gasLimit == 0 {
		gasLimit, err = nc.rpc.EstimateGas(ctx, ethereum.CallMsg{
			From:     sig.account,
			To:       &to,
			Value:    value,
			GasPrice: gasPrice,
			Data:     data,
		})
		if err != nil {
			return "", fmt.Errorf("estimating gas: %w", err)
		}
	}

	tx := gethtypes.NewTx(&gethtypes.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})

	chainID := big.NewInt(nc.meta.ChainID)
	signed, err := gethtypes.SignTx(tx, gethtypes.LatestSignerForChainID(chainID), sig.key)
	if err != nil {
		return "", fmt.Errorf("signing transaction: %w", err)
	}

	if err := nc.rpc.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("broadcasting transaction: %w", err)
	}
	return strings.ToLower(signed.Hash().Hex()), nil
}

// waitMined polls for the transaction receipt until it lands or the poll
// budget runs out.
func (c *Client) waitMined(ctx context.Context, network chainregistry.Network, txHash string) (*gethtypes.Receipt, error) {
	nc, err := c.network(network)
	if err != nil {
		return nil, err
	}

	var receipt *gethtypes.Receipt
	poll := retry.New(
		retry.WithAttempts(receiptPollAttempts),
		retry.WithDelay(receiptPollDelay),
		retry.WithMaxDelay(receiptPollDelay),
	)
	err = poll.Execute(ctx, func() error {
		var pollErr error
		receipt, pollErr = nc.rpc.TransactionReceipt(ctx, common.HexToHash(txHash))
		return pollErr
	})
	if err != nil {
		return nil, fmt.Errorf("awaiting receipt for %s: %w", txHash, err)
	}
	return receipt, nil
}

// ensureRouterAllowance approves the router for the input token when the
// current allowance cannot cover amountIn. The approval is awaited before
// the swap itself is submitted.
func (c *Client) ensureRouterAllowance(ctx context.Context, network chainregistry.Network, sig signer, token, router types.Address, amountIn *big.Int) error {
	allowance, err := c.routerAllowance(ctx, network, token, fromCommon(sig.account), router)
	if err != nil {
		return err
	}
	if allowance.Cmp(amountIn) >= 0 {
		return nil
	}

	unlimited := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	data, err := c.abis.erc20.Pack("approve", toCommon(router), unlimited)
	if err != nil {
		return fmt.Errorf("packing approve call: %w", err)
	}

	txHash, err := c.submitTx(ctx, network, sig, toCommon(token), big.NewInt(0), 0, data)
	if err != nil {
		return fmt.Errorf("approving router: %w", err)
	}

	receipt, err := c.waitMined(ctx, network, txHash)
	if err != nil {
		return err
	}
	if receipt.Status != gethtypes.ReceiptStatusSuccessful {
		return fmt.Errorf("router approval reverted: %s", txHash)
	}
	return nil
}

// SubmitRouterSwap signs and broadcasts the router call described by args.
// Token-funded variants get their allowance topped up first.
func (c *Client) SubmitRouterSwap(ctx context.Context, args tradeexec.SwapArgs, privateKeyHex string) (string, error) {
	vars, err := c.registry.SharedVars(ctx, args.Network)
	if err != nil {
		return "", err
	}

	sig, err := newSigner(privateKeyHex)
	if err != nil {
		return "", err
	}

	route := make([]common.Address, len(args.Path))
	for i, address := range args.Path {
		route[i] = toCommon(address)
	}

	var (
		recipient = toCommon(args.Recipient)
		deadline  = big.NewInt(time.Now().Add(swapDeadline).Unix())
		value     = big.NewInt(0)
		data      []byte
	)

	switch args.Variant {
	case tradeexec.VariantExactNativeForTokens:
		value = args.AmountIn
		data, err = c.abis.router.Pack("swapExactETHForTokens", args.MinAmountOut, route, recipient, deadline)
	case tradeexec.VariantExactTokensForNative, tradeexec.VariantExactTokensForTokens:
		if err := c.ensureRouterAllowance(ctx, args.Network, sig, args.Path[0], vars.Router, args.AmountIn); err != nil {
			return "", err
		}
		data, err = c.abis.router.Pack(string(args.Variant), args.AmountIn, args.MinAmountOut, route, recipient, deadline)
	default:
		return "", tradeexec.ErrUnsupportedSwapVariant
	}
	if err != nil {
		return "", fmt.Errorf("packing %s call: %w", args.Variant, err)
	}

	return c.submitTx(ctx, args.Network, sig, toCommon(vars.Router), value, 0, data)
}

// WaitSwapReceipt blocks until the swap transaction mines, re-deriving the
// actual traded amounts from the receipt's emitted Swap log. The router's
// static quote is advisory only; the log is authoritative.
func (c *Client) WaitSwapReceipt(ctx context.Context, network chainregistry.Network, txHash string) (tradeexec.SwapReceipt, error) {
	receipt, err := c.waitMined(ctx, network, txHash)
	if err != nil {
		return tradeexec.SwapReceipt{}, err
	}

	out := tradeexec.SwapReceipt{
		TxHash:    txHash,
		Succeeded: receipt.Status == gethtypes.ReceiptStatusSuccessful,
	}
	if !out.Succeeded {
		return out, nil
	}

	amountIn, amountOut, ok := swapAmountsFromLogs(receipt.Logs)
	if !ok {
		return tradeexec.SwapReceipt{}, fmt.Errorf("transaction %s emitted no swap log", txHash)
	}

	out.AmountIn, out.AmountOut = amountIn, amountOut
	return out, nil
}

// swapAmountsFromLogs extracts the realized in/out amounts from the last
// Swap log of a receipt. For a single-hop trade exactly one leg carries
// each amount, so the non-zero leg wins on both sides.
func swapAmountsFromLogs(logs []*gethtypes.Log) (*big.Int, *big.Int, bool) {
	swapTopic := common.HexToHash(pairresolver.SwapTopic)

	for i := len(logs) - 1; i >= 0; i-- {
		log := logs[i]
		if len(log.Topics) == 0 || log.Topics[0] != swapTopic || len(log.Data) != 4*32 {
			continue
		}

		var (
			amount0In  = new(big.Int).SetBytes(log.Data[0:32])
			amount1In  = new(big.Int).SetBytes(log.Data[32:64])
			amount0Out = new(big.Int).SetBytes(log.Data[64:96])
			amount1Out = new(big.Int).SetBytes(log.Data[96:128])
		)

		amountIn, amountOut := amount0In, amount1Out
		if amount1In.Sign() > 0 {
			amountIn, amountOut = amount1In, amount0Out
		}
		return amountIn, amountOut, true
	}
	return nil, nil, false
}

// SubmitTokenTransfer signs and broadcasts an ERC-20 transfer.
func (c *Client) SubmitTokenTransfer(ctx context.Context, network chainregistry.Network, token, to types.Address, amount *big.Int, privateKeyHex string) (string, error) {
	sig, err := newSigner(privateKeyHex)
	if err != nil {
		return "", err
	}

	data, err := c.abis.erc20.Pack("transfer", toCommon(to), amount)
	if err != nil {
		return "", fmt.Errorf("packing transfer call: %w", err)
	}

	return c.submitTx(ctx, network, sig, toCommon(token), big.NewInt(0), 0, data)
}

// SubmitNativeTransfer signs and broadcasts a plain value transfer.
func (c *Client) SubmitNativeTransfer(ctx context.Context, network chainregistry.Network, to types.Address, amount *big.Int, privateKeyHex string) (string, error) {
	sig, err := newSigner(privateKeyHex)
	if err != nil {
		return "", err
	}

	return c.submitTx(ctx, network, sig, toCommon(to), amount, nativeTransferGasLimit, nil)
}
