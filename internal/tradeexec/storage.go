package tradeexec

import (
	"context"
	"errors"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/pkg/types"
)

// ErrWalletNotFound is returned when the user has no custodial wallet on
// the requested network.
var ErrWalletNotFound = errors.New("wallet not found")

// Wallet is the custodial account view trade execution needs: the funding
// address plus the vault-encrypted signing key.
type Wallet struct {
	UserID       string
	Network      chainregistry.Network
	Address      types.Address
	EncryptedKey string
}

// WalletStorage resolves a user's custodial wallet on a network.
type WalletStorage interface {
	// Wallet returns the user's wallet on the network, or ErrWalletNotFound.
	Wallet(ctx context.Context, userID string, network chainregistry.Network) (Wallet, error)
}

// ReplicationContext is the cascade state attached to a pending replicated
// trade: every user already involved plus the depth the spawned swap event
// will carry.
type ReplicationContext struct {
	Initiators []string
	Depth      int
}

// ContextStorage persists replication context keyed by the pending
// transaction hash. Entries are short-lived: they only need to survive
// until the transaction's own swap log is observed by the watcher.
type ContextStorage interface {
	SaveReplicationContext(ctx context.Context, network chainregistry.Network, txHash string, rc ReplicationContext) error
}
