package walletregistry

import (
	"context"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/pkg/types"
	"github.com/gabapcia/swapmirror/internal/pkg/usererr"
	"github.com/gabapcia/swapmirror/internal/replication"
)

// Sentinels carry a display message next to the technical text: the command
// layer extracts it with usererr.Message instead of formatting its own.
var (
	// ErrWalletAlreadyExists is returned when the user already has a
	// custodial wallet on the network. Wallets are created once and never
	// mutated in place.
	ErrWalletAlreadyExists = usererr.New("wallet already exists", "You already have a wallet on this network.")

	// ErrAlreadySubscribed is returned when the user already follows the
	// address on the network.
	ErrAlreadySubscribed = usererr.New("already subscribed to address", "You already follow this address on this network.")

	// ErrSelfSubscription is returned when a user tries to follow one of
	// their own custodial wallets.
	ErrSelfSubscription = usererr.New("cannot subscribe to own wallet", "You cannot follow your own wallet.")

	// ErrSubscriptionNotFound is returned when the user does not follow the
	// address on the network.
	ErrSubscriptionNotFound = usererr.New("subscription not found", "You do not follow this address on this network.")

	// ErrTokenLimitReached is returned when adding a token would exceed the
	// per-user, per-network cap.
	ErrTokenLimitReached = usererr.New("tracked token limit reached", "You reached the maximum number of tracked tokens on this network.")

	// ErrTokenAlreadyTracked is returned when the user already tracks the
	// token on the network.
	ErrTokenAlreadyTracked = usererr.New("token already tracked", "You already track this token on this network.")

	// ErrTokenNotFound is returned when the user does not track the token
	// on the network.
	ErrTokenNotFound = usererr.New("token not found", "You do not track this token on this network.")
)

// Wallet is a custodial account held on a user's behalf. The private key is
// stored encrypted and only ever decrypted by the trade executor for the
// duration of a single sign operation.
type Wallet struct {
	UserID       string                `validate:"required"`
	Network      chainregistry.Network `validate:"required"`
	Address      types.Address         `validate:"required"`
	EncryptedKey string                `validate:"required"`
}

// Subscription is a followed external address, unique per (user, address,
// network).
type Subscription struct {
	UserID  string                `validate:"required"`
	Network chainregistry.Network `validate:"required"`
	Address types.Address         `validate:"required"`
}

// Storage persists wallets, subscriptions, tracked tokens and replication
// policies. Every mutation must update the membership index in the same
// logical operation, so that index membership is always a subset of the
// persisted records.
type Storage interface {
	// SaveWallet persists a newly created wallet. It fails with
	// ErrWalletAlreadyExists when the user already has one on the network.
	SaveWallet(ctx context.Context, wallet Wallet) error

	// UserWallets returns every custodial wallet of the user.
	UserWallets(ctx context.Context, userID string) ([]Wallet, error)

	// SaveSubscription persists a follow and indexes the address. It fails
	// with ErrAlreadySubscribed on a duplicate.
	SaveSubscription(ctx context.Context, sub Subscription) error

	// DeleteSubscription removes a follow, its index entry and every
	// replication policy keyed under it. It fails with
	// ErrSubscriptionNotFound when the user does not follow the address.
	DeleteSubscription(ctx context.Context, sub Subscription) error

	// HasSubscription reports whether the user follows the address.
	HasSubscription(ctx context.Context, sub Subscription) (bool, error)

	// SaveToken persists a tracked token and indexes its address. It fails
	// with ErrTokenAlreadyTracked on a duplicate.
	SaveToken(ctx context.Context, userID string, token replication.Token) error

	// DeleteToken removes a tracked token, its index entry and every
	// replication policy over it. It fails with ErrTokenNotFound when the
	// user does not track it.
	DeleteToken(ctx context.Context, userID string, network chainregistry.Network, address types.Address) error

	// DeleteTokens removes every token the user tracks on the network,
	// along with index entries and policies.
	DeleteTokens(ctx context.Context, userID string, network chainregistry.Network) error

	// DeleteAllTokens removes every token the user tracks on any network.
	DeleteAllTokens(ctx context.Context, userID string) error

	// UserTokens returns the tokens the user tracks on the network.
	UserTokens(ctx context.Context, userID string, network chainregistry.Network) ([]replication.Token, error)

	// UserToken returns one tracked token, or ErrTokenNotFound.
	UserToken(ctx context.Context, userID string, network chainregistry.Network, address types.Address) (replication.Token, error)

	// SavePolicy upserts a replication policy: re-setting the same
	// (subscription, token) key updates the limits in place.
	SavePolicy(ctx context.Context, userID string, policy replication.Policy) error
}

// Blockchain is the chain-side surface the registry depends on.
type Blockchain interface {
	// GenerateWallet creates a fresh keypair, returning the account address
	// and the hex-encoded private key.
	GenerateWallet() (types.Address, string, error)

	// TokenMetadata reads name, symbol and decimals from the token contract.
	TokenMetadata(ctx context.Context, network chainregistry.Network, address types.Address) (replication.Token, error)
}
