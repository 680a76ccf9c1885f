// Package walletregistry manages custodial accounts and the replication
// configuration around them: wallet creation, followed addresses, tracked
// tokens and per-(subscription, token) replication policies.
package walletregistry

import (
	"context"
	"fmt"
	"math/big"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/keyvault"
	"github.com/gabapcia/swapmirror/internal/pkg/types"
	"github.com/gabapcia/swapmirror/internal/pkg/validator"
	"github.com/gabapcia/swapmirror/internal/replication"
)

const defaultMaxTokensPerNetwork = 5

// Service is the registry of custodial wallets and replication
// configuration.
type Service interface {
	// CreateWallet generates a fresh custodial wallet for the user on the
	// network, encrypting the private key before it is persisted. Wallets
	// are created once per (user, network).
	CreateWallet(ctx context.Context, userID string, network chainregistry.Network) (Wallet, error)

	// Wallets returns every custodial wallet of the user.
	Wallets(ctx context.Context, userID string) ([]Wallet, error)

	// Follow subscribes the user to swaps of an external address. It fails
	// with ErrSelfSubscription for the user's own wallets and
	// ErrAlreadySubscribed on duplicates.
	Follow(ctx context.Context, userID string, network chainregistry.Network, address types.Address) error

	// Unfollow removes a subscription and, in cascade, every replication
	// policy keyed under it.
	Unfollow(ctx context.Context, userID string, network chainregistry.Network, address types.Address) error

	// AddToken starts tracking a token for the user, reading its metadata
	// from the chain. At most a fixed number of tokens may be tracked per
	// (user, network); exceeding it fails with ErrTokenLimitReached.
	AddToken(ctx context.Context, userID string, network chainregistry.Network, address types.Address) (replication.Token, error)

	// RemoveToken stops tracking one token.
	RemoveToken(ctx context.Context, userID string, network chainregistry.Network, address types.Address) error

	// RemoveTokens stops tracking every token on one network.
	RemoveTokens(ctx context.Context, userID string, network chainregistry.Network) error

	// RemoveAllTokens stops tracking every token on every network.
	RemoveAllTokens(ctx context.Context, userID string) error

	// SetReplication upserts the replication policy over one followed
	// address and one tracked token. Limits are whole non-negative token
	// units; zero disables the side.
	SetReplication(ctx context.Context, userID string, network chainregistry.Network, subscription, token types.Address, buyLimit, sellLimit *big.Int) error
}

type service struct {
	storage    Storage
	blockchain Blockchain

	encryptionKey string
	maxTokens     int
}

var _ Service = (*service)(nil)

func (s *service) CreateWallet(ctx context.Context, userID string, network chainregistry.Network) (Wallet, error) {
	address, privateKey, err := s.blockchain.GenerateWallet()
	if err != nil {
		return Wallet{}, fmt.Errorf("generating wallet keypair: %w", err)
	}

	encrypted, err := keyvault.Encrypt(privateKey, s.encryptionKey)
	if err != nil {
		return Wallet{}, fmt.Errorf("encrypting wallet key: %w", err)
	}

	wallet := Wallet{
		UserID:       userID,
		Network:      network,
		Address:      types.NormalizeAddress(address.String()),
		EncryptedKey: encrypted,
	}
	if err := validator.Validate(wallet); err != nil {
		return Wallet{}, err
	}

	if err := s.storage.SaveWallet(ctx, wallet); err != nil {
		return Wallet{}, err
	}
	return wallet, nil
}

func (s *service) Wallets(ctx context.Context, userID string) ([]Wallet, error) {
	return s.storage.UserWallets(ctx, userID)
}

// isOwnWallet reports whether the address is one of the user's custodial
// wallets on the network.
func (s *service) isOwnWallet(ctx context.Context, userID string, network chainregistry.Network, address types.Address) (bool, error) {
	wallets, err := s.storage.UserWallets(ctx, userID)
	if err != nil {
		return false, err
	}

	for _, wallet := range wallets {
		if wallet.Network == network && wallet.Address == address {
			return true, nil
		}
	}
	return false, nil
}

func (s *service) Follow(ctx context.Context, userID string, network chainregistry.Network, address types.Address) error {
	sub := Subscription{
		UserID:  userID,
		Network: network,
		Address: types.NormalizeAddress(address.String()),
	}
	if err := validator.Validate(sub); err != nil {
		return err
	}

	own, err := s.isOwnWallet(ctx, userID, network, sub.Address)
	if err != nil {
		return err
	}
	if own {
		return ErrSelfSubscription
	}

	return s.storage.SaveSubscription(ctx, sub)
}

func (s *service) Unfollow(ctx context.Context, userID string, network chainregistry.Network, address types.Address) error {
	sub := Subscription{
		UserID:  userID,
		Network: network,
		Address: types.NormalizeAddress(address.String()),
	}
	if err := validator.Validate(sub); err != nil {
		return err
	}

	return s.storage.DeleteSubscription(ctx, sub)
}

func (s *service) AddToken(ctx context.Context, userID string, network chainregistry.Network, address types.Address) (replication.Token, error) {
	address = types.NormalizeAddress(address.String())

	tracked, err := s.storage.UserTokens(ctx, userID, network)
	if err != nil {
		return replication.Token{}, err
	}
	if len(tracked) >= s.maxTokens {
		return replication.Token{}, ErrTokenLimitReached
	}

	token, err := s.blockchain.TokenMetadata(ctx, network, address)
	if err != nil {
		return replication.Token{}, fmt.Errorf("reading token metadata: %w", err)
	}
	token.Address = address
	token.Network = network

	if err := s.storage.SaveToken(ctx, userID, token); err != nil {
		return replication.Token{}, err
	}
	return token, nil
}

func (s *service) RemoveToken(ctx context.Context, userID string, network chainregistry.Network, address types.Address) error {
	return s.storage.DeleteToken(ctx, userID, network, types.NormalizeAddress(address.String()))
}

func (s *service) RemoveTokens(ctx context.Context, userID string, network chainregistry.Network) error {
	return s.storage.DeleteTokens(ctx, userID, network)
}

func (s *service) RemoveAllTokens(ctx context.Context, userID string) error {
	return s.storage.DeleteAllTokens(ctx, userID)
}

func (s *service) SetReplication(ctx context.Context, userID string, network chainregistry.Network, subscription, token types.Address, buyLimit, sellLimit *big.Int) error {
	if buyLimit == nil || sellLimit == nil || buyLimit.Sign() < 0 || sellLimit.Sign() < 0 {
		return fmt.Errorf("replication limits must be whole non-negative token units")
	}

	sub := Subscription{
		UserID:  userID,
		Network: network,
		Address: types.NormalizeAddress(subscription.String()),
	}
	followed, err := s.storage.HasSubscription(ctx, sub)
	if err != nil {
		return err
	}
	if !followed {
		return ErrSubscriptionNotFound
	}

	trackedToken, err := s.storage.UserToken(ctx, userID, network, types.NormalizeAddress(token.String()))
	if err != nil {
		return err
	}

	policy := replication.Policy{
		Network:      network,
		Subscription: sub.Address,
		Token:        trackedToken,
		BuyLimit:     buyLimit,
		SellLimit:    sellLimit,
	}
	return s.storage.SavePolicy(ctx, userID, policy)
}

type config struct {
	maxTokens int
}

// Option customizes the service.
type Option func(*config)

// WithMaxTokensPerNetwork overrides the default cap of 5 tracked tokens per
// (user, network).
func WithMaxTokensPerNetwork(n int) Option {
	return func(c *config) {
		c.maxTokens = n
	}
}

// New creates the registry service. encryptionKey is the hex-encoded
// 32-byte vault key used to encrypt generated wallet keys.
func New(storage Storage, blockchain Blockchain, encryptionKey string, opts ...Option) *service {
	cfg := config{
		maxTokens: defaultMaxTokensPerNetwork,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		storage:       storage,
		blockchain:    blockchain,
		encryptionKey: encryptionKey,
		maxTokens:     cfg.maxTokens,
	}
}
