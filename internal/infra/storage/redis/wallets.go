package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	redis "github.com/redis/go-redis/v9"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/tradeexec"
	"github.com/gabapcia/swapmirror/internal/walletregistry"
)

// walletsKey is the hash of one user's custodial wallets, one field per
// network.
//
// Format: "wallets:{userID}"
func walletsKey(userID string) string {
	return fmt.Sprintf("wallets:%s", userID)
}

// SaveWallet persists a newly created wallet. The field is written at most
// once: wallets are never mutated in place.
func (c *client) SaveWallet(ctx context.Context, wallet walletregistry.Wallet) error {
	payload, err := json.Marshal(wallet)
	if err != nil {
		return err
	}

	created, err := c.conn.HSetNX(ctx, walletsKey(wallet.UserID), wallet.Network.String(), payload).Result()
	if err != nil {
		return err
	}
	if !created {
		return walletregistry.ErrWalletAlreadyExists
	}
	return nil
}

// UserWallets returns every custodial wallet of the user.
func (c *client) UserWallets(ctx context.Context, userID string) ([]walletregistry.Wallet, error) {
	fields, err := c.conn.HGetAll(ctx, walletsKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	wallets := make([]walletregistry.Wallet, 0, len(fields))
	for _, payload := range fields {
		var wallet walletregistry.Wallet
		if err := json.Unmarshal([]byte(payload), &wallet); err != nil {
			return nil, err
		}
		wallets = append(wallets, wallet)
	}
	return wallets, nil
}

// Wallet returns the user's wallet on one network in the executor's view,
// or tradeexec.ErrWalletNotFound.
func (c *client) Wallet(ctx context.Context, userID string, network chainregistry.Network) (tradeexec.Wallet, error) {
	payload, err := c.conn.HGet(ctx, walletsKey(userID), network.String()).Result()
	if errors.Is(err, redis.Nil) {
		return tradeexec.Wallet{}, tradeexec.ErrWalletNotFound
	}
	if err != nil {
		return tradeexec.Wallet{}, err
	}

	var record walletregistry.Wallet
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return tradeexec.Wallet{}, err
	}

	return tradeexec.Wallet{
		UserID:       record.UserID,
		Network:      record.Network,
		Address:      record.Address,
		EncryptedKey: record.EncryptedKey,
	}, nil
}

var _ tradeexec.WalletStorage = new(client)
