package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/pkg/types"
	"github.com/gabapcia/swapmirror/internal/replication"
	"github.com/gabapcia/swapmirror/internal/walletregistry"
)

// tokensKey is the hash of one user's tracked tokens on a network, one field
// per token address.
//
// Format: "tokens:{userID}:{network}"
func tokensKey(userID string, network chainregistry.Network) string {
	return fmt.Sprintf("tokens:%s:%s", userID, network)
}

// trackersKey is the set of users tracking one token on a network. It drives
// the gating index: the index entry lives while this set is non-empty.
//
// Format: "trackers:{network}:{token}"
func trackersKey(network chainregistry.Network, token types.Address) string {
	return fmt.Sprintf("trackers:%s:%s", network, token)
}

// SaveToken persists a tracked token. The per-user record, the tracker
// reverse index and the gating index are written together.
func (c *client) SaveToken(ctx context.Context, userID string, token replication.Token) error {
	payload, err := json.Marshal(token)
	if err != nil {
		return err
	}

	created, err := c.conn.HSetNX(ctx, tokensKey(userID, token.Network), token.Address.String(), payload).Result()
	if err != nil {
		return err
	}
	if !created {
		return walletregistry.ErrTokenAlreadyTracked
	}

	_, err = c.conn.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, trackersKey(token.Network, token.Address), userID)
		pipe.SAdd(ctx, tokenIndexKey(token.Network), token.Address.String())
		return nil
	})
	return err
}

// DeleteToken removes a tracked token, every policy the user holds over it
// and, once the last tracker is gone, the gating index entry.
func (c *client) DeleteToken(ctx context.Context, userID string, network chainregistry.Network, address types.Address) error {
	removed, err := c.conn.HDel(ctx, tokensKey(userID, network), address.String()).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return walletregistry.ErrTokenNotFound
	}

	if err := c.conn.SRem(ctx, trackersKey(network, address), userID).Err(); err != nil {
		return err
	}

	remaining, err := c.conn.SCard(ctx, trackersKey(network, address)).Result()
	if err != nil {
		return err
	}
	if remaining == 0 {
		if err := c.conn.SRem(ctx, tokenIndexKey(network), address.String()).Err(); err != nil {
			return err
		}
	}

	return c.deleteTokenPolicies(ctx, userID, network, address)
}

// DeleteTokens removes every token the user tracks on the network.
func (c *client) DeleteTokens(ctx context.Context, userID string, network chainregistry.Network) error {
	addresses, err := c.conn.HKeys(ctx, tokensKey(userID, network)).Result()
	if err != nil {
		return err
	}

	for _, address := range addresses {
		if err := c.DeleteToken(ctx, userID, network, types.Address(address)); err != nil {
			return err
		}
	}
	return nil
}

// DeleteAllTokens removes every token the user tracks on any network.
func (c *client) DeleteAllTokens(ctx context.Context, userID string) error {
	prefix := fmt.Sprintf("tokens:%s:", userID)

	var cursor uint64
	for {
		keys, next, err := c.conn.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return err
		}

		for _, key := range keys {
			network := chainregistry.Network(strings.TrimPrefix(key, prefix))
			if err := c.DeleteTokens(ctx, userID, network); err != nil {
				return err
			}
		}

		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// UserTokens returns the tokens the user tracks on the network.
func (c *client) UserTokens(ctx context.Context, userID string, network chainregistry.Network) ([]replication.Token, error) {
	fields, err := c.conn.HGetAll(ctx, tokensKey(userID, network)).Result()
	if err != nil {
		return nil, err
	}

	tokens := make([]replication.Token, 0, len(fields))
	for _, payload := range fields {
		var token replication.Token
		if err := json.Unmarshal([]byte(payload), &token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

// UserToken returns one tracked token, or walletregistry.ErrTokenNotFound.
func (c *client) UserToken(ctx context.Context, userID string, network chainregistry.Network, address types.Address) (replication.Token, error) {
	payload, err := c.conn.HGet(ctx, tokensKey(userID, network), address.String()).Result()
	if errors.Is(err, redis.Nil) {
		return replication.Token{}, walletregistry.ErrTokenNotFound
	}
	if err != nil {
		return replication.Token{}, err
	}

	var token replication.Token
	if err := json.Unmarshal([]byte(payload), &token); err != nil {
		return replication.Token{}, err
	}
	return token, nil
}
