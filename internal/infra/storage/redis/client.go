// Package redis implements the storage ports of the domain services on top
// of a single Redis connection. Keys are namespaced per concern, e.g.
// "subscriptions:{userID}:{network}", "followers:{network}:{address}" and
// "pairs:{network}:{pair}". Writes that span multiple keys go through
// TxPipelined so index entries never drift from their backing sets.
package redis

import (
	"context"

	redis "github.com/redis/go-redis/v9"
)

// client satisfies every storage port in the project. The interface
// assertions live next to the methods that implement them.
type client struct {
	conn *redis.Client
}

// Close releases the underlying connection pool.
func (c *client) Close() error {
	return c.conn.Close()
}

// NewClient connects to Redis and verifies the connection with a ping.
func NewClient(ctx context.Context, addr, username, password string, db int) (*client, error) {
	conn := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       db,
	})

	if err := conn.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &client{
		conn: conn,
	}, nil
}
