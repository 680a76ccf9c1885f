// Package config loads the process configuration from the environment. A
// .env file is honored when present, real environment variables always win.
package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/pkg/types"
)

// defaultChainIDs holds the canonical EVM chain IDs, applied when the
// environment does not override them.
var defaultChainIDs = map[chainregistry.Network]int64{
	chainregistry.NetworkEthereum: 1,
	chainregistry.NetworkBSC:      56,
	chainregistry.NetworkPolygon:  137,
	chainregistry.NetworkSandbox:  31337,
}

// NetworkConfig is the per-network configuration block, read under the
// upper-cased network name as prefix (e.g. "BSC_RPC_ENDPOINT"). A network
// is enabled by giving it an RPC endpoint.
type NetworkConfig struct {
	ChainID              int64  `envconfig:"CHAIN_ID"`
	RPCEndpoint          string `envconfig:"RPC_ENDPOINT"`
	WSEndpoint           string `envconfig:"WS_ENDPOINT"`
	NativeCurrency       string `envconfig:"NATIVE_CURRENCY"`
	RouterAddress        string `envconfig:"ROUTER_ADDRESS"`
	FactoryAddress       string `envconfig:"FACTORY_ADDRESS"`
	WrappedNativeAddress string `envconfig:"WRAPPED_NATIVE_ADDRESS"`
}

type Config struct {
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
	OtelServiceName string `envconfig:"OTEL_SERVICE_NAME" default:"swapmirror"`

	RedisAddr     string `envconfig:"REDIS_ADDR" required:"true"`
	RedisUsername string `envconfig:"REDIS_USERNAME"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB"`

	// WalletEncryptionKey is the hex-encoded 32-byte AES key private keys
	// are sealed with.
	WalletEncryptionKey string `envconfig:"WALLET_ENCRYPTION_KEY" required:"true"`

	// NotificationWebhookEndpoint receives user notifications as JSON. When
	// empty, notifications are only logged.
	NotificationWebhookEndpoint string `envconfig:"NOTIFICATION_WEBHOOK_ENDPOINT"`

	SlippageBps         int64 `envconfig:"SLIPPAGE_BPS" default:"300"`
	MaxReplicationDepth int   `envconfig:"MAX_REPLICATION_DEPTH" default:"3"`
	MaxTokensPerNetwork int   `envconfig:"MAX_TOKENS_PER_NETWORK" default:"5"`

	// AllowZeroMinOut accepts trades whose slippage floor rounds to zero
	// instead of rejecting them. Off by default: a zero floor executes at
	// any price.
	AllowZeroMinOut bool `envconfig:"ALLOW_ZERO_MIN_OUT" default:"false"`

	Networks map[chainregistry.Network]NetworkConfig `ignored:"true"`
}

// Load reads the configuration from the environment, after loading a .env
// file when one exists.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}

	cfg.Networks = make(map[chainregistry.Network]NetworkConfig)
	for network := range defaultChainIDs {
		var nc NetworkConfig
		if err := envconfig.Process(strings.ToUpper(network.String()), &nc); err != nil {
			return Config{}, err
		}
		if nc.RPCEndpoint == "" {
			continue
		}
		if nc.ChainID == 0 {
			nc.ChainID = defaultChainIDs[network]
		}
		cfg.Networks[network] = nc
	}

	return cfg, nil
}

// NetworkMetadata converts the enabled network blocks into the registry's
// metadata map.
func (c Config) NetworkMetadata() map[chainregistry.Network]chainregistry.Metadata {
	networks := make(map[chainregistry.Network]chainregistry.Metadata, len(c.Networks))
	for network, nc := range c.Networks {
		networks[network] = chainregistry.Metadata{
			Network:        network,
			ChainID:        nc.ChainID,
			RPCEndpoint:    nc.RPCEndpoint,
			WSEndpoint:     nc.WSEndpoint,
			NativeCurrency: nc.NativeCurrency,
			Router:         types.NormalizeAddress(nc.RouterAddress),
			Factory:        types.NormalizeAddress(nc.FactoryAddress),
			WrappedNative:  types.NormalizeAddress(nc.WrappedNativeAddress),
		}
	}
	return networks
}
