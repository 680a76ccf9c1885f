package main

import (
	"context"
	"log"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/config"
	"github.com/gabapcia/swapmirror/internal/handlers/cli"
	"github.com/gabapcia/swapmirror/internal/infra/blockchain/evm"
	"github.com/gabapcia/swapmirror/internal/infra/notify/lognotify"
	"github.com/gabapcia/swapmirror/internal/infra/notify/webhook"
	"github.com/gabapcia/swapmirror/internal/infra/storage/redis"
	"github.com/gabapcia/swapmirror/internal/pairresolver"
	"github.com/gabapcia/swapmirror/internal/pkg/logger"
	"github.com/gabapcia/swapmirror/internal/pkg/telemetry"
	"github.com/gabapcia/swapmirror/internal/replication"
	"github.com/gabapcia/swapmirror/internal/swapproc"
	"github.com/gabapcia/swapmirror/internal/swapwatch"
	"github.com/gabapcia/swapmirror/internal/tradeexec"
	"github.com/gabapcia/swapmirror/internal/walletregistry"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}

	shutdownTelemetry, err := telemetry.Init(ctx, cfg.OtelServiceName)
	if err != nil {
		log.Fatalf("initializing telemetry: %v", err)
	}
	defer shutdownTelemetry(ctx)

	if err := logger.Init(logger.WithLevel(cfg.LogLevel)); err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	storage, err := redis.NewClient(ctx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal(ctx, "connecting to redis", "error", err)
	}
	defer storage.Close()

	registry := chainregistry.New(cfg.NetworkMetadata(), storage)

	chain, err := evm.New(ctx, registry)
	if err != nil {
		logger.Fatal(ctx, "connecting to blockchain networks", "error", err)
	}
	defer chain.Close()

	streamers := make(map[chainregistry.Network]swapwatch.LogStreamer, len(cfg.Networks))
	for network := range cfg.Networks {
		streamers[network] = chain
	}

	var notifier swapproc.Notifier = lognotify.New()
	if cfg.NotificationWebhookEndpoint != "" {
		notifier = webhook.New(cfg.NotificationWebhookEndpoint)
	}

	executorOpts := []tradeexec.Option{
		tradeexec.WithSlippageBps(cfg.SlippageBps),
		tradeexec.WithMaxReplicationDepth(cfg.MaxReplicationDepth),
	}
	if cfg.AllowZeroMinOut {
		executorOpts = append(executorOpts, tradeexec.WithZeroMinOutAllowed())
	}
	executor := tradeexec.New(chain, storage, storage, registry, cfg.WalletEncryptionKey, executorOpts...)

	processor := swapproc.New(
		swapwatch.New(streamers),
		pairresolver.New(chain, storage),
		replication.NewIndex(storage),
		executor,
		registry,
		storage,
		storage,
		notifier,
	)

	accounts := walletregistry.New(storage, chain, cfg.WalletEncryptionKey,
		walletregistry.WithMaxTokensPerNetwork(cfg.MaxTokensPerNetwork),
	)

	if err := cli.Run(ctx, accounts, processor); err != nil {
		logger.Fatal(ctx, "command failed", "error", err)
	}
}
