package cli

import (
	"context"
	"os"

	"github.com/gabapcia/swapmirror/internal/swapproc"
	"github.com/gabapcia/swapmirror/internal/walletregistry"

	"github.com/urfave/cli/v3"
)

// Run initializes and executes the swapmirror CLI application.
//
// It registers all available commands, including:
//
//   - `start`: Starts the full trade-replication pipeline.
//   - `create-wallet`, `wallets`: Custodial wallet management.
//   - `follow`, `unfollow`: Subscription management.
//   - `track-token`, `untrack-token`, `untrack-all-tokens`: Tracked tokens.
//   - `set-replication`: Replication policy limits.
//
// Parameters:
//   - ctx: Context used to control the lifecycle of the CLI application.
//   - wr: The walletregistry service implementation used by account commands.
//   - sp: The swapproc service implementation used by the pipeline command.
func Run(ctx context.Context, wr walletregistry.Service, sp swapproc.Service) error {
	app := &cli.Command{
		EnableShellCompletion: true,
		Name:                  "swapmirror",
		Description:           "Command-line interface for managing and running the swapmirror trade-replication pipeline.",
		Usage:                 "swapmirror [command] [flags]",
		Commands: []*cli.Command{
			startPipelineCommand(sp),
			createWalletCommand(wr),
			listWalletsCommand(wr),
			followCommand(wr),
			unfollowCommand(wr),
			trackTokenCommand(wr),
			untrackTokenCommand(wr),
			untrackAllTokensCommand(wr),
			setReplicationCommand(wr),
		},
	}

	return app.Run(ctx, os.Args)
}
