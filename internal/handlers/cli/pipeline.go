package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gabapcia/swapmirror/internal/swapproc"

	"github.com/urfave/cli/v3"
)

// startPipelineCommand returns a CLI command that starts the full
// trade-replication pipeline, including swap log ingestion, policy matching
// and trade execution.
//
// Usage example:
//
//	swapmirror start
//
// The process runs indefinitely until it receives an interrupt (SIGINT or SIGTERM).
func startPipelineCommand(sp swapproc.Service) *cli.Command {
	return &cli.Command{
		Name:        "start",
		Description: "Starts the trade-replication pipeline including swap ingestion, matching and execution.",
		Usage:       "Initializes and runs the full pipeline. Terminates gracefully on Ctrl+C or termination signals.",
		Action: func(ctx context.Context, c *cli.Command) error {
			quit := make(chan os.Signal, 1)
			defer close(quit)

			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			if err := sp.Start(ctx); err != nil {
				return err
			}
			defer sp.Close()

			<-quit
			return nil
		},
	}
}
