package cli

import (
	"context"
	"fmt"

	"github.com/gabapcia/swapmirror/internal/walletregistry"

	"github.com/urfave/cli/v3"
)

// trackTokenCommand returns a CLI command that starts tracking a token for a
// user, reading its metadata from the chain.
//
// Usage example:
//
//	swapmirror track-token --user alice --network bsc --address 0xABC123...
func trackTokenCommand(wr walletregistry.Service) *cli.Command {
	return &cli.Command{
		Name:        "track-token",
		Description: "Start tracking a token for a user on a specific network.",
		Usage:       "Reads the token metadata from the chain and registers it. Tracked tokens are capped per network.",
		Flags: []cli.Flag{
			userFlag(),
			networkFlag(),
			&cli.StringFlag{
				Name:     "address",
				Usage:    "Token contract address to track",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			network, err := parseNetworkFlag(c)
			if err != nil {
				return err
			}

			address, err := parseAddressFlag(c, "address")
			if err != nil {
				return err
			}

			token, err := wr.AddToken(ctx, c.String("user"), network, address)
			if err != nil {
				return describeErr(err)
			}

			fmt.Printf("%s\t%s\t%s\tdecimals=%d\n", token.Symbol, token.Name, token.Address, token.Decimals)
			return nil
		},
	}
}

// untrackTokenCommand returns a CLI command that stops tracking one token,
// or every token on a network when no address is given.
//
// Usage example:
//
//	swapmirror untrack-token --user alice --network bsc --address 0xABC123...
//	swapmirror untrack-token --user alice --network bsc
func untrackTokenCommand(wr walletregistry.Service) *cli.Command {
	return &cli.Command{
		Name:        "untrack-token",
		Description: "Stop tracking a token for a user on a specific network.",
		Usage:       "Removes the token and its replication policies. Without --address, removes every token on the network.",
		Flags: []cli.Flag{
			userFlag(),
			networkFlag(),
			&cli.StringFlag{
				Name:  "address",
				Usage: "Token contract address to stop tracking. When omitted, all tokens on the network are removed.",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			network, err := parseNetworkFlag(c)
			if err != nil {
				return err
			}

			if c.String("address") == "" {
				return describeErr(wr.RemoveTokens(ctx, c.String("user"), network))
			}

			address, err := parseAddressFlag(c, "address")
			if err != nil {
				return err
			}

			return describeErr(wr.RemoveToken(ctx, c.String("user"), network, address))
		},
	}
}

// untrackAllTokensCommand returns a CLI command that stops tracking every
// token of a user on every network.
//
// Usage example:
//
//	swapmirror untrack-all-tokens --user alice
func untrackAllTokensCommand(wr walletregistry.Service) *cli.Command {
	return &cli.Command{
		Name:        "untrack-all-tokens",
		Description: "Stop tracking every token of a user across all networks.",
		Usage:       "Removes every tracked token and the replication policies over them.",
		Flags: []cli.Flag{
			userFlag(),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return describeErr(wr.RemoveAllTokens(ctx, c.String("user")))
		},
	}
}
