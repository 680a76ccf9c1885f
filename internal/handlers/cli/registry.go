package cli

import (
	"context"
	"fmt"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/pkg/types"
	"github.com/gabapcia/swapmirror/internal/pkg/usererr"
	"github.com/gabapcia/swapmirror/internal/walletregistry"

	"github.com/urfave/cli/v3"
)

// describeErr prefixes a service error with its user-facing message when one
// is attached, keeping the technical cause in the chain for exit handling.
func describeErr(err error) error {
	if err == nil {
		return nil
	}
	if msg := usererr.Message(err, ""); msg != "" {
		return fmt.Errorf("%s (%w)", msg, err)
	}
	return err
}

// userFlag is the user identifier flag shared by every account command.
func userFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "user",
		Usage:    "User identifier the command acts on behalf of",
		Required: true,
	}
}

// networkFlag is the network identifier flag shared by every account command.
func networkFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "network",
		Usage:    "Blockchain network name (e.g., ethereum, bsc)",
		Required: true,
	}
}

// parseNetworkFlag validates the network flag into its typed value.
func parseNetworkFlag(c *cli.Command) (chainregistry.Network, error) {
	return chainregistry.ParseNetwork(c.String("network"))
}

// parseAddressFlag validates the named flag as an EVM address.
func parseAddressFlag(c *cli.Command, name string) (types.Address, error) {
	return types.AddressFromString(c.String(name))
}

// createWalletCommand returns a CLI command that generates a custodial
// wallet for a user on a network and prints its address.
//
// Usage example:
//
//	swapmirror create-wallet --user alice --network bsc
func createWalletCommand(wr walletregistry.Service) *cli.Command {
	return &cli.Command{
		Name:        "create-wallet",
		Description: "Generate a custodial wallet for a user on a specific network.",
		Usage:       "Creates the user's wallet. Each user gets at most one wallet per network.",
		Flags: []cli.Flag{
			userFlag(),
			networkFlag(),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			network, err := parseNetworkFlag(c)
			if err != nil {
				return err
			}

			wallet, err := wr.CreateWallet(ctx, c.String("user"), network)
			if err != nil {
				return describeErr(err)
			}

			fmt.Printf("%s\t%s\n", wallet.Network, wallet.Address)
			return nil
		},
	}
}

// listWalletsCommand returns a CLI command that prints every custodial
// wallet of a user.
//
// Usage example:
//
//	swapmirror wallets --user alice
func listWalletsCommand(wr walletregistry.Service) *cli.Command {
	return &cli.Command{
		Name:        "wallets",
		Description: "List the custodial wallets of a user across all networks.",
		Usage:       "Prints one line per wallet: network and address.",
		Flags: []cli.Flag{
			userFlag(),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			wallets, err := wr.Wallets(ctx, c.String("user"))
			if err != nil {
				return describeErr(err)
			}

			for _, wallet := range wallets {
				fmt.Printf("%s\t%s\n", wallet.Network, wallet.Address)
			}
			return nil
		},
	}
}

// followCommand returns a CLI command that subscribes a user to the swaps of
// an external address.
//
// Usage example:
//
//	swapmirror follow --user alice --network bsc --address 0xABC123...
func followCommand(wr walletregistry.Service) *cli.Command {
	return &cli.Command{
		Name:        "follow",
		Description: "Subscribe a user to the swap activity of an external wallet on a specific network.",
		Usage:       "Registers a subscription. Must provide user, network and address.",
		Flags: []cli.Flag{
			userFlag(),
			networkFlag(),
			&cli.StringFlag{
				Name:     "address",
				Usage:    "Wallet address to follow",
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

			return describeErr(wr.Follow(ctx, c.String("user"), network, address))
		},
	}
}

// unfollowCommand returns a CLI command that removes a subscription along
// with the replication policies keyed under it.
//
// Usage example:
//
//	swapmirror unfollow --user alice --network bsc --address 0xABC123...
func unfollowCommand(wr walletregistry.Service) *cli.Command {
	return &cli.Command{
		Name:        "unfollow",
		Description: "Unsubscribe a user from the swap activity of a wallet on a specific network.",
		Usage:       "Removes the subscription and its replication policies.",
		Flags: []cli.Flag{
			userFlag(),
			networkFlag(),
			&cli.StringFlag{
				Name:     "address",
				Usage:    "Wallet address to unfollow",
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

			return describeErr(wr.Unfollow(ctx, c.String("user"), network, address))
		},
	}
}
