package cli

import (
	"context"
	"fmt"
	"math/big"

	"github.com/gabapcia/swapmirror/internal/walletregistry"

	"github.com/urfave/cli/v3"
)

// parseLimitFlag parses the named flag as a whole-unit trade limit.
func parseLimitFlag(c *cli.Command, name string) (*big.Int, error) {
	raw := c.String(name)

	limit, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("invalid --%s value: %q", name, raw)
	}
	return limit, nil
}

// setReplicationCommand returns a CLI command that sets the replication
// limits over one followed address and one tracked token.
//
// Usage example:
//
//	swapmirror set-replication --user alice --network bsc \
//	  --subscription 0xABC123... --token 0xDEF456... --buy 100 --sell 0
func setReplicationCommand(wr walletregistry.Service) *cli.Command {
	return &cli.Command{
		Name:        "set-replication",
		Description: "Set the replication limits for a (followed address, tracked token) pair.",
		Usage:       "Limits are whole token units; an observed trade at or above the limit is mirrored. Zero disables the side.",
		Flags: []cli.Flag{
			userFlag(),
			networkFlag(),
			&cli.StringFlag{
				Name:     "subscription",
				Usage:    "Followed wallet address the policy applies to",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "token",
				Usage:    "Tracked token address the policy applies to",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "buy",
				Usage: "Minimum whole units of an observed buy that triggers a mirror (0 disables)",
				Value: "0",
			},
			&cli.StringFlag{
				Name:  "sell",
				Usage: "Minimum whole units of an observed sell that triggers a mirror (0 disables)",
				Value: "0",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			network, err := parseNetworkFlag(c)
			if err != nil {
				return err
			}

			subscription, err := parseAddressFlag(c, "subscription")
			if err != nil {
				return err
			}

			token, err := parseAddressFlag(c, "token")
			if err != nil {
				return err
			}

			buyLimit, err := parseLimitFlag(c, "buy")
			if err != nil {
				return err
			}

			sellLimit, err := parseLimitFlag(c, "sell")
			if err != nil {
				return err
			}

			return describeErr(wr.SetReplication(ctx, c.String("user"), network, subscription, token, buyLimit, sellLimit))
		},
	}
}
