package replication

import (
	"math/big"

	"github.com/gabapcia/swapmirror/internal/pkg/types"
)

// wholeUnits truncates a raw on-chain amount to whole token units. The
// remainder is discarded deliberately: thresholds are expressed in whole
// units and sub-unit amounts never trigger a match.
func wholeUnits(amount *big.Int, decimals uint8) *big.Int {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return new(big.Int).Quo(amount, scale)
}

// meetsThreshold reports whether the truncated amount reaches the policy
// threshold: only trades of at least that many whole units are mirrored.
// A nil or zero threshold disables the side entirely, so sub-unit amounts
// can never trigger a match.
func meetsThreshold(units, threshold *big.Int) bool {
	if threshold == nil || threshold.Sign() <= 0 {
		return false
	}
	return units.Cmp(threshold) >= 0
}

// Match returns the first policy in list order that qualifies the swap for
// replication on behalf of the given subscription, or nil when no policy
// qualifies.
//
// A swap qualifies only when exactly one side of the trade is the network's
// wrapped-native token: native-to-token is a buy matched against the
// tracked token on the out leg and the policy's buy limit; token-to-native
// is a sell matched against the in leg and the sell limit. Swaps between
// two non-native tokens never qualify.
//
// When several policies could match, the first in list order wins. No
// priority beyond list order is defined.
func Match(swap Swap, policies []Policy, subscription, native types.Address) *Policy {
	var (
		nativeIn  = swap.TokenIn == native
		nativeOut = swap.TokenOut == native
	)
	if nativeIn == nativeOut {
		return nil
	}

	for i := range policies {
		policy := &policies[i]
		if policy.Network != swap.Network || policy.Subscription != subscription {
			continue
		}

		if nativeIn {
			if policy.Token.Address != swap.TokenOut {
				continue
			}
			if meetsThreshold(wholeUnits(swap.AmountOut, policy.Token.Decimals), policy.BuyLimit) {
				return policy
			}
			continue
		}

		if policy.Token.Address != swap.TokenIn {
			continue
		}
		if meetsThreshold(wholeUnits(swap.AmountIn, policy.Token.Decimals), policy.SellLimit) {
			return policy
		}
	}

	return nil
}
