// Package replication holds the policy model and the pure matching logic
// that decides whether an observed swap should be mirrored for a user, plus
// the cheap membership gates that run before any policy is loaded.
package replication

import (
	"math/big"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/pkg/types"
)

// Token is a tracked ERC-20-style asset.
type Token struct {
	Address  types.Address
	Network  chainregistry.Network
	Name     string
	Symbol   string
	Decimals uint8
}

// Policy is a replication policy over one (subscription, token) key. Limits
// are whole, non-negative token units; zero disables the side. Policies are
// upserted: re-setting the same key updates the limits in place.
type Policy struct {
	Network      chainregistry.Network
	Subscription types.Address // followed wallet this policy applies to
	Token        Token         // tracked token this policy applies to
	BuyLimit     *big.Int      // min whole units of an observed buy that triggers a mirror, 0 = off
	SellLimit    *big.Int      // min whole units of an observed sell that triggers a mirror, 0 = off
}

// Swap is the view of a decoded swap event the matcher operates on.
type Swap struct {
	Network     chainregistry.Network
	TokenIn     types.Address
	TokenOut    types.Address
	AmountIn    *big.Int
	AmountOut   *big.Int
	Counterpart types.Address // wallet the swap is attributed to
}
