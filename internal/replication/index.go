package replication

import (
	"context"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/pkg/types"
)

// MembershipStorage answers O(1) set-membership questions against the
// session store. Membership is maintained by the wallet registry in the same
// logical operation as every subscription/token mutation, so it is an
// eventually consistent subset of the persisted records.
type MembershipStorage interface {
	// IsSubscribedAddress reports whether any user follows the address on
	// the given network.
	IsSubscribedAddress(ctx context.Context, network chainregistry.Network, address types.Address) (bool, error)

	// IsTrackedToken reports whether any user tracks the token on the given
	// network.
	IsTrackedToken(ctx context.Context, network chainregistry.Network, token types.Address) (bool, error)
}

// Index gates decoded swaps with cheap membership checks before any policy
// state is loaded. Chains emit many irrelevant swaps per block; the index
// keeps them from reaching the expensive matching path.
type Index struct {
	storage MembershipStorage
}

// NewIndex creates an Index over the given membership storage.
func NewIndex(storage MembershipStorage) *Index {
	return &Index{storage: storage}
}

// ShouldProcess runs the ordered membership gates, short-circuiting on the
// first miss: (a) the swap's counterpart must be a followed address on the
// network, (b) either swap leg must be a tracked token on the network.
func (i *Index) ShouldProcess(ctx context.Context, swap Swap) (bool, error) {
	subscribed, err := i.storage.IsSubscribedAddress(ctx, swap.Network, swap.Counterpart)
	if err != nil || !subscribed {
		return false, err
	}

	for _, token := range []types.Address{swap.TokenIn, swap.TokenOut} {
		tracked, err := i.storage.IsTrackedToken(ctx, swap.Network, token)
		if err != nil {
			return false, err
		}
		if tracked {
			return true, nil
		}
	}

	return false, nil
}
