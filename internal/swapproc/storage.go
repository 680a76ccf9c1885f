package swapproc

import (
	"context"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/pkg/types"
	"github.com/gabapcia/swapmirror/internal/replication"
)

// CascadeState is the replication state a previously mirrored trade left
// behind under its transaction hash: who already traded in this cascade and
// how deep the cascade is.
type CascadeState struct {
	Initiators []string
	Depth      int
}

// ContextStorage restores cascade state for observed transactions. An
// absent entry means the swap was organic, not a mirror.
type ContextStorage interface {
	// ReplicationContext returns the cascade state stored under the
	// transaction hash, and whether one exists.
	ReplicationContext(ctx context.Context, network chainregistry.Network, txHash string) (CascadeState, bool, error)
}

// PolicyStorage lists followers of an address and their replication
// policies.
type PolicyStorage interface {
	// Followers returns the IDs of every user following the address on the
	// network.
	Followers(ctx context.Context, network chainregistry.Network, address types.Address) ([]string, error)

	// UserPolicies returns the user's replication policies over one
	// followed address, in insertion order.
	UserPolicies(ctx context.Context, userID string, network chainregistry.Network, subscription types.Address) ([]replication.Policy, error)
}
