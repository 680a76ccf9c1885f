package replication

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// membershipStorageFake is an in-memory MembershipStorage that records how
// many lookups were made, so tests can assert short-circuiting.
type membershipStorageFake struct {
	subscriptions     types.Set[types.Address]
	tokens            types.Set[types.Address]
	subscriptionCalls int
	tokenCalls        int
	err               error
}

func (f *membershipStorageFake) IsSubscribedAddress(_ context.Context, _ chainregistry.Network, address types.Address) (bool, error) {
	f.subscriptionCalls++
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.subscriptions[address]
	return ok, nil
}

func (f *membershipStorageFake) IsTrackedToken(_ context.Context, _ chainregistry.Network, token types.Address) (bool, error) {
	f.tokenCalls++
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.tokens[token]
	return ok, nil
}

func gatedSwap() Swap {
	return Swap{
		Network:     chainregistry.NetworkBSC,
		TokenIn:     native,
		TokenOut:    trackedToken,
		AmountIn:    big.NewInt(1),
		AmountOut:   big.NewInt(1),
		Counterpart: followed,
	}
}

func TestIndex_ShouldProcess(t *testing.T) {
	t.Run("should pass a swap by a followed address trading a tracked token", func(t *testing.T) {
		storage := &membershipStorageFake{
			subscriptions: types.NewSet(followed),
			tokens:        types.NewSet(trackedToken),
		}

		ok, err := NewIndex(storage).ShouldProcess(t.Context(), gatedSwap())
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("should short-circuit on an unfollowed counterpart without a token lookup", func(t *testing.T) {
		storage := &membershipStorageFake{
			subscriptions: types.NewSet[types.Address](),
			tokens:        types.NewSet(trackedToken),
		}

		ok, err := NewIndex(storage).ShouldProcess(t.Context(), gatedSwap())
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, storage.tokenCalls)
	})

	t.Run("should reject a swap with no tracked leg", func(t *testing.T) {
		storage := &membershipStorageFake{
			subscriptions: types.NewSet(followed),
			tokens:        types.NewSet[types.Address](),
		}

		ok, err := NewIndex(storage).ShouldProcess(t.Context(), gatedSwap())
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, 2, storage.tokenCalls)
	})

	t.Run("should surface storage errors", func(t *testing.T) {
		storage := &membershipStorageFake{err: errors.New("session store down")}

		_, err := NewIndex(storage).ShouldProcess(t.Context(), gatedSwap())
		assert.Error(t, err)
	})
}
