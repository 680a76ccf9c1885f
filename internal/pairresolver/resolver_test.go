package pairresolver

import (
	"context"
	"sync"
	"testing"

	"github.com/gabapcia/swapmirror/internal/chainregistry"
	"github.com/gabapcia/swapmirror/internal/pkg/logger"
	"github.com/gabapcia/swapmirror/internal/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Initialize logger for tests to prevent nil pointer dereference
	_ = logger.Init(logger.WithLevel("error")) // Use error level to reduce test output
}

const (
	testPair   = types.Address("0x1111111111111111111111111111111111111111")
	testToken0 = types.Address("0x2222222222222222222222222222222222222222")
	testToken1 = types.Address("0x3333333333333333333333333333333333333333")
	testWNB    = types.Address("0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c")
)

// chainReaderFake counts contract reads so tests can assert cache behavior.
type chainReaderFake struct {
	mu           sync.Mutex
	pairByTokens map[string]types.Address
	token0       types.Address
	token1       types.Address

	factoryCalls int
	tokenCalls   int
}

func (f *chainReaderFake) FactoryPair(_ context.Context, _ chainregistry.Network, _, tokenA, tokenB types.Address) (types.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.factoryCalls++

	pair, ok := f.pairByTokens[tokenA.String()+"/"+tokenB.String()]
	if !ok {
		return "0x0000000000000000000000000000000000000000", nil
	}
	return pair, nil
}

func (f *chainReaderFake) PairToken0(_ context.Context, _ chainregistry.Network, _ types.Address) (types.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokenCalls++
	return f.token0, nil
}

func (f *chainReaderFake) PairToken1(_ context.Context, _ chainregistry.Network, _ types.Address) (types.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokenCalls++
	return f.token1, nil
}

// pairStorageFake is an in-memory PairStorage.
type pairStorageFake struct {
	mu    sync.Mutex
	pairs map[types.Address]PairAddresses
}

func newPairStorageFake() *pairStorageFake {
	return &pairStorageFake{pairs: make(map[types.Address]PairAddresses)}
}

func (f *pairStorageFake) AddPair(_ context.Context, _ chainregistry.Network, pair PairAddresses) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pairs[pair.Pair] = pair
	return nil
}

func (f *pairStorageFake) GetPair(_ context.Context, _ chainregistry.Network, pairAddress types.Address) (PairAddresses, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pair, ok := f.pairs[pairAddress]
	if !ok {
		return PairAddresses{}, ErrPairNotCached
	}
	return pair, nil
}

func newTestResolver() (*resolver, *chainReaderFake, *pairStorageFake) {
	chain := &chainReaderFake{
		pairByTokens: map[string]types.Address{
			testWNB.String() + "/" + testToken1.String(): testPair,
		},
		token0: testToken0,
		token1: testToken1,
	}
	storage := newPairStorageFake()
	return New(chain, storage), chain, storage
}

func TestResolver_PairByTokens(t *testing.T) {
	t.Run("should resolve and cache a new pair", func(t *testing.T) {
		r, chain, storage := newTestResolver()

		pair, err := r.PairByTokens(t.Context(), chainregistry.NetworkBSC, "0x00000000000000000000000000000000000000fa", testWNB, testToken1)
		require.NoError(t, err)
		assert.Equal(t, testPair, pair.Pair)
		assert.Equal(t, testToken0, pair.Token0)
		assert.Equal(t, testToken1, pair.Token1)
		assert.Equal(t, 2, chain.tokenCalls)

		cached, err := storage.GetPair(t.Context(), chainregistry.NetworkBSC, testPair)
		require.NoError(t, err)
		assert.Equal(t, pair, cached)
	})

	t.Run("should fail with ErrPairNotFound on the zero address", func(t *testing.T) {
		r, _, _ := newTestResolver()

		_, err := r.PairByTokens(t.Context(), chainregistry.NetworkBSC, "0x00000000000000000000000000000000000000fa", testWNB, testToken0)
		assert.ErrorIs(t, err, ErrPairNotFound)
	})
}

func TestResolver_PairByAddress(t *testing.T) {
	t.Run("should perform no contract reads on the second resolution", func(t *testing.T) {
		r, chain, _ := newTestResolver()

		first, err := r.PairByAddress(t.Context(), chainregistry.NetworkBSC, testPair)
		require.NoError(t, err)
		require.Equal(t, 2, chain.tokenCalls)

		second, err := r.PairByAddress(t.Context(), chainregistry.NetworkBSC, testPair)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 2, chain.tokenCalls, "second resolution must be served from cache")
	})
}
