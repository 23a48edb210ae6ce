package nodepool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nodes(ids ...string) []NodeInfo {
	out := make([]NodeInfo, len(ids))
	for i, id := range ids {
		out[i] = NodeInfo{ID: id, SocketAddr: id + ":1080"}
	}
	return out
}

func TestPickAndIncrementPrefersLeastLoaded(t *testing.T) {
	t.Parallel()

	p := New(nodes("a", "b"))
	_, err := p.PickAndIncrement() // a: 0->1
	require.NoError(t, err)

	picked, err := p.PickAndIncrement() // b has count 0, a has 1
	require.NoError(t, err)
	assert.Equal(t, "b", picked.ID)
}

func TestPickAndIncrementTieBreaksOnConfiguredOrder(t *testing.T) {
	t.Parallel()

	p := New(nodes("a", "b", "c"))
	picked, err := p.PickAndIncrement()
	require.NoError(t, err)
	assert.Equal(t, "a", picked.ID)
}

func TestDecrementReleasesLease(t *testing.T) {
	t.Parallel()

	p := New(nodes("a"))
	n, err := p.PickAndIncrement()
	require.NoError(t, err)
	assert.Equal(t, 1, p.Count(n))

	p.Decrement(n)
	assert.Equal(t, 0, p.Count(n))
}

func TestDecrementNeverGoesNegative(t *testing.T) {
	t.Parallel()

	p := New(nodes("a"))
	n := NodeInfo{ID: "a", SocketAddr: "a:1080"}
	p.Decrement(n)
	assert.Equal(t, 0, p.Count(n))
}

func TestPickAndIncrementEmptyPool(t *testing.T) {
	t.Parallel()

	p := New(nil)
	_, err := p.PickAndIncrement()
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestConcurrentPicksNeverExceedBalance(t *testing.T) {
	t.Parallel()

	p := New(nodes("a", "b"))
	const rounds = 200

	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := p.PickAndIncrement()
			if err == nil {
				p.Decrement(n)
			}
		}()
	}
	wg.Wait()

	a := p.Count(NodeInfo{ID: "a"})
	b := p.Count(NodeInfo{ID: "b"})
	assert.Equal(t, 0, a)
	assert.Equal(t, 0, b)
}
