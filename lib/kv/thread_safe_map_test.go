package kv

import (
	"strconv"
	"sync"
	"testing"

	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/require"
)

func TestThreadSafeMapBasic(t *testing.T) {
	m := NewThreadSafeMap[string, int]()

	m.AddOrUpdate("a", 1)
	m.AddOrUpdate("b", 2)
	m.AddOrUpdate("a", 3)

	val, exists := m.Get("a")
	require.True(t, exists)
	require.Equal(t, 3, val)

	keys := m.ListKeys()
	require.ElementsMatch(t, []string{"a", "b"}, keys)

	vals := m.ListValues("a")
	require.Equal(t, []int{3}, vals)

	m.Delete("a")
	_, exists = m.Get("a")
	require.False(t, exists)
}

func TestThreadSafeMapListKeysFiltered(t *testing.T) {
	m := NewThreadSafeMap[string, int]()
	for i := 0; i < 20; i++ {
		m.AddOrUpdate("key-"+strconv.Itoa(i), i)
	}

	even := m.ListKeys(func(key string) bool {
		n, _ := strconv.Atoi(key[len("key-"):])
		return n%2 == 0
	})
	require.Len(t, even, 10)
}

func TestThreadSafeMapReplaceAndPurge(t *testing.T) {
	m := NewThreadSafeMap[string, int]()
	m.AddOrUpdate("old", 1)

	m.Replace(map[string]int{"x": 10, "y": 20})
	_, exists := m.Get("old")
	require.False(t, exists)
	require.ElementsMatch(t, []string{"x", "y"}, m.ListKeys())

	require.NoError(t, m.Purge())
	require.Empty(t, m.ListKeys())
}

func TestThreadSafeMapConcurrentReadWrite(t *testing.T) {
	m := NewThreadSafeMap[uint64, uint64]()

	pool, err := ants.NewPool(16)
	require.NoError(t, err)
	defer pool.Release()

	total := uint64(1_000)
	var wg sync.WaitGroup
	wg.Add(int(total))
	for i := uint64(0); i < total; i++ {
		i := i
		require.NoError(t, pool.Submit(func() {
			defer wg.Done()
			m.AddOrUpdate(i, i*2)
			if val, exists := m.Get(i); exists {
				require.Equal(t, i*2, val)
			}
			_ = m.ListValues(i)
		}))
	}
	wg.Wait()

	require.Len(t, m.ListKeys(), int(total))
	for i := uint64(0); i < total; i++ {
		val, exists := m.Get(i)
		require.True(t, exists)
		require.Equal(t, i*2, val)
	}
}
