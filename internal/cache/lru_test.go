package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_GetPut(t *testing.T) {
	c := NewLRU[string, int](2)

	assert.False(t, c.Put("a", 1))
	assert.False(t, c.Put("b", 2))

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a") // b is now least recently used

	assert.True(t, c.Put("c", 3))

	_, ok := c.Get("b")
	assert.False(t, ok, "b should have been evicted")
	assert.Equal(t, []string{"c", "a"}, c.Keys())
	assert.Equal(t, 2, c.Len())
}

func TestLRU_UpdateExisting(t *testing.T) {
	c := NewLRU[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)

	assert.False(t, c.Put("a", 10))

	v, _ := c.Get("a")
	assert.Equal(t, 10, v)
	assert.Equal(t, 2, c.Len())
}

func TestLRU_Remove(t *testing.T) {
	c := NewLRU[string, int](3)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	assert.True(t, c.Remove("b"))
	assert.False(t, c.Remove("b"))
	assert.Equal(t, []string{"c", "a"}, c.Keys())

	assert.True(t, c.Remove("a"))
	assert.True(t, c.Remove("c"))
	assert.Empty(t, c.Keys())
	assert.Equal(t, 0, c.Len())

	c.Put("d", 4)
	assert.Equal(t, []string{"d"}, c.Keys())
}

func TestLRU_MinimumCapacity(t *testing.T) {
	c := NewLRU[string, int](0)
	c.Put("a", 1)
	c.Put("b", 2)
	assert.Equal(t, []string{"b"}, c.Keys())
}

func TestLRU_ConcurrentAccess(t *testing.T) {
	c := NewLRU[string, int](50)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				key := fmt.Sprintf("k%d", (g*200+i)%80)
				c.Put(key, i)
				c.Get(key)
			}
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 50)
}
