package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/brmonteiro/saipos-bridge/internal/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUCache_DedupeRoundTrip(t *testing.T) {
	c := NewLRUCache(10, time.Minute)

	sub := entities.Submission{
		OrderID:        "shopify_1001",
		IdempotencyKey: "key-1",
		Status:         entities.StatusDelivered,
		POSResponse:    []byte(`{"status":"accepted"}`),
		UpdatedAt:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	data, err := sub.Marshal()
	require.NoError(t, err)

	c.Set(sub.OrderID, data)

	got, ok := c.Get("shopify_1001")
	require.True(t, ok)

	var cached entities.Submission
	require.NoError(t, cached.Unmarshal(got))
	assert.Equal(t, sub, cached)

	_, ok = c.Get("shopify_9999")
	assert.False(t, ok)
}

func TestLRUCache_TTL(t *testing.T) {
	t.Run("entry expires", func(t *testing.T) {
		c := NewLRUCache(2, 30*time.Millisecond)
		c.Set("shopify_1", []byte("a"))

		time.Sleep(40 * time.Millisecond)

		_, ok := c.Get("shopify_1")
		assert.False(t, ok)
		assert.Equal(t, 0, c.Size(), "expired entry stays gone after the read")
	})

	t.Run("overwrite resets the clock", func(t *testing.T) {
		c := NewLRUCache(2, 50*time.Millisecond)
		c.Set("shopify_1", []byte("a"))

		time.Sleep(30 * time.Millisecond)
		c.Set("shopify_1", []byte("b"))
		time.Sleep(30 * time.Millisecond)

		v, ok := c.Get("shopify_1")
		require.True(t, ok)
		assert.Equal(t, []byte("b"), v)
	})
}

func TestLRUCache_Eviction(t *testing.T) {
	c := NewLRUCache(2, time.Minute)

	c.Set("shopify_1", []byte("a"))
	c.Set("shopify_2", []byte("b"))

	// reading shopify_1 makes shopify_2 the eviction candidate
	_, ok := c.Get("shopify_1")
	require.True(t, ok)

	c.Set("shopify_3", []byte("c"))

	_, ok = c.Get("shopify_2")
	assert.False(t, ok, "least recently used entry should be evicted")
	_, ok = c.Get("shopify_1")
	assert.True(t, ok)
	_, ok = c.Get("shopify_3")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Size())
}

func TestLRUCache_Start(t *testing.T) {
	c := NewLRUCache(8, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, c.Start(ctx))

	for i := 0; i < 4; i++ {
		c.Set(fmt.Sprintf("shopify_%d", i), []byte("x"))
	}
	time.Sleep(20 * time.Millisecond)

	// the ticker has not fired yet; cleanup sweeps what it would
	c.cleanup()
	assert.Equal(t, 0, c.Size())
}
