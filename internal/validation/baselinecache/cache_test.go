package baselinecache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/stratvalid/internal/returns"
)

func TestKeyContentHash(t *testing.T) {
	from := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	base := Key("fp-1", from, to, "buy_and_hold")
	assert.Contains(t, base, "baseline:")

	// Every input participates in the key
	assert.Equal(t, base, Key("fp-1", from, to, "buy_and_hold"))
	assert.NotEqual(t, base, Key("fp-2", from, to, "buy_and_hold"))
	assert.NotEqual(t, base, Key("fp-1", from.AddDate(0, 1, 0), to, "buy_and_hold"))
	assert.NotEqual(t, base, Key("fp-1", from, to.AddDate(0, 1, 0), "buy_and_hold"))
	assert.NotEqual(t, base, Key("fp-1", from, to, "equal_weight"))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, found, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	entry := Entry{Metrics: returns.Metrics{SharpeRatio: 1.1, NPeriods: 252}, CachedAt: time.Now().UTC()}
	require.NoError(t, store.Set(ctx, "k1", entry))

	got, found, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, entry.Metrics, got.Metrics)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			_ = store.Set(ctx, "shared", Entry{Metrics: returns.Metrics{NPeriods: i}})
		}
	}()
	for i := 0; i < 500; i++ {
		_, _, _ = store.Get(ctx, "shared")
	}
	<-done
}
