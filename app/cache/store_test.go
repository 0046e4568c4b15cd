package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"institute-admin/app/invalidation"
)

func TestStoreInvalidateAndRefetch(t *testing.T) {
	reg := NewLoadingRegistry()
	store := NewStore(reg)

	fetches := 0
	store.Register("school:payments", func(ctx context.Context) (interface{}, error) {
		fetches++
		return fetches, nil
	})

	require.NoError(t, store.Refetch(context.Background(), "school:payments"))
	value, fresh := store.Get("school:payments")
	assert.Equal(t, 1, value)
	assert.True(t, fresh)

	// Invalidation keeps the stale value readable until a refetch lands.
	store.Invalidate("school:payments")
	value, fresh = store.Get("school:payments")
	assert.Equal(t, 1, value)
	assert.False(t, fresh)
	assert.Equal(t, []invalidation.RegionKey{"school:payments"}, store.StaleKeys())

	require.NoError(t, store.Refetch(context.Background(), "school:payments"))
	value, fresh = store.Get("school:payments")
	assert.Equal(t, 2, value)
	assert.True(t, fresh)
	assert.Empty(t, store.StaleKeys())
}

func TestStoreRefetchFailureLeavesRegionStale(t *testing.T) {
	store := NewStore(NewLoadingRegistry())

	boom := errors.New("source of truth unavailable")
	store.Register("school:dashboard", func(ctx context.Context) (interface{}, error) {
		return nil, boom
	})

	store.Invalidate("school:dashboard")
	err := store.Refetch(context.Background(), "school:dashboard")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, store.StaleKeys(), invalidation.RegionKey("school:dashboard"))
}

func TestStoreRefetchWithoutFetcherDropsValue(t *testing.T) {
	store := NewStore(NewLoadingRegistry())

	store.Invalidate("school:student-detail:42")
	require.NoError(t, store.Refetch(context.Background(), "school:student-detail:42"))

	_, fresh := store.Get("school:student-detail:42")
	assert.False(t, fresh)
	assert.Empty(t, store.StaleKeys())
}

func TestStoreRefetchTracksLoading(t *testing.T) {
	reg := NewLoadingRegistry()
	store := NewStore(reg)

	var observed int
	store.Register("school:payments", func(ctx context.Context) (interface{}, error) {
		observed = reg.Count()
		return "ok", nil
	})

	require.NoError(t, store.Refetch(context.Background(), "school:payments"))
	assert.Equal(t, 1, observed, "the refetch must hold a loading ticket")
	assert.Equal(t, 0, reg.Count(), "ticket released after the fetch")
}
