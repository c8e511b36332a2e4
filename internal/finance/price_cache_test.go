package finance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls int
	err   error
	inner PriceSource
}

func (c *countingSource) FetchAdjustedClose(ctx context.Context, symbols []string, w DateWindow) (*PriceTable, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.inner.FetchAdjustedClose(ctx, symbols, w)
}

func staticFixture() *StaticSource {
	return NewStaticSource(days(3), map[string][]float64{
		"A": {1, 2, 3},
		"B": {4, 5, 6},
	})
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, CacheKey([]string{"B", " A", "A"}, oneYear), CacheKey([]string{"A", "B"}, oneYear))
	assert.NotEqual(t, CacheKey([]string{"spy"}, oneYear), CacheKey([]string{"SPY"}, oneYear))
	assert.Equal(t, "prices|2023-01-01|2024-01-01|A,B", CacheKey([]string{"B", "A"}, oneYear))

	other := DateWindow{Start: oneYear.Start.AddDate(0, 0, 1), End: oneYear.End}
	assert.NotEqual(t, CacheKey([]string{"A"}, oneYear), CacheKey([]string{"A"}, other))
	assert.NotEqual(t, CacheKey([]string{"A"}, oneYear), CacheKey([]string{"A", "B"}, oneYear))
}

func TestCachedSourceServesRepeats(t *testing.T) {
	src := &countingSource{inner: staticFixture()}
	cached := NewCachedSource(src, NewMemoryPriceStore(), time.Minute)
	ctx := context.Background()

	first, err := cached.FetchAdjustedClose(ctx, []string{"A", "B"}, oneYear)
	require.NoError(t, err)
	second, err := cached.FetchAdjustedClose(ctx, []string{"A", "B"}, oneYear)
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, first.Close, second.Close)

	// a hit is a copy, so callers cannot corrupt the store
	second.Close["A"][0] = 999
	third, err := cached.FetchAdjustedClose(ctx, []string{"A", "B"}, oneYear)
	require.NoError(t, err)
	assert.Equal(t, 1.0, third.Close["A"][0])

	_, err = cached.FetchAdjustedClose(ctx, []string{"A"}, oneYear)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestCachedSourceKeepsRequestedCase(t *testing.T) {
	src := &countingSource{inner: NewStaticSource(days(3), map[string][]float64{
		"SPY": {1, 2, 3},
		"spy": {1, 2, 3},
	})}
	cached := NewCachedSource(src, NewMemoryPriceStore(), time.Minute)
	ctx := context.Background()

	_, err := cached.FetchAdjustedClose(ctx, []string{"SPY"}, oneYear)
	require.NoError(t, err)
	lower, err := cached.FetchAdjustedClose(ctx, []string{"spy"}, oneYear)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)

	m, err := Simulate(alloc("spy", 100), lower, 10000)
	require.NoError(t, err)
	assert.InDelta(t, 30000, m.FinalValue, 1e-9)
}

func TestCachedSourceDoesNotStoreErrors(t *testing.T) {
	src := &countingSource{err: &DataUnavailableError{Symbol: "A", Err: errors.New("down")}}
	cached := NewCachedSource(src, NewMemoryPriceStore(), time.Minute)

	for i := 0; i < 2; i++ {
		_, err := cached.FetchAdjustedClose(context.Background(), []string{"A"}, oneYear)
		assert.ErrorIs(t, err, ErrDataUnavailable)
	}
	assert.Equal(t, 2, src.calls)
}

func TestMemoryPriceStoreExpires(t *testing.T) {
	store := NewMemoryPriceStore()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	pt, err := staticFixture().FetchAdjustedClose(ctx, []string{"A"}, oneYear)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "k", pt, time.Minute))

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
