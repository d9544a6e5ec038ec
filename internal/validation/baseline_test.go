package validation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/stratvalid/internal/config"
	"github.com/sawpanic/stratvalid/internal/universe"
	"github.com/sawpanic/stratvalid/internal/validation/baselinecache"
)

func testUniverse() *universe.Universe {
	return &universe.Universe{
		Name:        "test",
		IndexSymbol: "IDXUSD",
		Constituents: []universe.Constituent{
			{Symbol: "AAAUSD", MarketCapRank: 1},
			{Symbol: "BBBUSD", MarketCapRank: 2},
			{Symbol: "CCCUSD", MarketCapRank: 3},
		},
	}
}

func testComparator() (*BaselineComparator, *baselinecache.MemoryStore) {
	store := baselinecache.NewMemoryStore()
	cfg := config.BaselineConfig{MinImprovement: 0.5, TopN: 3}
	source := universe.NewSyntheticSource(11, 0.05, 0.16)
	return NewBaselineComparator(cfg, testCalibration(), testUniverse(), source, store), store
}

func TestBaselinesComputeAllKinds(t *testing.T) {
	b, store := testComparator()
	from := time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC)

	baselines, err := b.Baselines(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, baselines, 3)

	kinds := map[string]bool{}
	for _, bl := range baselines {
		kinds[bl.Kind] = true
		assert.Positive(t, bl.Metrics.NPeriods)
	}
	assert.True(t, kinds[BaselineBuyAndHold])
	assert.True(t, kinds[BaselineEqualWeight])
	assert.True(t, kinds[BaselineRiskParity])
	assert.Equal(t, 3, store.Len())
}

func TestBaselineCacheIdempotent(t *testing.T) {
	b, _ := testComparator()
	ctx := context.Background()
	from := time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC)

	first, err := b.Baselines(ctx, from, to)
	require.NoError(t, err)
	assert.EqualValues(t, 3, b.CacheMisses())
	assert.EqualValues(t, 0, b.CacheHits())

	second, err := b.Baselines(ctx, from, to)
	require.NoError(t, err)
	assert.EqualValues(t, 3, b.CacheMisses(), "second pass must not recompute")
	assert.EqualValues(t, 3, b.CacheHits())
	assert.Equal(t, first, second)
}

func TestBaselineCacheKeyedByPeriod(t *testing.T) {
	b, store := testComparator()
	ctx := context.Background()
	from := time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)

	_, err := b.Baselines(ctx, from, from.AddDate(1, 0, 0))
	require.NoError(t, err)
	_, err = b.Baselines(ctx, from, from.AddDate(0, 6, 0))
	require.NoError(t, err)

	// Different periods are distinct computations, never reused
	assert.Equal(t, 6, store.Len())
	assert.EqualValues(t, 6, b.CacheMisses())
}

func TestBaselineValidateVerdict(t *testing.T) {
	b, _ := testComparator()
	ctx := context.Background()

	// A Sharpe-5 candidate comfortably beats any zero-ish-drift baseline
	hero, err := b.Validate(ctx, "hero", sharpeSeries(t, 5.0, 504))
	require.NoError(t, err)
	assert.True(t, hero.Passed)
	assert.Equal(t, ValidatorBaseline, hero.Validator)
	assert.Contains(t, hero.Diagnostic, BaselineBuyAndHold)

	dud, err := b.Validate(ctx, "dud", sharpeSeries(t, -5.0, 504))
	require.NoError(t, err)
	assert.False(t, dud.Passed)
}
