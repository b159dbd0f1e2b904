package selection

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/cache"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/screening"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/strategyconfig"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/logger"
)

func makeSeries(start, dailyPct float64, n int) contracts.PriceSeries {
	series := make(contracts.PriceSeries, 0, n)
	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	price := start
	for i := 0; i < n; i++ {
		series = append(series, contracts.PricePoint{Date: date, Close: price, Volume: 1_000_000})
		price *= 1 + dailyPct/100
		date = date.AddDate(0, 0, 1)
	}
	return series
}

func newTestRanker(t *testing.T, benchmark contracts.PriceSeries) (*Ranker, *cache.Cache) {
	t.Helper()
	cfg := strategyconfig.Default()
	log := logger.NewNop()
	classifier := screening.NewTrendClassifier(cfg.Trend, log)
	calc := screening.NewSignalCalculator(cfg, classifier, screening.NewRelativeStrengthScorer(benchmark, 60), log)
	gate := screening.NewMarketGate(classifier, log)
	c := cache.New(cache.NewMemoryStore(), cache.FixedAge(24*time.Hour))
	return NewRanker(c, calc, gate, log), c
}

func instruments(symbols ...string) []contracts.Instrument {
	out := make([]contracts.Instrument, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, contracts.Instrument{Symbol: s, Kind: contracts.KindEquity})
	}
	return out
}

func TestRankSortsQualifiedByScore(t *testing.T) {
	ctx := context.Background()
	benchmark := makeSeries(400, 0.05, 300)
	ranker, c := newTestRanker(t, benchmark)

	require.NoError(t, c.Put(ctx, "STRONG:price_series", makeSeries(50, 0.5, 300)))
	require.NoError(t, c.Put(ctx, "MILD:price_series", makeSeries(50, 0.2, 300)))
	require.NoError(t, c.Put(ctx, "WEAK:price_series", makeSeries(200, -0.4, 300)))

	result, err := ranker.Rank(ctx, instruments("STRONG", "MILD", "WEAK"), benchmark)
	require.NoError(t, err)

	require.Len(t, result.Phases, 3)
	require.NotEmpty(t, result.Candidates)
	assert.Equal(t, "STRONG", result.Candidates[0].Symbol)
	for _, cand := range result.Candidates {
		assert.NotEqual(t, "WEAK", cand.Symbol, "downtrend must not qualify")
	}
}

func TestRankSkipsMissingData(t *testing.T) {
	ctx := context.Background()
	benchmark := makeSeries(400, 0.05, 300)
	ranker, c := newTestRanker(t, benchmark)

	require.NoError(t, c.Put(ctx, "OK:price_series", makeSeries(50, 0.4, 300)))
	require.NoError(t, c.Put(ctx, "SHORT:price_series", makeSeries(50, 0.4, 100)))

	result, err := ranker.Rank(ctx, instruments("OK", "SHORT", "MISSING"), benchmark)
	require.NoError(t, err)

	assert.Equal(t, "no price series", result.Skipped["MISSING"])
	assert.Equal(t, "insufficient history", result.Skipped["SHORT"])
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, "OK", result.Candidates[0].Symbol)
}

func TestRankClosedGateEmptiesCandidates(t *testing.T) {
	ctx := context.Background()
	benchmark := makeSeries(400, -0.4, 300)
	ranker, c := newTestRanker(t, benchmark)

	require.NoError(t, c.Put(ctx, "STRONG:price_series", makeSeries(50, 0.5, 300)))

	result, err := ranker.Rank(ctx, instruments("STRONG"), benchmark)
	require.NoError(t, err)

	assert.False(t, result.Gate.Open)
	assert.Empty(t, result.Candidates)
	assert.NotEmpty(t, result.Phases, "phases still reported for the record")
}
