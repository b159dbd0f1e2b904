package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/cache"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/marketdata"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/report"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/scan"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/strategyconfig"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/config"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/logger"
)

func makeSeries(start, dailyPct float64, n int) contracts.PriceSeries {
	series := make(contracts.PriceSeries, 0, n)
	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	price := start
	for i := 0; i < n; i++ {
		series = append(series, contracts.PricePoint{Date: date, Close: price, Volume: 2_000_000})
		price *= 1 + dailyPct/100
		date = date.AddDate(0, 0, 1)
	}
	return series
}

func ptr(v float64) *float64 { return &v }

// fakeProvider serves generated series for the symbols in its table
// and not-found for everything else.
type fakeProvider struct {
	growth map[string]float64
}

func (p *fakeProvider) FetchPriceSeries(ctx context.Context, symbol string) (contracts.PriceSeries, error) {
	rate, ok := p.growth[symbol]
	if !ok {
		return nil, marketdata.ErrNotFound
	}
	return makeSeries(50, rate, 300), nil
}

func (p *fakeProvider) FetchFundamentals(ctx context.Context, symbol string) (contracts.Fundamentals, error) {
	return contracts.Fundamentals{
		Symbol:       symbol,
		FetchedAt:    time.Now(),
		RevenueYoY:   ptr(0.35),
		EPSYoY:       ptr(0.45),
		ROIC:         ptr(0.22),
		WACC:         ptr(0.08),
		FCFMargin:    ptr(0.20),
		DebtToEBITDA: ptr(0.5),
	}, nil
}

func newTestRunner(t *testing.T, provider scan.Provider) *Runner {
	t.Helper()

	cfg := &config.Config{
		DataDir: t.TempDir(),
		Universe: config.UniverseConfig{
			Benchmark: "SPY",
		},
	}
	strategy := strategyconfig.Default()
	log := logger.NewNop()

	dataCache := cache.New(cache.NewMemoryStore(), cache.FixedAge(24*time.Hour))
	limiter := scan.NewAdaptiveLimiter(contracts.LimiterConfig{
		BaseDelay:        time.Microsecond,
		Step:             time.Microsecond,
		Ceiling:          10 * time.Microsecond,
		ErrorThreshold:   3,
		Cooldown:         time.Millisecond,
		SuccessThreshold: 10,
		DecayStep:        time.Microsecond,
	}, log)
	checkpoint, err := scan.NewCheckpoint(filepath.Join(cfg.DataDir, "checkpoints"))
	require.NoError(t, err)
	pipeline := scan.NewPipeline(provider, limiter, dataCache, checkpoint, log, scan.Options{Workers: 2, MaxAttempts: 2, Backoff: time.Microsecond})

	reports, err := report.NewWriter(filepath.Join(cfg.DataDir, "reports"), log)
	require.NoError(t, err)

	hash, err := strategyconfig.Hash(strategy)
	require.NoError(t, err)

	// No scraper: tests drive the universe through the symbol override.
	return NewRunner(cfg, strategy, hash, log, nil, pipeline, dataCache, reports, nil, nil)
}

func TestRunScanEndToEnd(t *testing.T) {
	provider := &fakeProvider{growth: map[string]float64{
		"SPY":  0.05,
		"FAST": 0.5,
		"MID":  0.1,
		"DOWN": -0.4,
	}}
	runner := newTestRunner(t, provider)

	outcome, err := runner.RunScan(context.Background(), ScanOptions{
		ScanID:  "test-scan",
		Symbols: []string{"FAST", "MID", "DOWN"},
	})
	require.NoError(t, err)

	// benchmark series + 3 price series + 3 fundamentals
	assert.Equal(t, 7, outcome.Summary.Total)
	assert.Equal(t, 7, outcome.Summary.OK)

	require.NotEmpty(t, outcome.Rank.Candidates)
	assert.Equal(t, "FAST", outcome.Rank.Candidates[0].Symbol)
	for _, c := range outcome.Rank.Candidates {
		assert.NotEqual(t, "DOWN", c.Symbol, "downtrend must not qualify")
	}

	require.NotNil(t, outcome.Portfolio)
	assert.InDelta(t, 100.0, outcome.Portfolio.TotalWeight(), 0.1)

	require.NotEmpty(t, outcome.ReportPath)
	data, err := os.ReadFile(outcome.ReportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Scan test-scan")
}

func TestRunScanMissingBenchmarkFails(t *testing.T) {
	provider := &fakeProvider{growth: map[string]float64{}}
	runner := newTestRunner(t, provider)
	runner.cfg.Universe.Benchmark = ""

	// An empty benchmark symbol never gets a cached series.
	_, err := runner.RunScan(context.Background(), ScanOptions{
		ScanID:  "no-benchmark",
		Symbols: []string{"FAST"},
	})
	require.Error(t, err)
}

func TestReviewCompoundersFromCache(t *testing.T) {
	provider := &fakeProvider{growth: map[string]float64{
		"SPY":  0.05,
		"COMP": 0.4,
	}}
	runner := newTestRunner(t, provider)

	_, err := runner.RunScan(context.Background(), ScanOptions{
		ScanID:  "seed",
		Symbols: []string{"COMP"},
	})
	require.NoError(t, err)

	results, skipped, err := runner.ReviewCompounders(context.Background(), []string{"COMP", "UNSEEN"})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "COMP", results[0].Symbol)
	assert.Equal(t, contracts.RegimeGrowthEligible, results[0].Regime)
	assert.Equal(t, "no price series", skipped["UNSEEN"])
}

func TestReviewPositions(t *testing.T) {
	provider := &fakeProvider{growth: map[string]float64{
		"SPY": 0.05,
		"WIN": 0.3,
	}}
	runner := newTestRunner(t, provider)

	_, err := runner.RunScan(context.Background(), ScanOptions{
		ScanID:  "seed",
		Symbols: []string{"WIN"},
	})
	require.NoError(t, err)

	series, _ := provider.FetchPriceSeries(context.Background(), "WIN")
	last, _ := series.Last()

	reviews, skipped, err := runner.ReviewPositions(context.Background(), []contracts.Position{
		{Symbol: "WIN", Shares: 10, CostBasis: last.Close / 1.25}, // +25%
		{Symbol: "GONE", Shares: 5, CostBasis: 100},
	})
	require.NoError(t, err)

	require.Len(t, reviews, 1)
	assert.Equal(t, "WIN", reviews[0].Symbol)
	assert.InDelta(t, 25, reviews[0].GainPct, 0.5)
	assert.Equal(t, contracts.StopPartial, reviews[0].Policy)
	assert.Equal(t, "no price series", skipped["GONE"])
}

func TestReviewETFs(t *testing.T) {
	provider := &fakeProvider{growth: map[string]float64{
		"SPY": 0.05,
		"SMH": 0.35,
	}}
	runner := newTestRunner(t, provider)

	results, err := runner.ReviewETFs(context.Background(), []contracts.ETFInfo{
		{Symbol: "SMH", Theme: "ai_cloud", ExpenseRatio: 0.0035, ThemePurity: 0.95},
	})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "SMH", results[0].Info.Symbol)
	assert.True(t, results[0].Qualified)
}
