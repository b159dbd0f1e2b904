package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/cache"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/longterm"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/persistence"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/portfolio"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/positions"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/report"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/scan"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/screening"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/selection"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/strategyconfig"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/universe"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/config"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/logger"
)

// rsWindow is the relative-strength lookback, about one quarter of
// trading sessions.
const rsWindow = 63

// Runner wires the full scan flow: universe, fetch pipeline, ranking,
// portfolio construction, persistence and reports. Commands and
// scheduled jobs both drive the engine through this type and nowhere
// else.
type Runner struct {
	cfg      *config.Config
	strategy *strategyconfig.Config
	hash     string
	logger   *logger.Logger

	scraper  *universe.Scraper
	builder  *universe.Builder
	pipeline *scan.Pipeline
	cache    *cache.Cache
	reports  *report.Writer

	// nil when running without a database
	candidates  *persistence.CandidateRepository
	allocations *persistence.AllocationRepository
}

// NewRunner assembles the engine. candidates and allocations may be
// nil; results then only reach the cache and the report files.
func NewRunner(
	cfg *config.Config,
	strategy *strategyconfig.Config,
	hash string,
	log *logger.Logger,
	scraper *universe.Scraper,
	pipeline *scan.Pipeline,
	c *cache.Cache,
	reports *report.Writer,
	candidates *persistence.CandidateRepository,
	allocations *persistence.AllocationRepository,
) *Runner {
	return &Runner{
		cfg:         cfg,
		strategy:    strategy,
		hash:        hash,
		logger:      log,
		scraper:     scraper,
		builder:     universe.NewBuilder(strategy.Universe, log),
		pipeline:    pipeline,
		cache:       c,
		reports:     reports,
		candidates:  candidates,
		allocations: allocations,
	}
}

// ScanOptions tunes one scan run.
type ScanOptions struct {
	ScanID      string
	Symbols     []string // override the scraped universe
	Limit       int      // cap the universe size, 0 means no cap
	Resume      bool     // continue the checkpointed scan
	RetryFailed bool     // rerun only retryable failures of the last scan
}

// ScanOutcome bundles everything one run produced.
type ScanOutcome struct {
	Summary    *contracts.ScanSummary
	Rank       *selection.Result
	Portfolio  *contracts.Portfolio
	ReportPath string
}

// RunScan executes the whole flow. A best-effort portfolio (caps
// unsatisfiable) is still returned and reported, not treated as a
// failed scan.
func (r *Runner) RunScan(ctx context.Context, opts ScanOptions) (*ScanOutcome, error) {
	u, err := r.buildUniverse(ctx, opts)
	if err != nil {
		return nil, err
	}

	summary, err := r.fetch(ctx, opts, u)
	if err != nil {
		return nil, err
	}

	var benchmark contracts.PriceSeries
	if _, err := r.cache.GetAllowStale(ctx, benchmarkKey(r.cfg.Universe.Benchmark), &benchmark); err != nil {
		return nil, fmt.Errorf("no benchmark series for %s: %w", r.cfg.Universe.Benchmark, err)
	}

	rank, err := r.newRanker(benchmark).Rank(ctx, u.Instruments, benchmark)
	if err != nil {
		return nil, err
	}

	asOf := time.Now()
	constructor := portfolio.NewConstructor(r.strategy.Portfolio, r.logger)
	p, buildErr := constructor.Build(rank.Candidates, asOf)
	if buildErr != nil && !errors.Is(buildErr, portfolio.ErrConstraintUnsatisfiable) {
		return nil, buildErr
	}

	if err := r.persist(ctx, asOf, rank, p); err != nil {
		return nil, err
	}

	outcome := &ScanOutcome{Summary: summary, Rank: rank, Portfolio: p}
	if r.reports != nil {
		path, err := r.reports.WriteScanReport(summary, rank, p)
		if err != nil {
			return nil, err
		}
		outcome.ReportPath = path
		if p != nil && len(p.Allocations) > 0 {
			if _, err := r.reports.WriteAllocationCSV(p); err != nil {
				return nil, err
			}
		}
	}
	return outcome, nil
}

func (r *Runner) fetch(ctx context.Context, opts ScanOptions, u *universe.Universe) (*contracts.ScanSummary, error) {
	switch {
	case opts.Resume:
		return r.pipeline.Resume(ctx)
	case opts.RetryFailed:
		return r.pipeline.RetryFailed(ctx)
	default:
		scanID := opts.ScanID
		if scanID == "" {
			scanID = time.Now().Format("20060102-150405")
		}
		return r.pipeline.Run(ctx, scanID, r.workItems(u))
	}
}

// buildUniverse resolves the instrument list, either from the symbol
// override or by scraping the index constituents.
func (r *Runner) buildUniverse(ctx context.Context, opts ScanOptions) (*universe.Universe, error) {
	var instruments []contracts.Instrument
	if len(opts.Symbols) > 0 {
		for _, s := range opts.Symbols {
			instruments = append(instruments, contracts.Instrument{Symbol: s, Kind: contracts.KindEquity})
		}
	} else {
		var err error
		instruments, err = r.scraper.FetchConstituents(ctx, r.cfg.Universe.SourcePath)
		if err != nil {
			return nil, fmt.Errorf("fetch constituents: %w", err)
		}
	}

	u := r.builder.Build(instruments, func(symbol string) contracts.PriceSeries {
		var series contracts.PriceSeries
		if _, err := r.cache.GetAllowStale(ctx, symbol+":"+string(contracts.WorkPriceSeries), &series); err != nil {
			return nil
		}
		return series
	})

	if opts.Limit > 0 && len(u.Instruments) > opts.Limit {
		u.Instruments = u.Instruments[:opts.Limit]
	}
	return u, nil
}

// workItems expands the universe into fetch work: a price series per
// instrument, fundamentals for equities, and the benchmark series the
// whole run compares against.
func (r *Runner) workItems(u *universe.Universe) []contracts.WorkItem {
	items := []contracts.WorkItem{
		{Symbol: r.cfg.Universe.Benchmark, Kind: contracts.WorkPriceSeries, Priority: 1},
	}
	for _, inst := range u.Instruments {
		items = append(items, contracts.WorkItem{Symbol: inst.Symbol, Kind: contracts.WorkPriceSeries})
		if inst.Kind == contracts.KindEquity {
			items = append(items, contracts.WorkItem{Symbol: inst.Symbol, Kind: contracts.WorkFundamentals})
		}
	}
	return items
}

func (r *Runner) newRanker(benchmark contracts.PriceSeries) *selection.Ranker {
	classifier := screening.NewTrendClassifier(r.strategy.Trend, r.logger)
	rs := screening.NewRelativeStrengthScorer(benchmark, rsWindow)
	calc := screening.NewSignalCalculator(r.strategy, classifier, rs, r.logger)
	gate := screening.NewMarketGate(classifier, r.logger)
	return selection.NewRanker(r.cache, calc, gate, r.logger)
}

func (r *Runner) persist(ctx context.Context, asOf time.Time, rank *selection.Result, p *contracts.Portfolio) error {
	if r.candidates != nil {
		scanDate := asOf.UTC().Truncate(24 * time.Hour)
		if err := r.candidates.SaveRun(ctx, scanDate, r.hash, rank.Candidates); err != nil {
			return fmt.Errorf("persist candidates: %w", err)
		}
	}
	if r.allocations != nil && p != nil && len(p.Allocations) > 0 {
		if err := r.allocations.Save(ctx, p); err != nil {
			return fmt.Errorf("persist allocation: %w", err)
		}
	}
	return nil
}

func benchmarkKey(symbol string) string {
	return symbol + ":" + string(contracts.WorkPriceSeries)
}

// UniverseSymbols resolves the current investable universe.
func (r *Runner) UniverseSymbols(ctx context.Context) ([]string, error) {
	u, err := r.buildUniverse(ctx, ScanOptions{})
	if err != nil {
		return nil, err
	}
	return u.Symbols(), nil
}

// CompounderResult grades one symbol for the multi-year sleeve.
type CompounderResult struct {
	Symbol    string
	Score     contracts.CompositeScore
	Regime    contracts.Regime
	Qualified bool
}

// ReviewCompounders scores cached equities with the long-horizon
// formula plus the regime check. Runs entirely from the cache; symbols
// with no cached series are skipped with a reason.
func (r *Runner) ReviewCompounders(ctx context.Context, symbols []string) ([]CompounderResult, map[string]string, error) {
	var benchmark contracts.PriceSeries
	if _, err := r.cache.GetAllowStale(ctx, benchmarkKey(r.cfg.Universe.Benchmark), &benchmark); err != nil {
		return nil, nil, fmt.Errorf("no benchmark series for %s: %w", r.cfg.Universe.Benchmark, err)
	}

	rs := screening.NewRelativeStrengthScorer(benchmark, rsWindow)
	scorer := longterm.NewCompounderScorer(r.strategy.Compounder, rs, r.logger)
	regimes := longterm.NewRegimeClassifier(r.logger)

	var results []CompounderResult
	skipped := make(map[string]string)
	for _, symbol := range symbols {
		var series contracts.PriceSeries
		if _, err := r.cache.GetAllowStale(ctx, symbol+":"+string(contracts.WorkPriceSeries), &series); err != nil {
			skipped[symbol] = "no price series"
			continue
		}

		var f contracts.Fundamentals
		if _, err := r.cache.GetAllowStale(ctx, symbol+":"+string(contracts.WorkFundamentals), &f); err != nil {
			f = contracts.Fundamentals{Symbol: symbol}
		}

		score := scorer.Score(longterm.CompounderInput{
			Symbol:       symbol,
			Series:       series,
			Fundamentals: f,
		})
		results = append(results, CompounderResult{
			Symbol:    symbol,
			Score:     score,
			Regime:    regimes.Classify(symbol, f, series),
			Qualified: scorer.Qualified(score),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score.Total != results[j].Score.Total {
			return results[i].Score.Total > results[j].Score.Total
		}
		return results[i].Symbol < results[j].Symbol
	})
	return results, skipped, nil
}

// ETFResult grades one thematic fund.
type ETFResult struct {
	Info      contracts.ETFInfo
	Score     contracts.CompositeScore
	Qualified bool
}

// ReviewETFs fetches series for the tracked funds through the pipeline
// and scores them.
func (r *Runner) ReviewETFs(ctx context.Context, infos []contracts.ETFInfo) ([]ETFResult, error) {
	items := []contracts.WorkItem{
		{Symbol: r.cfg.Universe.Benchmark, Kind: contracts.WorkPriceSeries, Priority: 1},
	}
	for _, info := range infos {
		items = append(items, contracts.WorkItem{Symbol: info.Symbol, Kind: contracts.WorkPriceSeries})
	}
	scanID := "etf-" + time.Now().Format("20060102-150405")
	if _, err := r.pipeline.Run(ctx, scanID, items); err != nil {
		return nil, err
	}

	var benchmark contracts.PriceSeries
	if _, err := r.cache.GetAllowStale(ctx, benchmarkKey(r.cfg.Universe.Benchmark), &benchmark); err != nil {
		return nil, fmt.Errorf("no benchmark series for %s: %w", r.cfg.Universe.Benchmark, err)
	}

	rs := screening.NewRelativeStrengthScorer(benchmark, rsWindow)
	scorer := longterm.NewETFScorer(r.strategy.ETF, rs, r.logger)

	var results []ETFResult
	for _, info := range infos {
		var series contracts.PriceSeries
		if _, err := r.cache.GetAllowStale(ctx, info.Symbol+":"+string(contracts.WorkPriceSeries), &series); err != nil {
			r.logger.WithField("symbol", info.Symbol).Warn("No series for tracked fund, skipping")
			continue
		}
		score := scorer.Score(longterm.ETFInput{Info: info, Series: series})
		results = append(results, ETFResult{Info: info, Score: score, Qualified: scorer.Qualified(score)})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score.Total != results[j].Score.Total {
			return results[i].Score.Total > results[j].Score.Total
		}
		return results[i].Info.Symbol < results[j].Info.Symbol
	})
	return results, nil
}

// ReviewPositions runs the stop-policy review over held positions
// using cached price data.
func (r *Runner) ReviewPositions(ctx context.Context, held []contracts.Position) ([]contracts.PositionReview, map[string]string, error) {
	reviewer := positions.NewReviewer(r.logger)

	var reviews []contracts.PositionReview
	skipped := make(map[string]string)
	for _, pos := range held {
		var series contracts.PriceSeries
		if _, err := r.cache.GetAllowStale(ctx, pos.Symbol+":"+string(contracts.WorkPriceSeries), &series); err != nil {
			skipped[pos.Symbol] = "no price series"
			continue
		}
		last, ok := series.Last()
		if !ok {
			skipped[pos.Symbol] = "empty price series"
			continue
		}
		reviews = append(reviews, reviewer.Review(pos, last.Close, series))
	}
	return reviews, skipped, nil
}

// RebalancePlan compares the latest stored allocation against current
// weights. Requires a database.
func (r *Runner) RebalancePlan(ctx context.Context, currentPct map[string]float64) ([]contracts.RebalanceItem, error) {
	if r.allocations == nil {
		return nil, errors.New("rebalance requires a database")
	}
	target, err := r.allocations.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, errors.New("no stored allocation to rebalance against")
	}
	return portfolio.NewRebalancer(r.strategy.Portfolio, r.logger).Plan(target, currentPct), nil
}
