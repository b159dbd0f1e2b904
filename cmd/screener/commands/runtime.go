package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/app"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/cache"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/marketdata"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/persistence"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/report"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/scan"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/strategyconfig"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/universe"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/config"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/database"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/httputil"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/logger"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/redis"
)

// runtimeOptions tunes the wiring for one command invocation.
type runtimeOptions struct {
	// TestMode uses an in-memory cache and skips the database, so a run
	// leaves no state behind.
	TestMode bool

	Preset    string
	Workers   int           // 0 keeps the preset value
	BaseDelay time.Duration // 0 keeps the preset value
	MinPrice  float64       // 0 keeps the strategy value
	MinVolume int64         // 0 keeps the strategy value
}

// runtime is the assembled engine plus the handles commands need.
type runtime struct {
	cfg      *config.Config
	strategy *strategyconfig.Config
	hash     string
	log      *logger.Logger
	runner   *app.Runner

	candidates  *persistence.CandidateRepository
	allocations *persistence.AllocationRepository

	cleanup func()
}

// initRuntime loads config and wires the full engine. The returned
// cleanup closes database and Redis connections.
func initRuntime(opts runtimeOptions) (*runtime, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if strategyFile != "" {
		cfg.StrategyYML = strategyFile
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Load strategy parameters
	strategy, _, err := strategyconfig.Load(cfg.StrategyYML)
	if err != nil {
		return nil, fmt.Errorf("load strategy %s: %w", cfg.StrategyYML, err)
	}
	hash, err := strategyconfig.Hash(strategy)
	if err != nil {
		return nil, fmt.Errorf("hash strategy: %w", err)
	}
	if opts.MinPrice > 0 {
		strategy.Universe.MinPrice = opts.MinPrice
	}
	if opts.MinVolume > 0 {
		strategy.Universe.MinVolume = opts.MinVolume
	}

	log.WithFields(map[string]interface{}{
		"strategy":    strategy.Meta.StrategyID,
		"version":     strategy.Meta.Version,
		"config_hash": hash[:12],
	}).Info("Strategy loaded")

	// 4. Resolve the throughput preset
	preset, ok := contracts.PresetByName(opts.Preset)
	if !ok {
		return nil, fmt.Errorf("unknown preset %q", opts.Preset)
	}
	workers := preset.Workers
	if opts.Workers > 0 {
		workers = opts.Workers
	}
	baseDelay := preset.BaseDelay
	if opts.BaseDelay > 0 {
		baseDelay = opts.BaseDelay
	}

	// 5. HTTP client and provider
	httpClient := httputil.New(log, cfg.Provider.RequestTimeout)
	provider := marketdata.NewClient(httpClient, log, cfg)

	cleanup := func() {}

	// 6. Cache store: memory in test mode, Redis when enabled, files
	// otherwise
	var store cache.Store
	switch {
	case opts.TestMode:
		store = cache.NewMemoryStore()
	case cfg.Redis.Enabled:
		rdb, err := redis.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		store = cache.NewRedisStore(rdb, "screener")
		prev := cleanup
		cleanup = func() { rdb.Close(); prev() }
	default:
		fs, err := cache.NewFileStore(filepath.Join(cfg.DataDir, "cache"))
		if err != nil {
			return nil, err
		}
		store = fs
	}
	dataCache := cache.New(store, cache.SeasonAware(strategy.Scan.CacheMaxAge.Std(), strategy.Scan.EarningsCacheMaxAge.Std()))

	// 7. Fetch pipeline
	limiter := scan.NewAdaptiveLimiter(contracts.LimiterConfig{
		BaseDelay:        baseDelay,
		Step:             strategy.Scan.DelayStep.Std(),
		Ceiling:          strategy.Scan.DelayCeiling.Std(),
		ErrorThreshold:   strategy.Scan.ErrorThreshold,
		Cooldown:         strategy.Scan.Cooldown.Std(),
		SuccessThreshold: strategy.Scan.SuccessThreshold,
		DecayStep:        strategy.Scan.DecayStep.Std(),
	}, log)
	checkpoint, err := scan.NewCheckpoint(filepath.Join(cfg.DataDir, "checkpoints"))
	if err != nil {
		return nil, err
	}
	pipeline := scan.NewPipeline(provider, limiter, dataCache, checkpoint, log, scan.Options{
		Workers:     workers,
		MaxAttempts: strategy.Scan.MaxAttempts,
		Backoff:     strategy.Scan.RetryBackoff.Std(),
	})

	// 8. Universe scraper and report writer
	scraper := universe.NewScraper(httpClient, log, cfg.Universe.SourceBaseURL)
	reports, err := report.NewWriter(filepath.Join(cfg.DataDir, "reports"), log)
	if err != nil {
		return nil, err
	}

	// 9. Database is optional; without it results stay in cache and
	// report files
	var candidateRepo *persistence.CandidateRepository
	var allocationRepo *persistence.AllocationRepository
	if cfg.Database.URL != "" && !opts.TestMode {
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		candidateRepo = persistence.NewCandidateRepository(db.Pool)
		allocationRepo = persistence.NewAllocationRepository(db.Pool)
		prev := cleanup
		cleanup = func() { db.Close(); prev() }
		log.Info("Connected to database")
	} else {
		log.Info("Running without database, results go to cache and reports only")
	}

	runner := app.NewRunner(cfg, strategy, hash, log, scraper, pipeline, dataCache, reports, candidateRepo, allocationRepo)

	return &runtime{
		cfg:         cfg,
		strategy:    strategy,
		hash:        hash,
		log:         log,
		runner:      runner,
		candidates:  candidateRepo,
		allocations: allocationRepo,
		cleanup:     cleanup,
	}, nil
}
