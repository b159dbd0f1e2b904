package scan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/cache"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/marketdata"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/logger"
)

// Provider fetches market data for one symbol. Implemented by the
// marketdata client; tests substitute fakes.
type Provider interface {
	FetchPriceSeries(ctx context.Context, symbol string) (contracts.PriceSeries, error)
	FetchFundamentals(ctx context.Context, symbol string) (contracts.Fundamentals, error)
}

// Options tunes one pipeline run. Backoff is the sleep before the
// second attempt of an item; it doubles on each further attempt.
type Options struct {
	Workers     int
	MaxAttempts int
	Backoff     time.Duration
}

// Pipeline runs the fetch stage: a fixed worker pool pulling work items
// from a channel, throttled by one shared adaptive limiter, writing
// results through the cache and terminal outcomes into the checkpoint.
type Pipeline struct {
	provider   Provider
	limiter    *AdaptiveLimiter
	cache      *cache.Cache
	checkpoint *Checkpoint
	log        *logger.Logger
	opts       Options

	mu       sync.Mutex
	progress *Progress
}

// NewPipeline wires the fetch stage together.
func NewPipeline(provider Provider, limiter *AdaptiveLimiter, c *cache.Cache, cp *Checkpoint, log *logger.Logger, opts Options) *Pipeline {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	return &Pipeline{
		provider:   provider,
		limiter:    limiter,
		cache:      c,
		checkpoint: cp,
		log:        log,
		opts:       opts,
	}
}

// Run executes a fresh scan over items. Returns the summary; per-item
// data lands in the cache for the scoring stage.
func (p *Pipeline) Run(ctx context.Context, scanID string, items []contracts.WorkItem) (*contracts.ScanSummary, error) {
	return p.run(ctx, NewProgress(scanID, items))
}

// Resume continues the checkpointed scan, skipping every item with a
// recorded terminal outcome. ErrNoCheckpoint when there is nothing to
// resume.
func (p *Pipeline) Resume(ctx context.Context) (*contracts.ScanSummary, error) {
	progress, err := p.checkpoint.Load()
	if err != nil {
		return nil, err
	}
	p.log.WithFields(map[string]interface{}{
		"scan_id":   progress.ScanID,
		"completed": len(progress.Completed),
		"remaining": len(progress.Remaining()),
	}).Info("Resuming scan from checkpoint")
	return p.run(ctx, progress)
}

// RetryFailed reruns only the items whose checkpointed outcome is
// retryable (rate limited or transient). ErrNoCheckpoint when no scan
// has run.
func (p *Pipeline) RetryFailed(ctx context.Context) (*contracts.ScanSummary, error) {
	progress, err := p.checkpoint.Load()
	if err != nil {
		return nil, err
	}

	// Pending always holds the full work list, so dropping a retryable
	// outcome puts its item back in Remaining.
	retried := 0
	for key, out := range progress.Completed {
		if out.Status.Retryable() {
			delete(progress.Completed, key)
			retried++
		}
	}

	p.log.WithFields(map[string]interface{}{
		"scan_id": progress.ScanID,
		"retried": retried,
	}).Info("Retrying failed items")
	return p.run(ctx, progress)
}

func (p *Pipeline) run(ctx context.Context, progress *Progress) (*contracts.ScanSummary, error) {
	p.mu.Lock()
	p.progress = progress
	p.mu.Unlock()

	remaining := progress.Remaining()
	summary := &contracts.ScanSummary{
		ScanID:    progress.ScanID,
		StartedAt: progress.StartedAt,
	}
	// Fold previously completed outcomes into the summary so a resumed
	// scan reports the whole scan, not just the tail.
	for _, out := range progress.Completed {
		summary.Add(out)
	}

	p.log.WithFields(map[string]interface{}{
		"scan_id": progress.ScanID,
		"items":   len(remaining),
		"workers": p.opts.Workers,
	}).Info("Scan started")

	work := make(chan contracts.WorkItem)
	outcomes := make(chan contracts.Outcome)

	var wg sync.WaitGroup
	for i := 0; i < p.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range work {
				out, err := p.fetchOne(ctx, item)
				if err != nil {
					// Cancelled mid-item: nothing is recorded, so a
					// resume fetches it again.
					continue
				}
				outcomes <- out
			}
		}()
	}

	go func() {
		defer close(work)
		for _, item := range remaining {
			select {
			case work <- item:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	itemByKey := make(map[string]contracts.WorkItem, len(remaining))
	for _, item := range remaining {
		itemByKey[item.Key()] = item
	}

	start := time.Now()
	for out := range outcomes {
		item := itemByKey[out.Symbol+":"+string(out.Kind)]
		p.recordOutcome(item, out)
		summary.Add(out)
	}
	summary.Duration = time.Since(start)

	if err := ctx.Err(); err != nil {
		// Interrupted: the checkpoint holds everything finished so far.
		p.log.WithField("scan_id", progress.ScanID).Warn("Scan interrupted, checkpoint saved")
		return summary, err
	}

	if progress.Done() {
		if err := p.checkpoint.Archive(progress.ScanID); err != nil {
			p.log.WithError(err).Warn("Failed to archive checkpoint")
		}
	}

	p.log.WithFields(map[string]interface{}{
		"scan_id":  progress.ScanID,
		"total":    summary.Total,
		"ok":       summary.OK,
		"cached":   summary.FromCache,
		"failed":   summary.Total - summary.OK,
		"duration": summary.Duration,
	}).Info("Scan finished")
	return summary, nil
}

// fetchOne drives a single work item to a terminal outcome: cache
// check, then up to MaxAttempts provider calls with limiter feedback
// and exponential backoff between attempts. A non-nil error means the
// context ended mid-item; the item stays unrecorded.
func (p *Pipeline) fetchOne(ctx context.Context, item contracts.WorkItem) (contracts.Outcome, error) {
	start := time.Now()

	if p.cache.IsFresh(ctx, item.Key()) {
		return contracts.Outcome{
			Symbol:    item.Symbol,
			Kind:      item.Kind,
			Status:    contracts.FetchOK,
			FromCache: true,
			Elapsed:   time.Since(start),
		}, nil
	}

	var lastErr error
	attempts := 0
	for attempts < p.opts.MaxAttempts {
		if attempts > 0 {
			if err := p.backoff(ctx, attempts); err != nil {
				return contracts.Outcome{}, err
			}
		}
		if err := p.limiter.Wait(ctx); err != nil {
			return contracts.Outcome{}, err
		}

		attempts++
		err := p.fetchAndStore(ctx, item)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return contracts.Outcome{}, ctxErr
		}
		status := marketdata.Classify(err)

		switch status {
		case contracts.FetchOK:
			p.limiter.OnSuccess()
			return contracts.Outcome{
				Symbol: item.Symbol, Kind: item.Kind,
				Status: contracts.FetchOK,
				Attempts: attempts, Elapsed: time.Since(start),
			}, nil
		case contracts.FetchRateLimited:
			p.limiter.OnRateLimited()
		default:
			p.limiter.OnSuccess() // not a throttle; the provider answered
		}

		lastErr = err
		if !status.Retryable() {
			return contracts.Outcome{
				Symbol: item.Symbol, Kind: item.Kind,
				Status: status,
				Attempts: attempts, Elapsed: time.Since(start),
				Error: err.Error(),
			}, nil
		}
	}

	return contracts.Outcome{
		Symbol: item.Symbol, Kind: item.Kind,
		Status: marketdata.Classify(lastErr),
		Attempts: attempts, Elapsed: time.Since(start),
		Error: lastErr.Error(),
	}, nil
}

// backoff sleeps Backoff doubled per prior attempt, or returns early
// when ctx ends.
func (p *Pipeline) backoff(ctx context.Context, prior int) error {
	timer := time.NewTimer(p.opts.Backoff << (prior - 1))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// fetchAndStore performs the provider call for the item's kind and
// caches the result.
func (p *Pipeline) fetchAndStore(ctx context.Context, item contracts.WorkItem) error {
	switch item.Kind {
	case contracts.WorkPriceSeries:
		series, err := p.provider.FetchPriceSeries(ctx, item.Symbol)
		if err != nil {
			return err
		}
		return p.cache.Put(ctx, item.Key(), series)
	case contracts.WorkFundamentals:
		f, err := p.provider.FetchFundamentals(ctx, item.Symbol)
		if err != nil {
			return err
		}
		return p.cache.Put(ctx, item.Key(), f)
	default:
		return fmt.Errorf("%w: unknown work kind %q", marketdata.ErrPermanent, item.Kind)
	}
}

// recordOutcome persists a terminal outcome. The checkpoint is saved
// after every outcome so an interrupt loses at most in-flight items.
func (p *Pipeline) recordOutcome(item contracts.WorkItem, out contracts.Outcome) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.progress.Record(item, out)
	if err := p.checkpoint.Save(p.progress); err != nil {
		p.log.WithError(err).Error("Failed to save checkpoint")
	}
}
