package scan

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/logger"
)

// AdaptiveLimiter throttles provider calls with a shared token bucket
// whose rate moves with observed throttling. Every throttle response
// widens the delay by one step up to a ceiling; a run of consecutive
// throttles additionally forces a cooldown pause for all workers. A
// run of successes walks the delay back down toward the base. One
// limiter is shared by all workers so slowdown is global, not per
// goroutine.
type AdaptiveLimiter struct {
	limiter *rate.Limiter
	log     *logger.Logger

	mu           sync.Mutex
	cfg          contracts.LimiterConfig
	currentDelay time.Duration
	consecErrors int
	consecOKs    int
	sleepUntil   time.Time
	now          func() time.Time
}

// NewAdaptiveLimiter builds a limiter at the config's base delay.
func NewAdaptiveLimiter(cfg contracts.LimiterConfig, log *logger.Logger) *AdaptiveLimiter {
	return &AdaptiveLimiter{
		limiter:      rate.NewLimiter(rate.Every(cfg.BaseDelay), 1),
		log:          log,
		cfg:          cfg,
		currentDelay: cfg.BaseDelay,
		now:          time.Now,
	}
}

// Wait blocks until the next request slot or until ctx is done. During
// a forced cooldown every caller blocks until the pause expires.
func (l *AdaptiveLimiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	pause := l.sleepUntil.Sub(l.now())
	l.mu.Unlock()

	if pause > 0 {
		timer := time.NewTimer(pause)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return l.limiter.Wait(ctx)
}

// OnRateLimited records a throttle response. The delay widens by one
// Step on every report, capped at Ceiling. ErrorThreshold consecutive
// throttles force a Cooldown pause on top and reset the error run.
func (l *AdaptiveLimiter) OnRateLimited() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.consecOKs = 0
	l.consecErrors++

	if l.currentDelay < l.cfg.Ceiling {
		l.currentDelay += l.cfg.Step
		if l.currentDelay > l.cfg.Ceiling {
			l.currentDelay = l.cfg.Ceiling
		}
		l.limiter.SetLimit(rate.Every(l.currentDelay))
	}

	if l.consecErrors >= l.cfg.ErrorThreshold {
		l.consecErrors = 0
		l.sleepUntil = l.now().Add(l.cfg.Cooldown)
		l.log.WithFields(map[string]interface{}{
			"delay":    l.currentDelay,
			"cooldown": l.cfg.Cooldown,
		}).Warn("Sustained throttling, entering cooldown")
		return
	}

	l.log.WithFields(map[string]interface{}{
		"delay": l.currentDelay,
	}).Warn("Provider throttling detected, slowing down")
}

// OnSuccess records a successful call. After SuccessThreshold
// consecutive successes the delay narrows by one DecayStep toward the
// base and the run resets.
func (l *AdaptiveLimiter) OnSuccess() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.consecErrors = 0
	if l.currentDelay <= l.cfg.BaseDelay {
		return
	}

	l.consecOKs++
	if l.consecOKs < l.cfg.SuccessThreshold {
		return
	}

	l.consecOKs = 0
	l.currentDelay -= l.cfg.DecayStep
	if l.currentDelay < l.cfg.BaseDelay {
		l.currentDelay = l.cfg.BaseDelay
	}
	l.limiter.SetLimit(rate.Every(l.currentDelay))

	l.log.WithFields(map[string]interface{}{
		"delay": l.currentDelay,
	}).Info("Provider recovered, speeding up")
}

// Delay returns the current inter-request delay.
func (l *AdaptiveLimiter) Delay() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentDelay
}
