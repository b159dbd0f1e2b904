package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/app"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/logger"
)

// DailyScanJob runs the full scan after the US close.
type DailyScanJob struct {
	runner *app.Runner
	logger *logger.Logger
}

// NewDailyScanJob creates the daily scan job.
func NewDailyScanJob(runner *app.Runner, log *logger.Logger) *DailyScanJob {
	return &DailyScanJob{runner: runner, logger: log}
}

// Name returns the job name.
func (j *DailyScanJob) Name() string {
	return "daily_scan"
}

// Schedule runs weekdays at 17:30 local, well after the 16:00 ET close
// so the provider serves final daily bars.
func (j *DailyScanJob) Schedule() string {
	return "0 30 17 * * MON-FRI"
}

// Run executes the scheduled scan.
func (j *DailyScanJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled daily scan")

	outcome, err := j.runner.RunScan(ctx, app.ScanOptions{
		ScanID: time.Now().Format("20060102"),
	})
	if err != nil {
		return fmt.Errorf("daily scan: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"total":      outcome.Summary.Total,
		"ok":         outcome.Summary.OK,
		"candidates": len(outcome.Rank.Candidates),
		"report":     outcome.ReportPath,
	}).Info("Daily scan completed")
	return nil
}
