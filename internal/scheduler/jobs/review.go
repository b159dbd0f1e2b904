package jobs

import (
	"context"
	"fmt"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/app"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/logger"
)

// CompounderReviewJob rescores the long-term sleeve once per quarter,
// after most constituents have reported.
type CompounderReviewJob struct {
	runner *app.Runner
	logger *logger.Logger
}

// NewCompounderReviewJob creates the quarterly review job.
func NewCompounderReviewJob(runner *app.Runner, log *logger.Logger) *CompounderReviewJob {
	return &CompounderReviewJob{runner: runner, logger: log}
}

// Name returns the job name.
func (j *CompounderReviewJob) Name() string {
	return "compounder_review"
}

// Schedule runs at 07:00 on the first of Feb, May, Aug and Nov, once
// the bulk of quarterly reports is in.
func (j *CompounderReviewJob) Schedule() string {
	return "0 0 7 1 2,5,8,11 *"
}

// Run executes the review over the current universe.
func (j *CompounderReviewJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled compounder review")

	symbols, err := j.runner.UniverseSymbols(ctx)
	if err != nil {
		return fmt.Errorf("resolve universe: %w", err)
	}

	results, skipped, err := j.runner.ReviewCompounders(ctx, symbols)
	if err != nil {
		return fmt.Errorf("compounder review: %w", err)
	}

	qualified := 0
	for _, r := range results {
		if r.Qualified {
			qualified++
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"scored":    len(results),
		"qualified": qualified,
		"skipped":   len(skipped),
	}).Info("Compounder review completed")
	return nil
}
