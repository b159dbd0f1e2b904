package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/app"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/report"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a full scan of the universe",
	Long: `Runs the full scan flow: scrape the index constituents, fetch
price series and fundamentals through the rate-limited pipeline, rank
every symbol, and construct the target allocation.

An interrupted scan saves a checkpoint; rerun with --resume to finish
it without refetching completed symbols.

Example:
  go run ./cmd/screener scan
  go run ./cmd/screener scan --conservative
  go run ./cmd/screener scan --workers 5 --delay 300ms
  go run ./cmd/screener scan --resume
  go run ./cmd/screener scan --retry-failed
  go run ./cmd/screener scan --test-mode --symbols AAPL,MSFT,NVDA`,
	RunE: runScan,
}

var (
	scanWorkers      int
	scanDelay        time.Duration
	scanConservative bool
	scanAggressive   bool
	scanResume       bool
	scanRetryFailed  bool
	scanTestMode     bool
	scanSymbols      []string
	scanLimit        int
	scanMinPrice     float64
	scanMinVolume    int64
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0, "worker count (overrides preset)")
	scanCmd.Flags().DurationVar(&scanDelay, "delay", 0, "base request delay (overrides preset)")
	scanCmd.Flags().BoolVar(&scanConservative, "conservative", false, "2 workers, 1s delay")
	scanCmd.Flags().BoolVar(&scanAggressive, "aggressive", false, "5 workers, 300ms delay")
	scanCmd.Flags().BoolVar(&scanResume, "resume", false, "continue the checkpointed scan")
	scanCmd.Flags().BoolVar(&scanRetryFailed, "retry-failed", false, "rerun only the retryable failures of the last scan")
	scanCmd.Flags().BoolVar(&scanTestMode, "test-mode", false, "in-memory cache, no database")
	scanCmd.Flags().StringSliceVar(&scanSymbols, "symbols", nil, "scan these symbols instead of the index")
	scanCmd.Flags().IntVar(&scanLimit, "limit", 0, "cap the universe size")
	scanCmd.Flags().Float64Var(&scanMinPrice, "min-price", 0, "minimum share price (overrides strategy)")
	scanCmd.Flags().Int64Var(&scanMinVolume, "min-volume", 0, "minimum average volume (overrides strategy)")
}

func scanPresetName() (string, error) {
	if scanConservative && scanAggressive {
		return "", fmt.Errorf("--conservative and --aggressive are mutually exclusive")
	}
	switch {
	case scanConservative:
		return "conservative", nil
	case scanAggressive:
		return "aggressive", nil
	default:
		return "default", nil
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	preset, err := scanPresetName()
	if err != nil {
		return err
	}

	rt, err := initRuntime(runtimeOptions{
		TestMode:  scanTestMode,
		Preset:    preset,
		Workers:   scanWorkers,
		BaseDelay: scanDelay,
		MinPrice:  scanMinPrice,
		MinVolume: scanMinVolume,
	})
	if err != nil {
		return err
	}
	defer rt.cleanup()

	// Ctrl+C cancels the context; the pipeline checkpoints on the way out.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcome, err := rt.runner.RunScan(ctx, app.ScanOptions{
		Symbols:     scanSymbols,
		Limit:       scanLimit,
		Resume:      scanResume,
		RetryFailed: scanRetryFailed,
	})
	if err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nScan interrupted, checkpoint saved. Rerun with --resume to continue.")
			return nil
		}
		return err
	}

	fmt.Println(report.ScanReport(outcome.Summary, outcome.Rank, outcome.Portfolio))
	if outcome.ReportPath != "" {
		fmt.Printf("Report written to %s\n", outcome.ReportPath)
	}
	return nil
}
