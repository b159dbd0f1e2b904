package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
)

// compounderCmd represents the compounder command
var compounderCmd = &cobra.Command{
	Use:   "compounder",
	Short: "Score the universe with the long-term compounder formula",
	Long: `Rescores cached scan data with the multi-year compounder formula
(growth durability, capital efficiency, trend persistence) plus the
growth/value regime check. Run a scan first so the cache is populated.

Example:
  go run ./cmd/screener compounder
  go run ./cmd/screener compounder --limit 50
  go run ./cmd/screener compounder --symbols MSFT,COST,V`,
	RunE: runCompounder,
}

// etfCmd represents the etf command
var etfCmd = &cobra.Command{
	Use:   "etf",
	Short: "Score the tracked thematic funds",
	Long: `Fetches price series for the funds listed in the tracked-ETFs
YAML and grades each with the thematic fund formula (purity, relative
strength, cost, tailwind).

Example:
  go run ./cmd/screener etf
  go run ./cmd/screener etf --file config/strategy/etfs.yaml`,
	RunE: runETF,
}

var (
	compounderLimit   int
	compounderSymbols []string
	etfFile           string
)

func init() {
	rootCmd.AddCommand(compounderCmd)
	rootCmd.AddCommand(etfCmd)

	compounderCmd.Flags().IntVar(&compounderLimit, "limit", 0, "show only the top N")
	compounderCmd.Flags().StringSliceVar(&compounderSymbols, "symbols", nil, "score these symbols instead of the index")
	etfCmd.Flags().StringVar(&etfFile, "file", "config/strategy/etfs.yaml", "tracked ETFs YAML")
}

func runCompounder(cmd *cobra.Command, args []string) error {
	rt, err := initRuntime(runtimeOptions{Preset: "default"})
	if err != nil {
		return err
	}
	defer rt.cleanup()

	ctx := context.Background()

	symbols := compounderSymbols
	if len(symbols) == 0 {
		symbols, err = rt.runner.UniverseSymbols(ctx)
		if err != nil {
			return err
		}
	}

	results, skipped, err := rt.runner.ReviewCompounders(ctx, symbols)
	if err != nil {
		return err
	}

	fmt.Printf("Compounder review: %d scored, %d skipped\n\n", len(results), len(skipped))
	for i, r := range results {
		if compounderLimit > 0 && i >= compounderLimit {
			break
		}
		mark := " "
		if r.Qualified {
			mark = "*"
		}
		fmt.Printf("%s %2d. %-8s %6.1f  %s\n", mark, i+1, r.Symbol, r.Score.Total, r.Regime)
	}
	if len(skipped) > 0 {
		fmt.Printf("\n%d symbols skipped (no cached data); run a scan first to fill the cache\n", len(skipped))
	}
	return nil
}

// trackedETFs is the schema of the tracked-ETFs YAML.
type trackedETFs struct {
	Funds []contracts.ETFInfo `yaml:"funds"`
}

func runETF(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(etfFile)
	if err != nil {
		return fmt.Errorf("read tracked ETFs: %w", err)
	}
	var tracked trackedETFs
	if err := yaml.Unmarshal(data, &tracked); err != nil {
		return fmt.Errorf("parse tracked ETFs: %w", err)
	}
	if len(tracked.Funds) == 0 {
		return fmt.Errorf("no funds listed in %s", etfFile)
	}

	rt, err := initRuntime(runtimeOptions{Preset: "default"})
	if err != nil {
		return err
	}
	defer rt.cleanup()

	results, err := rt.runner.ReviewETFs(context.Background(), tracked.Funds)
	if err != nil {
		return err
	}

	fmt.Printf("Thematic fund review: %d scored\n\n", len(results))
	for i, r := range results {
		mark := " "
		if r.Qualified {
			mark = "*"
		}
		fmt.Printf("%s %2d. %-8s %6.1f  %s\n", mark, i+1, r.Info.Symbol, r.Score.Total, r.Info.Theme)
	}
	return nil
}
