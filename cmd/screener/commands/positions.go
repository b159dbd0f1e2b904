package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
)

// positionsCmd represents the positions command
var positionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "Review held positions against the stop-policy ladder",
	Long: `Reads held positions from a JSON file and recommends a stop
policy per position from its unrealized gain and cached price data.

The file is a JSON array of positions:
  [{"symbol": "AAPL", "shares": 10, "cost_basis": 180.5}]

Example:
  go run ./cmd/screener positions --file positions.json`,
	RunE: runPositions,
}

var positionsFile string

func init() {
	rootCmd.AddCommand(positionsCmd)

	positionsCmd.Flags().StringVar(&positionsFile, "file", "positions.json", "positions JSON file")
}

func runPositions(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(positionsFile)
	if err != nil {
		return fmt.Errorf("read positions: %w", err)
	}
	var held []contracts.Position
	if err := json.Unmarshal(data, &held); err != nil {
		return fmt.Errorf("parse positions: %w", err)
	}
	if len(held) == 0 {
		return fmt.Errorf("no positions in %s", positionsFile)
	}

	rt, err := initRuntime(runtimeOptions{Preset: "default"})
	if err != nil {
		return err
	}
	defer rt.cleanup()

	reviews, skipped, err := rt.runner.ReviewPositions(context.Background(), held)
	if err != nil {
		return err
	}

	fmt.Printf("Position review: %d reviewed, %d skipped\n\n", len(reviews), len(skipped))
	for _, r := range reviews {
		fmt.Printf("  %-8s %+7.1f%%  %-12s stop %.2f  %s\n", r.Symbol, r.GainPct, r.Policy, r.StopPrice, r.Note)
	}
	for symbol, reason := range skipped {
		fmt.Printf("  %-8s skipped: %s\n", symbol, reason)
	}
	return nil
}
