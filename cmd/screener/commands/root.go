package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "Long-hold US equity screener",
	Long: `Long-hold US equity screener

Scans an index universe through a rate-limited fetch pipeline, grades
every symbol with trend and fundamental scoring, and constructs a
core/satellite allocation from the qualified candidates.

Usage:
  go run ./cmd/screener [command]

Examples:
  go run ./cmd/screener scan
  go run ./cmd/screener scan --aggressive --resume
  go run ./cmd/screener compounder --limit 50
  go run ./cmd/screener api
  go run ./cmd/screener scheduler start`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML (default from STRATEGY_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
