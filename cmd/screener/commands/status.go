package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the loaded configuration and strategy",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	rt, err := initRuntime(runtimeOptions{Preset: "default"})
	if err != nil {
		return err
	}
	defer rt.cleanup()

	fmt.Println("Screener status")
	fmt.Printf("  Environment:  %s\n", rt.cfg.Env)
	fmt.Printf("  Strategy:     %s %s\n", rt.strategy.Meta.StrategyID, rt.strategy.Meta.Version)
	fmt.Printf("  Config hash:  %s\n", rt.hash)
	fmt.Printf("  Data dir:     %s\n", rt.cfg.DataDir)
	fmt.Printf("  Benchmark:    %s\n", rt.cfg.Universe.Benchmark)
	fmt.Printf("  Universe:     %s%s\n", rt.cfg.Universe.SourceBaseURL, rt.cfg.Universe.SourcePath)

	if rt.candidates != nil {
		fmt.Println("  Database:     connected")
	} else {
		fmt.Println("  Database:     not configured")
	}
	if rt.cfg.Redis.Enabled {
		fmt.Println("  Cache:        redis")
	} else {
		fmt.Println("  Cache:        file")
	}

	fmt.Printf("\n  Scan: %d workers, %s base delay, %d attempts\n",
		rt.strategy.Scan.Workers, rt.strategy.Scan.BaseDelay, rt.strategy.Scan.MaxAttempts)
	fmt.Printf("  Filters: price >= %.2f, volume >= %d\n",
		rt.strategy.Universe.MinPrice, rt.strategy.Universe.MinVolume)
	return nil
}
