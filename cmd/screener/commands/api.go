package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/api"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the REST API server",
	Long: `Starts the REST API server over the stored scan results.

Endpoints:
  GET  /health              - Health check
  GET  /api/v1/status       - Loaded strategy identity
  GET  /api/v1/candidates   - Ranked candidates (latest or ?date=)
  GET  /api/v1/allocation   - Latest constructed portfolio
  POST /api/v1/rebalance    - Plan actions against current weights

Example:
  go run ./cmd/screener api
  go run ./cmd/screener api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	rt, err := initRuntime(runtimeOptions{Preset: "default"})
	if err != nil {
		return err
	}
	defer rt.cleanup()

	if rt.candidates == nil {
		return fmt.Errorf("the API serves stored results and requires DATABASE_URL")
	}
	if apiPort != "" {
		rt.cfg.Port = apiPort
	}

	handler := handlers.NewScreenerHandler(rt.candidates, rt.allocations, rt.runner, rt.strategy, rt.hash, rt.log)
	router := api.NewRouter(handler, rt.log)
	server := api.New(rt.cfg, rt.log, router)

	go func() {
		if err := server.Start(); err != nil {
			rt.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("Server running on http://localhost:%s\n", rt.cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
