package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/scheduler"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run or inspect the scheduled jobs",
	Long: `Manages the recurring jobs.

Registered jobs:
- daily_scan: weekdays 17:30, the full scan after the close
- compounder_review: quarterly, rescoring of the long-term sleeve

Example:
  go run ./cmd/screener scheduler start
  go run ./cmd/screener scheduler list
  go run ./cmd/screener scheduler run daily_scan`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler daemon",
		RunE:  runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List the registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Trigger one job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runJobNow,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func initScheduler() (*scheduler.Scheduler, func(), error) {
	rt, err := initRuntime(runtimeOptions{Preset: "default"})
	if err != nil {
		return nil, nil, err
	}

	sched := scheduler.New(rt.log)
	if err := sched.AddJob(jobs.NewDailyScanJob(rt.runner, rt.log)); err != nil {
		return nil, nil, err
	}
	if err := sched.AddJob(jobs.NewCompounderReviewJob(rt.runner, rt.log)); err != nil {
		return nil, nil, err
	}
	return sched, rt.cleanup, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := initScheduler()
	if err != nil {
		return err
	}
	defer cleanup()

	sched.Start()

	fmt.Println("Scheduler started")
	fmt.Println("\nRegistered jobs:")
	for _, name := range sched.Jobs() {
		fmt.Printf("  - %s\n", name)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := initScheduler()
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Println("Registered jobs:")
	for _, name := range sched.Jobs() {
		fmt.Printf("  - %s\n", name)
	}
	return nil
}

func runJobNow(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := initScheduler()
	if err != nil {
		return err
	}
	defer cleanup()

	name := args[0]
	fmt.Printf("Running job: %s\n", name)
	if err := sched.RunJob(name); err != nil {
		return err
	}

	// RunJob is asynchronous; poll for the outcome so the connection
	// cleanup does not race the job.
	for {
		time.Sleep(time.Second)
		h, err := sched.History(name)
		if err != nil {
			return err
		}
		if last, ok := h.Last(); ok {
			if !last.Success {
				return fmt.Errorf("job %s failed: %s", name, last.Error)
			}
			fmt.Printf("Job %s completed in %s\n", name, last.Duration)
			return nil
		}
	}
}
