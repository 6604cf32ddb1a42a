package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/eventreport/internal/s0_data"
	"github.com/wonny/eventreport/internal/s0_data/collector"
	"github.com/wonny/eventreport/internal/scheduler"
	"github.com/wonny/eventreport/internal/scheduler/jobs"
	"github.com/wonny/eventreport/pkg/config"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행
  status  - 작업 실행 상태 조회

Example:
  go run ./cmd/quant scheduler start
  go run ./cmd/quant scheduler list
  go run ./cmd/quant scheduler run event_report`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- event_report: REPORT_SCHEDULE (기본: 평일 18:00), REPORT_OUTPUT 갱신
- price_sync:   PRICE_SYNC_SCHEDULE (PRICE_SOURCE=postgres 일 때만)`,
		RunE: startScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	schedulerStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "작업 실행 상태 조회",
		RunE:  showStatus,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)

	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)
}

func startScheduler(cmd *cobra.Command, args []string) error {
	a, sched, err := initScheduler(cmd.Context())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	w := cmd.OutOrStdout()
	sched.Start()
	PrintSuccess(w, "Scheduler started")
	for _, name := range sched.GetAllJobs() {
		if next, err := sched.NextRun(name); err == nil {
			fmt.Fprintf(w, "  - %-14s next: %s\n", name, next.Format("2006-01-02 15:04:05"))
		}
	}
	fmt.Fprintln(w, "\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Fprintln(w, "\nShutting down scheduler...")
	sched.Stop()
	fmt.Fprintln(w, "Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, sched, err := initScheduler(cmd.Context())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "Registered jobs:")
	PrintList(w, sched.GetAllJobs())

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, sched, err := initScheduler(ctx)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Running job: %s\n", jobName)

	result, err := sched.RunNow(ctx, jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("job %s failed after %d attempt(s): %s", jobName, result.Attempts, result.Error)
	}

	PrintSuccess(w, fmt.Sprintf("%s completed in %v", jobName, result.Duration.Round(time.Millisecond)))
	return nil
}

func showStatus(cmd *cobra.Command, args []string) error {
	a, sched, err := initScheduler(cmd.Context())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	stats := sched.GetJobStats()
	w := cmd.OutOrStdout()

	fmt.Fprintln(w, "Job Statistics:")
	fmt.Fprintln(w)

	for _, jobName := range sched.GetAllJobs() {
		stat := stats[jobName]
		fmt.Fprintf(w, "📊 %s\n", jobName)
		fmt.Fprintf(w, "   Schedule: %s\n", stat.Schedule)
		if next, err := sched.NextRun(jobName); err == nil && !next.IsZero() {
			fmt.Fprintf(w, "   Next Run: %s\n", next.Format("2006-01-02 15:04:05"))
		}
		fmt.Fprintf(w, "   Total Runs: %d\n", stat.TotalRuns)
		fmt.Fprintf(w, "   Success: %d (%.1f%%)\n", stat.SuccessCount, stat.SuccessRate*100)
		fmt.Fprintf(w, "   Failures: %d\n", stat.FailureCount)

		if stat.LastRun != nil {
			fmt.Fprintf(w, "   Last Run: %s\n", stat.LastRun.Format("2006-01-02 15:04:05"))
		}
		fmt.Fprintln(w)
	}

	return nil
}

// initScheduler wires the app and registers jobs
func initScheduler(ctx context.Context) (*app, *scheduler.Scheduler, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, false)
	if err != nil {
		return nil, nil, err
	}

	orch, err := a.orchestrator()
	if err != nil {
		a.Close()
		return nil, nil, err
	}

	sched := scheduler.New(scheduler.Options{
		MaxRetries: a.cfg.Report.MaxRetries,
		RetryDelay: 1 * time.Minute,
	}, a.log)

	// 1. Report job
	reportJob, err := jobs.NewReportJob(orch, a.cfg.Report, a.log)
	if err != nil {
		a.Close()
		return nil, nil, err
	}
	if err := sched.AddJob(reportJob); err != nil {
		a.Close()
		return nil, nil, err
	}

	// 2. Price sync job (PostgreSQL 가격 소스일 때만)
	if a.cfg.Sources.Prices == config.SourcePostgres {
		col := collector.NewCollector(a.yahoo, s0_data.NewPriceRepository(a.db.Pool), a.log)
		syncJob := jobs.NewPriceSyncJob(
			col,
			a.instruments,
			a.strategy.Metrics.Benchmark,
			a.strategy.Metrics.LookbackYears,
			a.cfg.Sources.PriceSyncSchedule,
			a.log,
		).WithWorkers(a.cfg.Sources.PriceSyncWorkers)
		if err := sched.AddJob(syncJob); err != nil {
			a.Close()
			return nil, nil, err
		}
	}

	return a, sched, nil
}
