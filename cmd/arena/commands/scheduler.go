package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/witchakorn/stockarena/internal/scheduler"
	"github.com/witchakorn/stockarena/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

등록되는 작업:
- daily_challenge: 매일 아침 챌린지 생성
- challenge_verification: 다음 날 아침 챌린지 검증
- report_snapshot: 검증 후 리포트 스냅샷 로깅

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/arena scheduler start
  go run ./cmd/arena scheduler run daily_challenge`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 챌린지 작업을 스케줄합니다.

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
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
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// initScheduler wires the scheduler with the challenge jobs
func initScheduler(d *deps) (*scheduler.Scheduler, error) {
	sched := scheduler.New(d.log)

	if err := sched.AddJob(jobs.NewDailyChallengeJob(d.lifecycle, d.cfg, d.log)); err != nil {
		return nil, fmt.Errorf("add daily challenge job: %w", err)
	}
	if err := sched.AddJob(jobs.NewChallengeVerificationJob(d.verifier, d.cfg, d.log)); err != nil {
		return nil, fmt.Errorf("add verification job: %w", err)
	}
	if err := sched.AddJob(jobs.NewReportSnapshotJob(d.repo, d.repo, d.cfg, d.log)); err != nil {
		return nil, fmt.Errorf("add report snapshot job: %w", err)
	}

	return sched, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== StockArena Scheduler ===")

	d, err := initDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer d.close()

	sched, err := initScheduler(d)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	d, err := initDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer d.close()

	sched, err := initScheduler(d)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Println("Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	d, err := initDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer d.close()

	// Direct execution keeps the result synchronous for CLI use.
	switch jobName {
	case "daily_challenge":
		return jobs.NewDailyChallengeJob(d.lifecycle, d.cfg, d.log).Run(cmd.Context())
	case "challenge_verification":
		return jobs.NewChallengeVerificationJob(d.verifier, d.cfg, d.log).Run(cmd.Context())
	case "report_snapshot":
		return jobs.NewReportSnapshotJob(d.repo, d.repo, d.cfg, d.log).Run(cmd.Context())
	default:
		return fmt.Errorf("unknown job: %s", jobName)
	}
}
