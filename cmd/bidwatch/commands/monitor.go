package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bidwatch-kr/backend/internal/contract"
	"github.com/bidwatch-kr/backend/internal/scheduler"
	"github.com/bidwatch-kr/backend/internal/scheduler/jobs"
	"github.com/bidwatch-kr/backend/pkg/config"
	"github.com/bidwatch-kr/backend/pkg/database"
	"github.com/bidwatch-kr/backend/pkg/logger"
)

// monitorCmd represents the monitor command
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "계약 스토어 신선도 모니터링 시작",
	Long: `크롤러가 채우는 계약 스토어의 신선도를 주기적으로 점검합니다.

최신 계약일이 임계값보다 오래되면 경고 로그를 남깁니다.
스케줄과 임계값은 MONITOR_SCHEDULE / MONITOR_STALE_THRESHOLD 로 설정합니다.

Example:
  go run ./cmd/bidwatch monitor
  go run ./cmd/bidwatch monitor --run-now`,
	RunE: runMonitor,
}

var monitorRunNow bool

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().BoolVar(&monitorRunNow, "run-now", false, "시작하자마자 한 번 즉시 실행")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	store := contract.NewPostgresStore(db.Pool)
	job := jobs.NewFreshnessJob(store, log, cfg.Monitor.Schedule, cfg.Monitor.StaleThreshold)

	sched := scheduler.New(log)
	if err := sched.AddJob(job); err != nil {
		return fmt.Errorf("register job: %w", err)
	}

	sched.Start()
	defer sched.Stop()

	if monitorRunNow {
		if err := sched.RunJob(job.Name()); err != nil {
			return fmt.Errorf("run job: %w", err)
		}
	}

	fmt.Printf("✅ Freshness monitor running (schedule: %s)\n", cfg.Monitor.Schedule)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	return nil
}
