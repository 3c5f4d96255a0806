package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/witchakorn/stockarena/internal/api"
	"github.com/witchakorn/stockarena/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- 챌린지 생성/검증 트리거 제공
- 점수/리포트 조회 엔드포인트 제공

Endpoints:
  GET  /health                  - Health check
  POST /api/challenge           - 오늘의 챌린지 생성
  POST /api/challenge/verify    - 어제 챌린지 검증
  GET  /api/challenge/latest    - 최신 챌린지 조회
  GET  /api/challenge/history   - 챌린지 이력 조회
  GET  /api/challenge/score     - 누적 승수 조회
  GET  /api/challenge/report    - 정확도 리포트 조회

Example:
  go run ./cmd/arena api
  go run ./cmd/arena api --port 8086`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== StockArena API Server ===")

	ctx := cmd.Context()
	d, err := initDeps(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	// Override port if flag is set
	if apiPort != "" {
		d.cfg.Port = apiPort
	}

	challengeHandler := handlers.NewChallengeHandler(d.lifecycle, d.verifier, d.repo, d.log)
	reportHandler := handlers.NewReportHandler(d.repo, d.reportCache(), d.cfg.Challenge.HistoryDays, d.log)

	router := api.NewRouter(challengeHandler, reportHandler, d.log)
	server := api.New(d.cfg, d.log, router)

	go func() {
		if err := server.Start(); err != nil {
			d.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	d.log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", d.cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  POST /api/challenge")
	fmt.Println("  POST /api/challenge/verify")
	fmt.Println("  GET  /api/challenge/latest")
	fmt.Println("  GET  /api/challenge/history")
	fmt.Println("  GET  /api/challenge/score")
	fmt.Println("  GET  /api/challenge/report")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	d.log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	d.log.Info("Server stopped")
	return nil
}
