package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bidwatch-kr/backend/internal/api"
	"github.com/bidwatch-kr/backend/internal/api/handlers"
	"github.com/bidwatch-kr/backend/internal/contract"
	"github.com/bidwatch-kr/backend/internal/g2b"
	"github.com/bidwatch-kr/backend/internal/stats"
	"github.com/bidwatch-kr/backend/pkg/config"
	"github.com/bidwatch-kr/backend/pkg/database"
	"github.com/bidwatch-kr/backend/pkg/httputil"
	"github.com/bidwatch-kr/backend/pkg/logger"
	"github.com/bidwatch-kr/backend/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health               - Health check
  POST /api/company-stats    - 업체별 수주/매출 집계
  GET  /api/contracts        - 계약 스토어 조회 (페이징)
  GET  /api/search           - 나라장터 공고 검색 proxy
  GET  /api/status           - DB 상태 및 데이터 신선도

Example:
  go run ./cmd/bidwatch api
  go run ./cmd/bidwatch api --port 8085`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== bidwatch API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	log.Info("Connected to database")

	// 4. Redis (optional, quota tracking for the search proxy)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	// 5. Create external API client
	httpClient := httputil.New(log).WithRateLimit(cfg.G2B.RateLimit)
	quota := redis.NewQuotaLimiter(redisClient, "bidwatch", log)
	g2bClient := g2b.NewClient(httpClient, log, cfg.G2B, quota)

	// 6. Create store and engine
	store := contract.NewPostgresStore(db.Pool)
	engine := stats.NewEngine(store, log)

	// 7. Create handlers
	statsHandler := handlers.NewStatsHandler(engine, log)
	contractsHandler := handlers.NewContractsHandler(store, log)
	searchHandler := handlers.NewSearchHandler(g2bClient, log)
	statusHandler := handlers.NewStatusHandler(db, store, log)

	// 8. Create router and server
	router := api.NewRouter(statsHandler, contractsHandler, searchHandler, statusHandler, log)
	server := api.New(cfg, log, router)

	// 9. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  POST /api/company-stats")
	fmt.Println("  GET  /api/contracts")
	fmt.Println("  GET  /api/search")
	fmt.Println("  GET  /api/status")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
