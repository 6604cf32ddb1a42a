package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/eventreport/internal/api"
	"github.com/wonny/eventreport/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health                               - Health check
  POST /api/reports?format=pdf|text|json     - 리포트 생성 {"main_topic", "industry_topic"}
  GET  /api/ranking?limit=20                 - 점수 랭킹 조회

Example:
  go run ./cmd/quant api
  go run ./cmd/quant api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	a.log.WithFields(map[string]interface{}{
		"port": a.cfg.Port,
		"env":  a.cfg.Env,
	}).Info("Initializing API server")

	orch, err := a.orchestrator()
	if err != nil {
		return err
	}

	reportHandler := handlers.NewReportHandler(orch, a.cfg.Report.Format, a.log)
	rankingHandler := handlers.NewRankingHandler(orch, a.log)
	router := api.NewRouter(reportHandler, rankingHandler, a.log)
	server := api.New(a.cfg, a.log, router, a.strategy.Selection.MetricsSize+1)

	// Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	w := cmd.OutOrStdout()
	PrintSuccess(w, fmt.Sprintf("Server running on http://localhost:%s", a.cfg.Port))
	fmt.Fprintln(w, "\nAvailable endpoints:")
	PrintList(w, []string{
		"GET  /health",
		"POST /api/reports",
		"GET  /api/ranking",
	})
	fmt.Fprintln(w, "\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	a.log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
