package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/wonny/eventreport/pkg/config"
	"github.com/wonny/eventreport/pkg/logger"
)

// minReportTimeout is the floor for POST /api/reports responses
const minReportTimeout = time.Minute

// ReportServer serves report generation and ranking over HTTP.
// POST /api/reports 는 요청 안에서 가격 이력을 수집하므로 write 타임아웃을 수집 예산에 맞춘다.
// ⭐ SSOT: API 서버 설정은 이 파일에서만
type ReportServer struct {
	httpServer *http.Server
	logger     *logger.Logger
	env        string
}

// New creates the report server. series is the number of price series one
// report fetches (top K + benchmark).
func New(cfg *config.Config, log *logger.Logger, router http.Handler, series int) *ReportServer {
	return &ReportServer{
		httpServer: &http.Server{
			Addr:              net.JoinHostPort("", cfg.Port),
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      ReportTimeout(cfg.Yahoo, series),
			IdleTimeout:       60 * time.Second,
		},
		logger: log.Module("api"),
		env:    cfg.Env,
	}
}

// ReportTimeout is the time one report may take: series fetched one after
// another under the Yahoo rate limit, plus one upstream timeout of slack.
func ReportTimeout(yc config.YahooConfig, series int) time.Duration {
	rate := yc.RateLimit
	if rate <= 0 {
		rate = 1
	}
	fetch := time.Duration(series) * time.Second / time.Duration(rate)
	d := fetch + yc.Timeout
	if d < minReportTimeout {
		return minReportTimeout
	}
	return d
}

// Handler returns the router (tests)
func (s *ReportServer) Handler() http.Handler {
	return s.httpServer.Handler
}

// WriteTimeout returns the per-response budget
func (s *ReportServer) WriteTimeout() time.Duration {
	return s.httpServer.WriteTimeout
}

// Start listens until Shutdown
func (s *ReportServer) Start() error {
	s.logger.WithFields(map[string]interface{}{
		"addr":          s.httpServer.Addr,
		"env":           s.env,
		"write_timeout": s.httpServer.WriteTimeout.String(),
	}).Info("Serving report API")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("report server: %w", err)
	}
	return nil
}

// Shutdown waits for in-flight reports or until ctx expires
func (s *ReportServer) Shutdown(ctx context.Context) error {
	s.logger.Info("Draining report API")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown report server: %w", err)
	}
	return nil
}
