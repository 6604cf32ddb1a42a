package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/wonny/eventreport/internal/brain"
	"github.com/wonny/eventreport/internal/contracts"
	"github.com/wonny/eventreport/internal/external/yahoo"
	"github.com/wonny/eventreport/internal/pricehistory"
	"github.com/wonny/eventreport/internal/s0_data"
	"github.com/wonny/eventreport/internal/strategyconfig"
	"github.com/wonny/eventreport/pkg/config"
	"github.com/wonny/eventreport/pkg/database"
	"github.com/wonny/eventreport/pkg/httputil"
	"github.com/wonny/eventreport/pkg/logger"
	"github.com/wonny/eventreport/pkg/redis"
)

// app holds the wired collaborators shared by commands
// ⭐ SSOT: 의존성 조립은 여기서만
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB  // PostgreSQL 소스일 때만
	redis    *redis.Client // REDIS_ENABLED 일 때만 활성
	strategy *strategyconfig.Config

	instruments contracts.InstrumentSource
	yahoo       *yahoo.Client
	prices      contracts.PriceHistoryProvider
	history     *pricehistory.Fetcher
}

// loadConfig loads env config and applies global flags
func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if strategyFile != "" {
		cfg.Sources.StrategyFile = strategyFile
	}
	return cfg, logger.NewWithWriter(cfg, os.Stderr), nil
}

// newApp wires sources, the price provider and the strategy.
// needDB forces a database connection even for csv/yahoo sources
func newApp(ctx context.Context, needDB bool) (*app, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log}

	a.strategy, err = strategyconfig.LoadOrDefault(cfg.Sources.StrategyFile)
	if err != nil {
		return nil, fmt.Errorf("load strategy: %w", err)
	}

	if needDB || cfg.NeedsDatabase() {
		a.db, err = database.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		log.Info("Connected to database")
	}

	a.redis, err = redis.New(ctx, cfg.Redis)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	// Instrument table
	switch cfg.Sources.Instruments {
	case config.SourcePostgres:
		a.instruments = s0_data.NewInstrumentRepository(a.db.Pool)
	default:
		a.instruments = s0_data.NewCSVInstrumentSource(cfg.Sources.InstrumentsFile, log)
	}

	// Yahoo 클라이언트: 재시도 없음, 레이트 리밋 (Redis 공유 또는 로컬)
	httpClient := httputil.New(cfg, log).DisableRetry()
	if a.redis.Enabled() {
		httpClient.WithRateLimiter(redis.NewRateLimiter(a.redis, "eventreport", redis.PerSecond("yahoo", cfg.Yahoo.RateLimit)))
	} else {
		httpClient.WithRateLimiter(httputil.NewLocalLimiter(cfg.Yahoo.RateLimit))
	}
	a.yahoo = yahoo.NewClient(httpClient, log, yahoo.WithBaseURL(cfg.Yahoo.BaseURL))

	// Price history provider
	switch cfg.Sources.Prices {
	case config.SourcePostgres:
		a.prices = s0_data.NewPriceRepository(a.db.Pool)
	default:
		a.prices = a.yahoo
	}
	a.history = pricehistory.NewFetcher(a.prices, log)

	log.WithFields(map[string]interface{}{
		"instrument_source": cfg.Sources.Instruments,
		"price_source":      cfg.Sources.Prices,
		"strategy_id":       a.strategy.Meta.StrategyID,
		"redis":             a.redis.Addr(),
	}).Debug("Dependencies wired")

	return a, nil
}

// orchestrator builds the report pipeline
func (a *app) orchestrator() (*brain.Orchestrator, error) {
	return brain.NewOrchestrator(a.strategy, a.instruments, a.history, a.log)
}

// Close releases connections
func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
