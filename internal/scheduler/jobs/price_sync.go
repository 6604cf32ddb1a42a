package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/eventreport/internal/contracts"
	"github.com/wonny/eventreport/internal/s0_data/collector"
	"github.com/wonny/eventreport/pkg/logger"
)

// PriceSyncJob refreshes the local price store from the remote provider
// ⭐ SSOT: 가격 이력 적재 스케줄은 이 Job에서만
type PriceSyncJob struct {
	collector   *collector.Collector
	instruments contracts.InstrumentSource
	benchmark   string
	lookback    int
	workers     int
	schedule    string
	logger      *logger.Logger
}

// NewPriceSyncJob creates a new price sync job
func NewPriceSyncJob(
	col *collector.Collector,
	instruments contracts.InstrumentSource,
	benchmark string,
	lookbackYears int,
	schedule string,
	log *logger.Logger,
) *PriceSyncJob {
	return &PriceSyncJob{
		collector:   col,
		instruments: instruments,
		benchmark:   benchmark,
		lookback:    lookbackYears,
		workers:     4,
		schedule:    schedule,
		logger:      log,
	}
}

// WithWorkers sets the collector worker count (기본: 4)
func (j *PriceSyncJob) WithWorkers(n int) *PriceSyncJob {
	if n > 0 {
		j.workers = n
	}
	return j
}

// Name returns the job name
func (j *PriceSyncJob) Name() string {
	return "price_sync"
}

// Schedule returns the cron schedule (with seconds)
func (j *PriceSyncJob) Schedule() string {
	return j.schedule
}

// Run syncs every instrument plus the benchmark
func (j *PriceSyncJob) Run(ctx context.Context) error {
	records, err := j.instruments.Load(ctx)
	if err != nil {
		return fmt.Errorf("load instruments: %w", err)
	}

	symbols := make([]string, 0, len(records)+1)
	for _, r := range records {
		symbols = append(symbols, r.Symbol)
	}
	symbols = append(symbols, j.benchmark)

	window := contracts.TrailingYear(time.Now(), j.lookback)
	results := j.collector.SyncPrices(ctx, symbols, window, collector.Config{Workers: j.workers})

	if failed := collector.Failed(results); len(failed) > 0 {
		return fmt.Errorf("price sync: %d of %d symbols failed (first: %s: %v)",
			len(failed), len(results), failed[0].Symbol, failed[0].Error)
	}
	return nil
}
