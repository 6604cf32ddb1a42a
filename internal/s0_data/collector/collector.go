package collector

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/eventreport/internal/contracts"
	"github.com/wonny/eventreport/pkg/logger"
)

// SeriesStore persists fetched price series (s0_data.PriceRepository)
type SeriesStore interface {
	SaveSeries(ctx context.Context, series contracts.PriceSeries) (int, error)
}

// Collector copies price history from a remote provider into the local store
// ⭐ SSOT: 가격 이력 적재 오케스트레이션은 이 패키지에서만
// 보고서 요청 경로와 무관한 오프라인 배치 (PRICE_SOURCE=postgres 용)
type Collector struct {
	source contracts.PriceHistoryProvider
	store  SeriesStore
	logger *logger.Logger
}

// Config holds collector configuration
type Config struct {
	Workers int // Number of concurrent workers
}

// NewCollector creates a new Collector instance
func NewCollector(source contracts.PriceHistoryProvider, store SeriesStore, log *logger.Logger) *Collector {
	return &Collector{
		source: source,
		store:  store,
		logger: log.Module("collector"),
	}
}

// SyncResult represents the result of one symbol's sync
type SyncResult struct {
	Symbol     string
	PriceCount int
	Error      error
}

// SyncPrices fetches and stores price history for every symbol using a worker pool.
// 개별 종목 실패는 결과에 기록하고 계속 진행
func (c *Collector) SyncPrices(ctx context.Context, symbols []string, window contracts.DateRange, cfg Config) []SyncResult {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol_count": len(symbols),
		"from":         window.From.Format("2006-01-02"),
		"to":           window.To.Format("2006-01-02"),
		"workers":      workers,
	}).Info("Starting price sync")

	start := time.Now()
	results := make([]SyncResult, 0, len(symbols))
	resultCh := make(chan SyncResult, len(symbols))
	symbolCh := make(chan string, len(symbols))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			c.priceWorker(ctx, workerID, symbolCh, resultCh, window)
		}(i)
	}

	for _, symbol := range symbols {
		symbolCh <- symbol
	}
	close(symbolCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	successCount := 0
	failCount := 0
	for result := range resultCh {
		results = append(results, result)
		if result.Error != nil {
			failCount++
		} else {
			successCount++
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"success":  successCount,
		"failed":   failCount,
		"total":    len(results),
		"duration": time.Since(start).String(),
	}).Info("Price sync completed")

	return results
}

// priceWorker processes symbols until the channel closes
func (c *Collector) priceWorker(ctx context.Context, workerID int, symbolCh <-chan string, resultCh chan<- SyncResult, window contracts.DateRange) {
	for symbol := range symbolCh {
		// 취소되면 남은 종목은 모두 ctx 에러로 기록
		if err := ctx.Err(); err != nil {
			resultCh <- SyncResult{Symbol: symbol, Error: err}
			continue
		}

		series, err := c.source.FetchAdjClose(ctx, symbol, window)
		if err != nil {
			c.logger.WithError(err).WithFields(map[string]interface{}{
				"worker": workerID,
				"symbol": symbol,
			}).Error("Failed to fetch prices")
			resultCh <- SyncResult{Symbol: symbol, Error: err}
			continue
		}
		series.Symbol = symbol

		saved, err := c.store.SaveSeries(ctx, series)
		if err != nil {
			c.logger.WithError(err).WithFields(map[string]interface{}{
				"worker": workerID,
				"symbol": symbol,
			}).Error("Failed to save prices")
			resultCh <- SyncResult{Symbol: symbol, PriceCount: series.Len(), Error: err}
			continue
		}

		c.logger.WithFields(map[string]interface{}{
			"worker": workerID,
			"symbol": symbol,
			"count":  saved,
		}).Debug("Synced prices")

		resultCh <- SyncResult{Symbol: symbol, PriceCount: saved}
	}
}

// Failed returns the results that carry an error
func Failed(results []SyncResult) []SyncResult {
	var out []SyncResult
	for _, r := range results {
		if r.Error != nil {
			out = append(out, r)
		}
	}
	return out
}
