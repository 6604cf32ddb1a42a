package pricehistory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/wonny/eventreport/internal/contracts"
	"github.com/wonny/eventreport/pkg/logger"
)

// Fetcher downloads and aligns adjusted closes for a set of symbols plus the benchmark
// ⭐ SSOT: 가격 이력 정렬(날짜 교집합)은 여기서만
type Fetcher struct {
	provider contracts.PriceHistoryProvider
	logger   *logger.Logger
}

// NewFetcher creates a fetcher over a single provider (Yahoo or PostgreSQL)
func NewFetcher(provider contracts.PriceHistoryProvider, log *logger.Logger) *Fetcher {
	return &Fetcher{
		provider: provider,
		logger:   log.Module("pricehistory"),
	}
}

// Fetch retrieves every symbol and the benchmark sequentially.
// 하나라도 실패하면 전체 실패 (재시도 없음). 결과는 모든 시리즈에 공통인 날짜만 남김
func (f *Fetcher) Fetch(ctx context.Context, symbols []string, benchmark string, window contracts.DateRange) (*contracts.PriceHistory, error) {
	if benchmark == "" {
		return nil, &contracts.ConfigurationError{Field: "benchmark", Reason: "must not be empty"}
	}

	ordered := make([]string, 0, len(symbols)+1)
	seen := make(map[string]bool, len(symbols)+1)
	for _, s := range append(append([]string{}, symbols...), benchmark) {
		if seen[s] {
			continue
		}
		seen[s] = true
		ordered = append(ordered, s)
	}

	start := time.Now()
	raw := make(map[string]contracts.PriceSeries, len(ordered))

	for _, symbol := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		series, err := f.provider.FetchAdjClose(ctx, symbol, window)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", symbol, err)
		}
		if series.Len() == 0 {
			return nil, fmt.Errorf("fetch %s: %w", symbol, contracts.ErrNoPriceData)
		}
		series.Symbol = symbol
		raw[symbol] = series
	}

	history := &contracts.PriceHistory{
		Window:    window,
		Benchmark: benchmark,
		Series:    Align(raw),
	}

	bench, _ := history.BenchmarkSeries()
	f.logger.WithFields(map[string]interface{}{
		"symbols":      len(ordered),
		"benchmark":    benchmark,
		"observations": bench.Len(),
		"duration":     time.Since(start).String(),
	}).Info("Price history fetched")

	return history, nil
}

// Align keeps only the dates present in every series, in ascending order
func Align(series map[string]contracts.PriceSeries) map[string]contracts.PriceSeries {
	counts := make(map[time.Time]int)
	for _, s := range series {
		dates := make(map[time.Time]bool, len(s.Points))
		for _, p := range s.Points {
			d := day(p.Date)
			if dates[d] {
				continue
			}
			dates[d] = true
			counts[d]++
		}
	}

	common := make([]time.Time, 0, len(counts))
	for d, n := range counts {
		if n == len(series) {
			common = append(common, d)
		}
	}
	sort.Slice(common, func(i, j int) bool { return common[i].Before(common[j]) })

	aligned := make(map[string]contracts.PriceSeries, len(series))
	for symbol, s := range series {
		byDate := make(map[time.Time]float64, len(s.Points))
		for _, p := range s.Points {
			byDate[day(p.Date)] = p.AdjClose
		}

		out := contracts.PriceSeries{Symbol: symbol, Points: make([]contracts.PricePoint, 0, len(common))}
		for _, d := range common {
			out.Points = append(out.Points, contracts.PricePoint{Date: d, AdjClose: byDate[d]})
		}
		aligned[symbol] = out
	}

	return aligned
}

func day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
