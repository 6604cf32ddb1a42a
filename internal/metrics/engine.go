package metrics

import (
	"math"

	"github.com/wonny/eventreport/internal/contracts"
	"github.com/wonny/eventreport/pkg/logger"
)

// DefaultTradingDays is the annualization period count
const DefaultTradingDays = 252

// Metric field names used in DegenerateMetricError
const (
	MetricCorrelation = "correlation"
	MetricSharpe      = "sharpe_ratio"
	MetricSortino     = "sortino_ratio"
	MetricTreynor     = "treynor_ratio"
	MetricRSquared    = "r_squared"
)

// Options configures the Metrics Engine
type Options struct {
	TradingDays int // 연환산 기간 수 (기본: 252)
}

// Engine computes the risk/return battery for each selected instrument
// ⭐ SSOT: 성과/리스크 지표 계산은 여기서만
// 순수 계산기: 데이터 수집/정렬은 pricehistory 에서 끝난 상태로 받음
type Engine struct {
	opts   Options
	logger *logger.Logger
}

// NewEngine creates a metrics engine
func NewEngine(opts Options, log *logger.Logger) *Engine {
	if opts.TradingDays <= 0 {
		opts.TradingDays = DefaultTradingDays
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Engine{opts: opts, logger: log}
}

// Compute derives one MetricRecord per instrument, in the given order.
// An instrument with a missing, short, or misaligned series is skipped
// with an InsufficientDataError in batch.Failures. A benchmark with fewer
// than two observations fails the whole batch.
func (e *Engine) Compute(history map[string]contracts.PriceSeries, benchmark contracts.PriceSeries, instruments []string) (*contracts.MetricsBatch, error) {
	if benchmark.Len() < 2 {
		return nil, &contracts.InsufficientDataError{
			Symbol:       benchmark.Symbol,
			Observations: benchmark.Len(),
			Reason:       "benchmark needs at least 2 observations",
		}
	}

	benchPrices := benchmark.Closes()
	if err := checkPositive(benchmark.Symbol, benchPrices); err != nil {
		return nil, err
	}
	benchReturns := Returns(benchPrices)

	batch := &contracts.MetricsBatch{
		Records: make([]contracts.MetricRecord, 0, len(instruments)),
	}

	for _, symbol := range instruments {
		series, ok := history[symbol]
		if !ok {
			e.skip(batch, &contracts.InsufficientDataError{
				Symbol: symbol,
				Reason: "no price series",
			})
			continue
		}
		if series.Len() < 2 {
			e.skip(batch, &contracts.InsufficientDataError{
				Symbol:       symbol,
				Observations: series.Len(),
				Reason:       "needs at least 2 observations",
			})
			continue
		}
		if series.Len() != benchmark.Len() {
			e.skip(batch, &contracts.InsufficientDataError{
				Symbol:       symbol,
				Observations: series.Len(),
				Reason:       "series not aligned with benchmark",
			})
			continue
		}

		prices := series.Closes()
		if err := checkPositive(symbol, prices); err != nil {
			e.skip(batch, err)
			continue
		}

		rec, degenerate := e.record(symbol, prices, benchReturns)
		batch.Records = append(batch.Records, rec)
		batch.Degenerate = append(batch.Degenerate, degenerate...)
	}

	e.logger.WithFields(map[string]interface{}{
		"benchmark":    benchmark.Symbol,
		"observations": benchmark.Len(),
		"requested":    len(instruments),
		"computed":     len(batch.Records),
		"skipped":      len(batch.Failures),
		"degenerate":   len(batch.Degenerate),
	}).Info("Metrics computed")

	return batch, nil
}

// record computes every field for one aligned instrument
func (e *Engine) record(symbol string, prices, benchReturns []float64) (contracts.MetricRecord, []error) {
	var degenerate []error
	undefined := func(metric string) contracts.NullFloat {
		degenerate = append(degenerate, &contracts.DegenerateMetricError{Symbol: symbol, Metric: metric})
		return contracts.Null()
	}

	days := float64(e.opts.TradingDays)
	sqrtDays := math.Sqrt(days)

	returns := Returns(prices)

	// 초과수익 = 종목 수익률 − 벤치마크 평균 수익률 (스칼라)
	benchMean := Mean(benchReturns)
	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - benchMean
	}
	excessMean := Mean(excess)

	std := StdDev(returns)
	downside := DownsideDeviation(returns) * sqrtDays
	cov := Covariance(returns, benchReturns)

	rec := contracts.MetricRecord{
		Symbol:               symbol,
		TotalValue:           prices[len(prices)-1],
		AnnualizedAlpha:      excessMean * days,
		AnnualizedVolatility: std * sqrtDays,
		TrackingError:        PopStdDev(Subtract(returns, benchReturns)) * sqrtDays,
		DownsideDeviation:    downside,
		MaximumDrawdown:      RangeDrawdown(prices),
	}

	if corr, ok := Correlation(returns, benchReturns); ok {
		rec.Correlation = contracts.Float(corr)
		rec.RSquared = contracts.Float(corr * corr)
	} else {
		rec.Correlation = undefined(MetricCorrelation)
		rec.RSquared = undefined(MetricRSquared)
	}

	rec.SharpeRatio = ratio(excessMean*sqrtDays, std, func() contracts.NullFloat { return undefined(MetricSharpe) })
	rec.SortinoRatio = ratio(excessMean, downside, func() contracts.NullFloat { return undefined(MetricSortino) })
	rec.TreynorRatio = ratio(excessMean, cov, func() contracts.NullFloat { return undefined(MetricTreynor) })

	if len(degenerate) > 0 {
		e.logger.WithFields(map[string]interface{}{
			"symbol":     symbol,
			"degenerate": len(degenerate),
		}).Debug("Some metrics undefined (zero denominator)")
	}

	return rec, degenerate
}

// ratio returns num/den, or onZero() when den is 0 or the result is not finite
func ratio(num, den float64, onZero func() contracts.NullFloat) contracts.NullFloat {
	if den == 0 {
		return onZero()
	}
	v := num / den
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return onZero()
	}
	return contracts.Float(v)
}

func (e *Engine) skip(batch *contracts.MetricsBatch, err error) {
	batch.Failures = append(batch.Failures, err)
	e.logger.WithError(err).Warn("Instrument excluded from metrics")
}

// checkPositive rejects series whose returns would divide by a non-positive price
func checkPositive(symbol string, prices []float64) error {
	for _, p := range prices {
		if !(p > 0) || math.IsInf(p, 0) {
			return &contracts.InsufficientDataError{
				Symbol:       symbol,
				Observations: len(prices),
				Reason:       "non-positive or non-finite price",
			}
		}
	}
	return nil
}
