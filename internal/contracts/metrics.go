package contracts

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// NullFloat is a metric that may be undefined (zero denominator)
type NullFloat struct {
	Value float64
	Valid bool
}

// Float wraps a defined value; NaN/Inf become undefined
func Float(v float64) NullFloat {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NullFloat{}
	}
	return NullFloat{Value: v, Valid: true}
}

// Null is an undefined metric
func Null() NullFloat {
	return NullFloat{}
}

// Scale multiplies a defined value
func (n NullFloat) Scale(k float64) NullFloat {
	if !n.Valid {
		return n
	}
	return Float(n.Value * k)
}

// String renders N/A for undefined values
func (n NullFloat) String() string {
	if !n.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%.4f", n.Value)
}

// MarshalJSON encodes an undefined value as null
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// UnmarshalJSON accepts a number or null
func (n *NullFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = NullFloat{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Float(f)
	return nil
}

// MetricRecord holds the risk/return battery for one instrument.
// 모든 값은 소수(fraction) 단위. 퍼센트 표시는 Display() 사용
// ⭐ SSOT: Metrics Engine → Renderer 전달
type MetricRecord struct {
	Symbol               string    `json:"symbol"`
	TotalValue           float64   `json:"total_value"` // 기간 마지막 수정종가
	Correlation          NullFloat `json:"correlation"`
	AnnualizedAlpha      float64   `json:"annualized_alpha"`
	AnnualizedVolatility float64   `json:"annualized_volatility"`
	SharpeRatio          NullFloat `json:"sharpe_ratio"`
	TreynorRatio         NullFloat `json:"treynor_ratio"`
	SortinoRatio         NullFloat `json:"sortino_ratio"`
	MaximumDrawdown      float64   `json:"maximum_drawdown"`
	RSquared             NullFloat `json:"r_squared"`
	DownsideDeviation    float64   `json:"downside_deviation"`
	TrackingError        float64   `json:"tracking_error"`
}

// Display returns the presentation view: the percentage-denominated
// fields (alpha, volatility, tracking error) multiplied by 100.
// Maximum drawdown stays a fraction.
func (m MetricRecord) Display() MetricRecord {
	out := m
	out.AnnualizedAlpha = m.AnnualizedAlpha * 100
	out.AnnualizedVolatility = m.AnnualizedVolatility * 100
	out.TrackingError = m.TrackingError * 100
	return out
}

// MetricsBatch is the Metrics Engine output
type MetricsBatch struct {
	Records    []MetricRecord `json:"records"`
	Failures   []error        `json:"-"` // *InsufficientDataError (종목 제외)
	Degenerate []error        `json:"-"` // *DegenerateMetricError (필드만 null)
}

// Skipped returns the symbols excluded for insufficient data
func (b *MetricsBatch) Skipped() []string {
	var out []string
	for _, err := range b.Failures {
		var ide *InsufficientDataError
		if errors.As(err, &ide) {
			out = append(out, ide.Symbol)
		}
	}
	return out
}

// Record returns the record for symbol
func (b *MetricsBatch) Record(symbol string) (MetricRecord, bool) {
	for _, r := range b.Records {
		if r.Symbol == symbol {
			return r, true
		}
	}
	return MetricRecord{}, false
}
