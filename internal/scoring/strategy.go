package scoring

import "github.com/wonny/eventreport/internal/contracts"

// Strategy is how one factor's cell turns into a score contribution
type Strategy int

const (
	// Linear: value × weight
	Linear Strategy = iota
	// Inverted: −(value × weight), for factors where lower is better
	Inverted
	// Bucketed: bucket(value) × weight, oversold/overbought bands
	Bucketed
)

// RSI 과매도/과매수 경계 (경계값 자체는 중립)
const (
	OversoldBelow   = 30.0
	OverboughtAbove = 70.0
)

// ⭐ SSOT: 팩터별 기여 방식은 이 테이블에서만 결정
var strategies = map[contracts.Factor]Strategy{
	contracts.FactorDebtToEquity: Inverted,
	contracts.FactorRSI:          Bucketed,
}

// StrategyFor returns the contribution strategy of f (Linear unless listed)
func StrategyFor(f contracts.Factor) Strategy {
	if s, ok := strategies[f]; ok {
		return s
	}
	return Linear
}

// String implements fmt.Stringer
func (s Strategy) String() string {
	switch s {
	case Linear:
		return "linear"
	case Inverted:
		return "inverted"
	case Bucketed:
		return "bucketed"
	default:
		return "unknown"
	}
}

// Contribution applies the strategy. Missing cells contribute 0.
func (s Strategy) Contribution(v contracts.FactorValue, weight float64) float64 {
	if !v.Valid {
		return 0
	}

	switch s {
	case Inverted:
		return -(v.Value * weight)
	case Bucketed:
		return RSIBucket(v.Value) * weight
	default:
		return v.Value * weight
	}
}

// RSIBucket maps RSI to +1 (oversold), −1 (overbought) or 0
func RSIBucket(v float64) float64 {
	switch {
	case v < OversoldBelow:
		return 1
	case v > OverboughtAbove:
		return -1
	default:
		return 0
	}
}
