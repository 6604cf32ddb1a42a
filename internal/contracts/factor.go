package contracts

import (
	"encoding/json"
	"math"
)

// Factor names one numeric column of the instrument table.
// ⭐ SSOT: 팩터 이름(대소문자 구분)은 여기서만 정의
type Factor string

const (
	FactorVolatility           Factor = "Volatility"
	FactorBeta                 Factor = "Beta"
	FactorCAGR                 Factor = "CAGR"
	FactorDebtToEquity         Factor = "Debt_to_Equity_Ratio"
	FactorEPS                  Factor = "EPS"
	FactorDividendYield        Factor = "Dividend_Yield"
	FactorRSI                  Factor = "RSI"
	FactorMACD                 Factor = "MACD"
	FactorPercentageDifference Factor = "Percentage_Difference"
	FactorEventCorrelation     Factor = "Correlation_with_event"
)

// AllFactors returns the ten factors in canonical column order
func AllFactors() []Factor {
	return []Factor{
		FactorVolatility,
		FactorBeta,
		FactorCAGR,
		FactorDebtToEquity,
		FactorEPS,
		FactorDividendYield,
		FactorRSI,
		FactorMACD,
		FactorPercentageDifference,
		FactorEventCorrelation,
	}
}

// ParseFactor maps an exact (case-sensitive) column name to a Factor
func ParseFactor(name string) (Factor, bool) {
	for _, f := range AllFactors() {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}

// FactorValue is one coerced table cell. Valid=false means the cell was
// blank or non-numeric and contributes nothing to the score.
type FactorValue struct {
	Value float64
	Valid bool
}

// Present wraps a numeric cell; NaN/Inf are treated as missing
func Present(v float64) FactorValue {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return FactorValue{}
	}
	return FactorValue{Value: v, Valid: true}
}

// Missing is the value of a blank or non-numeric cell
func Missing() FactorValue {
	return FactorValue{}
}

// MarshalJSON encodes a missing cell as null
func (v FactorValue) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Value)
}

// UnmarshalJSON accepts a number or null
func (v *FactorValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = FactorValue{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Present(f)
	return nil
}
