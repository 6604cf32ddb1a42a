package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/wonny/eventreport/internal/contracts"
)

// DefaultWeights returns the stock weight model
// Percentage_Difference (이벤트 전후 가격 변화) 중심
func DefaultWeights() contracts.WeightModel {
	return contracts.WeightModel{
		contracts.FactorVolatility:           0.1,
		contracts.FactorBeta:                 0.0,
		contracts.FactorCAGR:                 0.1,
		contracts.FactorDebtToEquity:         -0.1,
		contracts.FactorEPS:                  0.0,
		contracts.FactorDividendYield:        0.1,
		contracts.FactorRSI:                  0.0,
		contracts.FactorMACD:                 0.0,
		contracts.FactorPercentageDifference: 0.8,
		contracts.FactorEventCorrelation:     0.0,
	}
}

// ValidateWeights checks that every factor has a finite weight and that no
// unknown factor is present.
func ValidateWeights(weights contracts.WeightModel) error {
	if len(weights) == 0 {
		return &contracts.ConfigurationError{Field: "weights", Reason: "weight model is empty"}
	}

	for _, f := range contracts.AllFactors() {
		w, ok := weights[f]
		if !ok {
			return &contracts.ConfigurationError{
				Field:  string(f),
				Reason: "weight missing",
			}
		}
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return &contracts.ConfigurationError{
				Field:  string(f),
				Reason: fmt.Sprintf("weight must be finite, got %v", w),
			}
		}
	}

	// 알 수 없는 키는 오타일 가능성이 높으므로 거부
	var unknown []string
	for f := range weights {
		if _, ok := contracts.ParseFactor(string(f)); !ok {
			unknown = append(unknown, string(f))
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return &contracts.ConfigurationError{
			Field:  unknown[0],
			Reason: fmt.Sprintf("unknown factor(s) %v", unknown),
		}
	}

	return nil
}
