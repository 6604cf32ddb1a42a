package strategyconfig

import (
	"fmt"
	"strings"

	"github.com/wonny/eventreport/internal/scoring"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단). 가중치 누락은 *contracts.ConfigurationError
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	// === Scoring ===
	if err := scoring.ValidateWeights(cfg.Scoring.Weights.Model()); err != nil {
		return fmt.Errorf("scoring.weights: %w", err)
	}

	// === Selection ===
	if cfg.Selection.UniverseSize <= 0 {
		return ValidationError{"selection.universe_size", "must be > 0"}
	}
	if cfg.Selection.MetricsSize <= 0 {
		return ValidationError{"selection.metrics_size", "must be > 0"}
	}
	if cfg.Selection.MetricsSize > cfg.Selection.UniverseSize {
		return ValidationError{"selection.metrics_size", "must be <= universe_size"}
	}

	// === Metrics ===
	if strings.TrimSpace(cfg.Metrics.Benchmark) == "" {
		return ValidationError{"metrics.benchmark", "required"}
	}
	if cfg.Metrics.LookbackYears <= 0 {
		return ValidationError{"metrics.lookback_years", "must be > 0"}
	}
	if cfg.Metrics.TradingDays <= 0 {
		return ValidationError{"metrics.trading_days", "must be > 0"}
	}

	// === Report ===
	if cfg.Report.Title == "" {
		return ValidationError{"report.title", "required"}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	// 모든 가중치가 0이면 점수가 전부 0 → 입력 순서가 곧 랭킹
	allZero := true
	for _, w := range cfg.Scoring.Weights.Model() {
		if w != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		warnings = append(warnings, Warning{
			Code:    "ALL_WEIGHTS_ZERO",
			Message: "every weight is 0: ranking equals input order",
		})
	}

	// 지표 대상이 많으면 가격 API 호출이 그만큼 늘어남 (요청 하나가 전부 순차 조회)
	if cfg.Selection.MetricsSize > 50 {
		warnings = append(warnings, Warning{
			Code:    "LARGE_METRICS_SET",
			Message: fmt.Sprintf("metrics_size=%d: one report fetches %d price series sequentially", cfg.Selection.MetricsSize, cfg.Selection.MetricsSize+1),
		})
	}

	if cfg.Metrics.TradingDays != 252 {
		warnings = append(warnings, Warning{
			Code:    "NONSTANDARD_ANNUALIZATION",
			Message: fmt.Sprintf("trading_days=%d (usual: 252)", cfg.Metrics.TradingDays),
		})
	}

	return warnings
}
