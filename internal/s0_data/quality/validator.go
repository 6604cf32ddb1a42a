package quality

import (
	"math"

	"github.com/wonny/eventreport/internal/contracts"
)

// Snapshot describes how complete the instrument table is
// ⭐ SSOT: 입력 테이블 품질 정보 (Scorer 전 단계)
type Snapshot struct {
	TotalInstruments int                          `json:"total_instruments"`
	Coverage         map[contracts.Factor]float64 `json:"coverage"`      // 팩터별 유효 셀 비율
	QualityScore     float64                      `json:"quality_score"` // 0.0 ~ 1.0
	Passed           bool                         `json:"passed"`
}

// Config holds quality gate thresholds
type Config struct {
	MinQualityScore float64 `yaml:"min_quality_score"` // 0.8
}

// DefaultConfig returns the default thresholds
func DefaultConfig() Config {
	return Config{MinQualityScore: 0.8}
}

// QualityGate measures factor coverage of the instrument table.
// 품질 미달은 경고만 (결측 셀은 점수 기여 0으로 처리되므로 치명적이지 않음)
type QualityGate struct {
	config Config
}

// NewQualityGate creates a new QualityGate instance
func NewQualityGate(config Config) *QualityGate {
	return &QualityGate{config: config}
}

// Check computes per-factor coverage and a score weighted by |weight|
func (g *QualityGate) Check(records []contracts.InstrumentRecord, weights contracts.WeightModel) *Snapshot {
	snapshot := &Snapshot{
		TotalInstruments: len(records),
		Coverage:         make(map[contracts.Factor]float64),
	}

	for _, f := range contracts.AllFactors() {
		snapshot.Coverage[f] = coverage(records, f)
	}

	snapshot.QualityScore = g.calculateScore(snapshot.Coverage, weights)
	snapshot.Passed = len(records) > 0 && snapshot.QualityScore >= g.config.MinQualityScore

	return snapshot
}

// Missing returns factors whose coverage is below 1, in canonical order
func (s *Snapshot) Missing() []contracts.Factor {
	var out []contracts.Factor
	for _, f := range contracts.AllFactors() {
		if s.Coverage[f] < 1 {
			out = append(out, f)
		}
	}
	return out
}

func coverage(records []contracts.InstrumentRecord, f contracts.Factor) float64 {
	if len(records) == 0 {
		return 0
	}
	valid := 0
	for _, r := range records {
		if r.Factor(f).Valid {
			valid++
		}
	}
	return float64(valid) / float64(len(records))
}

// calculateScore weights coverage by the absolute factor weight.
// 가중치 0인 팩터는 점수에 영향 없음. 전부 0이면 단순 평균
func (g *QualityGate) calculateScore(cov map[contracts.Factor]float64, weights contracts.WeightModel) float64 {
	total := 0.0
	score := 0.0
	for _, f := range contracts.AllFactors() {
		w := math.Abs(weights[f])
		total += w
		score += cov[f] * w
	}

	if total == 0 {
		sum := 0.0
		for _, f := range contracts.AllFactors() {
			sum += cov[f]
		}
		return sum / float64(len(contracts.AllFactors()))
	}

	return score / total
}
