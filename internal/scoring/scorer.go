package scoring

import (
	"context"
	"math"
	"sort"

	"github.com/wonny/eventreport/internal/contracts"
	"github.com/wonny/eventreport/pkg/logger"
)

// DefaultUniverseSize is N, the size of the ranked universe
const DefaultUniverseSize = 100

// Options configures the Scorer
type Options struct {
	UniverseSize int // 상위 N (기본: 100)
}

// Scorer ranks instruments by a weighted multi-factor score
// ⭐ SSOT: 점수 계산/랭킹 로직은 여기서만
type Scorer struct {
	weights contracts.WeightModel
	opts    Options
	logger  *logger.Logger
}

// NewScorer validates the weight model and creates a scorer.
// 가중치가 불완전하면 점수 계산 전에 ConfigurationError 반환
func NewScorer(weights contracts.WeightModel, opts Options, log *logger.Logger) (*Scorer, error) {
	if err := ValidateWeights(weights); err != nil {
		return nil, err
	}
	if opts.UniverseSize <= 0 {
		opts.UniverseSize = DefaultUniverseSize
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Scorer{
		weights: weights.Clone(),
		opts:    opts,
		logger:  log,
	}, nil
}

// Score computes TotalScore for every record, ranks them descending and
// selects the top-N universe. The input slice is never modified.
func (s *Scorer) Score(ctx context.Context, records []contracts.InstrumentRecord) (*contracts.RankedSelection, error) {
	if len(records) == 0 {
		return nil, &contracts.EmptyInputError{What: "instrument table has no rows"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ranked := make([]contracts.RankedInstrument, len(records))
	for i, rec := range records {
		scored := rec.Clone()
		scored.TotalScore = s.TotalScore(rec)
		ranked[i] = contracts.RankedInstrument{InstrumentRecord: scored}
	}

	nonFinite := make([]string, 0)
	for _, ri := range ranked {
		if !isFinite(ri.TotalScore) {
			nonFinite = append(nonFinite, ri.Symbol)
		}
	}
	if len(nonFinite) > 0 {
		s.logger.WithField("symbols", nonFinite).Warn("Non-finite total scores ranked last")
	}

	// Stable sort: 동점이면 입력 순서 유지
	sort.SliceStable(ranked, func(i, j int) bool {
		return rankKey(ranked[i].TotalScore) > rankKey(ranked[j].TotalScore)
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	n := s.opts.UniverseSize
	if n > len(ranked) {
		n = len(ranked)
	}

	s.logger.WithFields(map[string]interface{}{
		"total_instruments": len(ranked),
		"universe_size":     n,
		"top_score":         ranked[0].TotalScore,
		"top_symbol":        ranked[0].Symbol,
	}).Info("Scoring completed")

	return &contracts.RankedSelection{
		All:      ranked,
		Universe: ranked[:n],
	}, nil
}

// rankKey orders NaN and ±Inf below every finite score
func rankKey(v float64) float64 {
	if !isFinite(v) {
		return math.Inf(-1)
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// TotalScore sums the factor contributions of one record
func (s *Scorer) TotalScore(rec contracts.InstrumentRecord) float64 {
	total := 0.0
	for _, f := range contracts.AllFactors() {
		total += StrategyFor(f).Contribution(rec.Factor(f), s.weights[f])
	}
	return total
}

// Contributions returns the per-factor breakdown of one record's score
func (s *Scorer) Contributions(rec contracts.InstrumentRecord) map[contracts.Factor]float64 {
	out := make(map[contracts.Factor]float64, len(s.weights))
	for _, f := range contracts.AllFactors() {
		out[f] = StrategyFor(f).Contribution(rec.Factor(f), s.weights[f])
	}
	return out
}

// UniverseSize returns N
func (s *Scorer) UniverseSize() int {
	return s.opts.UniverseSize
}
