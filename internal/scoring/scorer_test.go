package scoring

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/eventreport/internal/contracts"
	"github.com/wonny/eventreport/pkg/logger"
)

func zeroWeights() contracts.WeightModel {
	w := contracts.WeightModel{}
	for _, f := range contracts.AllFactors() {
		w[f] = 0
	}
	return w
}

func record(symbol string, cells map[contracts.Factor]float64) contracts.InstrumentRecord {
	factors := make(map[contracts.Factor]contracts.FactorValue, len(cells))
	for f, v := range cells {
		factors[f] = contracts.Present(v)
	}
	return contracts.InstrumentRecord{Symbol: symbol, Factors: factors}
}

func newScorer(t *testing.T, w contracts.WeightModel) *Scorer {
	t.Helper()
	s, err := NewScorer(w, Options{}, logger.NewNop())
	require.NoError(t, err)
	return s
}

func symbols(ranked []contracts.RankedInstrument) []string {
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.Symbol
	}
	return out
}

func TestScore_EndToEndRanking(t *testing.T) {
	w := zeroWeights()
	w[contracts.FactorCAGR] = 0.1
	w[contracts.FactorPercentageDifference] = 0.8

	records := []contracts.InstrumentRecord{
		record("row1", map[contracts.Factor]float64{contracts.FactorPercentageDifference: 5}),
		record("row2", map[contracts.Factor]float64{contracts.FactorPercentageDifference: 1}),
		record("row3", map[contracts.Factor]float64{contracts.FactorPercentageDifference: 9}),
	}

	sel, err := newScorer(t, w).Score(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, []string{"row3", "row1", "row2"}, symbols(sel.All))
	assert.Equal(t, []int{1, 2, 3}, []int{sel.All[0].Rank, sel.All[1].Rank, sel.All[2].Rank})
	assert.InDelta(t, 7.2, sel.All[0].TotalScore, 1e-12)
	assert.Len(t, sel.Universe, 3)
}

func TestScore_Deterministic(t *testing.T) {
	records := []contracts.InstrumentRecord{
		record("A", map[contracts.Factor]float64{contracts.FactorCAGR: 0.3, contracts.FactorRSI: 25, contracts.FactorDebtToEquity: 1.2}),
		record("B", map[contracts.Factor]float64{contracts.FactorPercentageDifference: 2.5, contracts.FactorVolatility: 0.4}),
		record("C", map[contracts.Factor]float64{contracts.FactorDividendYield: 3, contracts.FactorRSI: 80}),
	}

	s := newScorer(t, DefaultWeights())

	first, err := s.Score(context.Background(), records)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := s.Score(context.Background(), records)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestScore_StableOnTies(t *testing.T) {
	w := zeroWeights()
	w[contracts.FactorCAGR] = 1

	var records []contracts.InstrumentRecord
	for i := 0; i < 10; i++ {
		records = append(records, record(fmt.Sprintf("T%d", i), map[contracts.Factor]float64{contracts.FactorCAGR: 1}))
	}
	records = append(records, record("TOP", map[contracts.Factor]float64{contracts.FactorCAGR: 2}))

	sel, err := newScorer(t, w).Score(context.Background(), records)
	require.NoError(t, err)

	want := []string{"TOP"}
	for i := 0; i < 10; i++ {
		want = append(want, fmt.Sprintf("T%d", i))
	}
	assert.Equal(t, want, symbols(sel.All))
}

func TestScore_NonFiniteScoresRankLast(t *testing.T) {
	w := zeroWeights()
	w[contracts.FactorCAGR] = 1
	w[contracts.FactorPercentageDifference] = 2
	w[contracts.FactorDebtToEquity] = 2

	huge := math.MaxFloat64
	pd, de := contracts.FactorPercentageDifference, contracts.FactorDebtToEquity

	// 유한한 셀도 가중 합산에서 overflow 가능
	records := []contracts.InstrumentRecord{
		record("POSINF", map[contracts.Factor]float64{pd: huge}),
		record("HIGH", map[contracts.Factor]float64{pd: 10}),
		record("NAN", map[contracts.Factor]float64{pd: huge, de: huge}),
		record("HUGE", map[contracts.Factor]float64{contracts.FactorCAGR: huge}),
		record("LOW", map[contracts.Factor]float64{pd: -3}),
		record("NEGINF", map[contracts.Factor]float64{de: huge}),
	}

	s := newScorer(t, w)
	first, err := s.Score(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, []string{"HUGE", "HIGH", "LOW", "POSINF", "NAN", "NEGINF"}, symbols(first.All))

	// 비유한 점수끼리는 입력 순서, 반복 실행해도 동일
	for i := 0; i < 5; i++ {
		again, err := s.Score(context.Background(), records)
		require.NoError(t, err)
		assert.Equal(t, symbols(first.All), symbols(again.All))
	}
	assert.True(t, math.IsInf(first.All[3].TotalScore, 1), "score value is kept")
	assert.True(t, math.IsNaN(first.All[4].TotalScore))
	assert.True(t, math.IsInf(first.All[5].TotalScore, -1))
}

func TestScore_DebtToEquitySign(t *testing.T) {
	w := zeroWeights()
	w[contracts.FactorDebtToEquity] = 0.5
	s := newScorer(t, w)

	low := s.TotalScore(record("X", map[contracts.Factor]float64{contracts.FactorDebtToEquity: 1}))
	high := s.TotalScore(record("X", map[contracts.Factor]float64{contracts.FactorDebtToEquity: 2}))

	assert.Less(t, high, low, "higher leverage must lower the score for a positive weight")
	assert.Equal(t, -0.5, low)
}

func TestScore_RSIBucketing(t *testing.T) {
	tests := []struct {
		name   string
		rsi    float64
		weight float64
		want   float64
	}{
		{"oversold", 29, 0.4, 0.4},
		{"overbought", 71, 0.4, -0.4},
		{"neutral", 50, 0.4, 0},
		{"neutral any weight", 50, -7, 0},
		{"boundary 30 is neutral", 30, 1, 0},
		{"boundary 70 is neutral", 70, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := zeroWeights()
			w[contracts.FactorRSI] = tt.weight
			s := newScorer(t, w)

			got := s.TotalScore(record("R", map[contracts.Factor]float64{contracts.FactorRSI: tt.rsi}))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScore_MissingCellContributesZero(t *testing.T) {
	w := zeroWeights()
	w[contracts.FactorCAGR] = 1
	w[contracts.FactorDebtToEquity] = 1
	w[contracts.FactorRSI] = 1
	s := newScorer(t, w)

	rec := contracts.InstrumentRecord{
		Symbol: "M",
		Factors: map[contracts.Factor]contracts.FactorValue{
			contracts.FactorCAGR:         contracts.Missing(),
			contracts.FactorDebtToEquity: contracts.Missing(),
		},
	}

	assert.Equal(t, 0.0, s.TotalScore(rec))
}

func TestScore_DoesNotMutateInput(t *testing.T) {
	records := []contracts.InstrumentRecord{
		record("A", map[contracts.Factor]float64{contracts.FactorCAGR: 1}),
		record("B", map[contracts.Factor]float64{contracts.FactorCAGR: 5}),
	}

	_, err := newScorer(t, DefaultWeights()).Score(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, "A", records[0].Symbol)
	assert.Equal(t, 0.0, records[0].TotalScore)
	assert.Equal(t, 0.0, records[1].TotalScore)
}

func TestScore_UniverseSize(t *testing.T) {
	var records []contracts.InstrumentRecord
	for i := 0; i < 150; i++ {
		records = append(records, record(fmt.Sprintf("S%03d", i), map[contracts.Factor]float64{contracts.FactorCAGR: float64(i)}))
	}

	sel, err := newScorer(t, DefaultWeights()).Score(context.Background(), records)
	require.NoError(t, err)
	assert.Len(t, sel.All, 150)
	assert.Len(t, sel.Universe, DefaultUniverseSize)
	assert.Equal(t, "S149", sel.Universe[0].Symbol)

	small, err := NewScorer(DefaultWeights(), Options{UniverseSize: 5}, nil)
	require.NoError(t, err)
	sel, err = small.Score(context.Background(), records)
	require.NoError(t, err)
	assert.Len(t, sel.Universe, 5)
}

func TestScore_EmptyInput(t *testing.T) {
	_, err := newScorer(t, DefaultWeights()).Score(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrEmptyInput))
}

func TestScore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newScorer(t, DefaultWeights()).Score(ctx, []contracts.InstrumentRecord{record("A", nil)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewScorer_MissingWeight(t *testing.T) {
	w := DefaultWeights()
	delete(w, contracts.FactorMACD)

	s, err := NewScorer(w, Options{}, logger.NewNop())
	require.Error(t, err)
	assert.Nil(t, s)

	var cfgErr *contracts.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "MACD", cfgErr.Field)
	assert.True(t, errors.Is(err, contracts.ErrConfiguration))
}

func TestContributions(t *testing.T) {
	s := newScorer(t, DefaultWeights())
	rec := record("A", map[contracts.Factor]float64{
		contracts.FactorDebtToEquity:         2,
		contracts.FactorPercentageDifference: 10,
	})

	c := s.Contributions(rec)
	assert.Len(t, c, 10)
	assert.InDelta(t, 0.2, c[contracts.FactorDebtToEquity], 1e-12)
	assert.InDelta(t, 8.0, c[contracts.FactorPercentageDifference], 1e-12)
	assert.InDelta(t, 8.2, s.TotalScore(rec), 1e-12)
}
