package contracts

import "encoding/json"

// InstrumentRecord is one row of the instrument table
// ⭐ SSOT: 입력 테이블 행 (Symbol + 10개 팩터 + 계산된 점수)
type InstrumentRecord struct {
	Symbol     string                 `json:"symbol"`
	Factors    map[Factor]FactorValue `json:"factors"`
	TotalScore float64                `json:"total_score"` // Scorer가 채움
}

// Factor returns the cell for f (missing when absent)
func (r InstrumentRecord) Factor(f Factor) FactorValue {
	if r.Factors == nil {
		return Missing()
	}
	return r.Factors[f]
}

// Clone returns a copy that shares no map with r
func (r InstrumentRecord) Clone() InstrumentRecord {
	out := InstrumentRecord{
		Symbol:     r.Symbol,
		TotalScore: r.TotalScore,
		Factors:    make(map[Factor]FactorValue, len(r.Factors)),
	}
	for k, v := range r.Factors {
		out.Factors[k] = v
	}
	return out
}

// WeightModel maps every factor to a signed weight
type WeightModel map[Factor]float64

// Clone copies the weight model
func (w WeightModel) Clone() WeightModel {
	out := make(WeightModel, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// RankedInstrument is a scored record with its 1-based rank
type RankedInstrument struct {
	InstrumentRecord
	Rank int `json:"rank"`
}

// MarshalJSON encodes a non-finite score as null
func (r InstrumentRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Symbol     string                 `json:"symbol"`
		Factors    map[Factor]FactorValue `json:"factors"`
		TotalScore NullFloat              `json:"total_score"`
	}{r.Symbol, r.Factors, Float(r.TotalScore)})
}

// MarshalJSON keeps the rank next to the null-safe record fields
func (r RankedInstrument) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Symbol     string                 `json:"symbol"`
		Factors    map[Factor]FactorValue `json:"factors"`
		TotalScore NullFloat              `json:"total_score"`
		Rank       int                    `json:"rank"`
	}{r.Symbol, r.Factors, Float(r.TotalScore), r.Rank})
}

// IsTopRanked checks if the instrument is in top N ranks
func (r *RankedInstrument) IsTopRanked(n int) bool {
	return r.Rank <= n && r.Rank > 0
}

// RankedSelection is the Scorer output
// ⭐ SSOT: Scorer → Metrics Engine / Renderer 전달
type RankedSelection struct {
	All      []RankedInstrument `json:"all"`      // 전체 정렬 결과
	Universe []RankedInstrument `json:"universe"` // 상위 N
}

// Top returns at most n instruments from the head of the universe
func (s *RankedSelection) Top(n int) []RankedInstrument {
	if n < 0 {
		n = 0
	}
	if n > len(s.Universe) {
		n = len(s.Universe)
	}
	return s.Universe[:n]
}

// MetricsSubset returns the symbols of the top k universe instruments
func (s *RankedSelection) MetricsSubset(k int) []string {
	top := s.Top(k)
	symbols := make([]string, len(top))
	for i, r := range top {
		symbols[i] = r.Symbol
	}
	return symbols
}
