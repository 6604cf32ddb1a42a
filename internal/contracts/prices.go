package contracts

import "time"

// PricePoint is one daily adjusted close
type PricePoint struct {
	Date     time.Time `json:"date"`
	AdjClose float64   `json:"adj_close"`
}

// PriceSeries is a date-ascending sequence of adjusted closes
type PriceSeries struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

// Len returns the number of observations
func (s PriceSeries) Len() int {
	return len(s.Points)
}

// Closes returns the adjusted closes in order
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.AdjClose
	}
	return out
}

// DateRange is an inclusive window of calendar dates
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// TrailingYear returns the window of `years` years ending at now
func TrailingYear(now time.Time, years int) DateRange {
	if years <= 0 {
		years = 1
	}
	return DateRange{
		From: now.AddDate(-years, 0, 0),
		To:   now,
	}
}

// Contains reports whether t falls inside the window (day granularity)
func (r DateRange) Contains(t time.Time) bool {
	day := t.UTC().Truncate(24 * time.Hour)
	from := r.From.UTC().Truncate(24 * time.Hour)
	to := r.To.UTC().Truncate(24 * time.Hour)
	return !day.Before(from) && !day.After(to)
}

// PriceHistory is the fetch collaborator output: every series aligned on
// the same dates, benchmark included
type PriceHistory struct {
	Window    DateRange              `json:"window"`
	Benchmark string                 `json:"benchmark"`
	Series    map[string]PriceSeries `json:"series"`
}

// BenchmarkSeries returns the benchmark column
func (h *PriceHistory) BenchmarkSeries() (PriceSeries, bool) {
	s, ok := h.Series[h.Benchmark]
	return s, ok
}
