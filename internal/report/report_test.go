package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/eventreport/internal/contracts"
	"github.com/wonny/eventreport/internal/s0_data/quality"
)

func sampleDocument() *Document {
	doc := &Document{
		Title:         "Economic Event Analysis Report",
		MainTopic:     "RBI rate cut",
		IndustryTopic: "Banking liquidity",
		Analyst:       "Harika Enjamuri",
		GeneratedAt:   time.Date(2024, 6, 28, 18, 0, 0, 0, time.UTC),
		Benchmark:     "^NSEI",
		Window: contracts.DateRange{
			From: time.Date(2023, 6, 28, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC),
		},
		StrategyID:   "event_report_v1",
		ConfigHash:   "0123456789abcdef0123",
		UniverseSize: 100,
		TopRanked: []contracts.RankedInstrument{
			{InstrumentRecord: contracts.InstrumentRecord{Symbol: "TCS.NS", TotalScore: 12.5}, Rank: 1},
			{InstrumentRecord: contracts.InstrumentRecord{Symbol: "FLAT.NS", TotalScore: 8.25}, Rank: 2},
			{InstrumentRecord: contracts.InstrumentRecord{Symbol: "NEW.NS", TotalScore: 3}, Rank: 3},
		},
		Quality: &quality.Snapshot{TotalInstruments: 3, QualityScore: 0.9, Passed: true},
	}

	doc.AttachBatch(&contracts.MetricsBatch{
		Records: []contracts.MetricRecord{
			{
				Symbol:               "TCS.NS",
				TotalValue:           3790.25,
				Correlation:          contracts.Float(0.62),
				AnnualizedAlpha:      0.1234,
				AnnualizedVolatility: 0.215,
				SharpeRatio:          contracts.Float(1.1),
				TreynorRatio:         contracts.Float(0.002),
				SortinoRatio:         contracts.Float(1.8),
				MaximumDrawdown:      0.18,
				RSquared:             contracts.Float(0.3844),
				DownsideDeviation:    0.12,
				TrackingError:        0.15,
			},
			{
				Symbol:       "FLAT.NS",
				TotalValue:   100,
				Correlation:  contracts.Null(),
				SharpeRatio:  contracts.Null(),
				TreynorRatio: contracts.Null(),
				SortinoRatio: contracts.Null(),
				RSquared:     contracts.Null(),
			},
		},
		Failures: []error{
			&contracts.InsufficientDataError{Symbol: "NEW.NS", Observations: 1, Reason: "needs at least 2 observations"},
		},
		Degenerate: []error{
			&contracts.DegenerateMetricError{Symbol: "FLAT.NS", Metric: "sharpe_ratio"},
		},
	})
	return doc
}

func TestNewRenderer(t *testing.T) {
	tests := []struct {
		format      string
		contentType string
		wantErr     bool
	}{
		{"pdf", "application/pdf", false},
		{"PDF", "application/pdf", false},
		{"text", "text/plain; charset=utf-8", false},
		{"txt", "text/plain; charset=utf-8", false},
		{"json", "application/json", false},
		{"html", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			r, err := NewRenderer(tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.contentType, r.ContentType())
		})
	}
}

func TestAttachBatch(t *testing.T) {
	doc := sampleDocument()

	require.Len(t, doc.Metrics, 2)
	assert.Equal(t, []SkippedInstrument{
		{Symbol: "NEW.NS", Observations: 1, Reason: "needs at least 2 observations"},
	}, doc.Skipped)
	assert.Equal(t, []DegenerateField{{Symbol: "FLAT.NS", Metric: "sharpe_ratio"}}, doc.Degenerate)

	doc.AttachBatch(&contracts.MetricsBatch{Failures: []error{errors.New("other")}})
	assert.Empty(t, doc.Metrics)
	assert.Equal(t, []SkippedInstrument{{Reason: "other"}}, doc.Skipped)
	assert.Empty(t, doc.Degenerate)
}

func TestMetricsRow(t *testing.T) {
	doc := sampleDocument()

	row := MetricsRow(doc.Metrics[0])
	require.Len(t, row, len(MetricsHeader))
	assert.Equal(t, "TCS.NS", row[0])
	assert.Equal(t, "3790.25", row[1])
	assert.Equal(t, "0.6200", row[2])
	assert.Equal(t, "12.34", row[3], "alpha shown as percent")
	assert.Equal(t, "21.50", row[4], "volatility shown as percent")
	assert.Equal(t, "0.1800", row[8], "drawdown stays a fraction")
	assert.Equal(t, "15.00", row[11], "tracking error shown as percent")

	flat := MetricsRow(doc.Metrics[1])
	assert.Equal(t, "N/A", flat[2])
	assert.Equal(t, "N/A", flat[5])
	assert.Equal(t, "N/A", flat[6])
	assert.Equal(t, "N/A", flat[7])
	assert.Equal(t, "N/A", flat[9])
}

func TestTextRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextRenderer().Render(&buf, sampleDocument()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Economic Event Analysis Report\n"))
	assert.Contains(t, out, "Main Event: RBI rate cut")
	assert.Contains(t, out, "Industry Event: Banking liquidity")
	assert.Contains(t, out, "Prepared By SEBI Registered Research Analyst: Harika Enjamuri")
	assert.Contains(t, out, HeadingExecutiveSummary)
	assert.Contains(t, out, HeadingKeyFindings)
	assert.Contains(t, out, HeadingImplications)
	assert.Contains(t, out, "Top 3 Stocks Metrics")
	assert.Contains(t, out, "top 100 stocks")
	assert.Contains(t, out, "TCS.NS")
	assert.Contains(t, out, "N/A")
	assert.Contains(t, out, "Skipped NEW.NS: needs at least 2 observations (1 observations)")
	assert.Contains(t, out, "FLAT.NS: sharpe_ratio undefined")
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

func TestTextRenderer_WriteError(t *testing.T) {
	err := NewTextRenderer().Render(failingWriter{}, sampleDocument())
	assert.ErrorContains(t, err, "disk full")
}

// tableFailWriter accepts prose and fails once the ranking table is flushed
type tableFailWriter struct {
	buf bytes.Buffer
}

func (w *tableFailWriter) Write(p []byte) (int, error) {
	if bytes.Contains(p, []byte("Total Score")) {
		return 0, errors.New("pipe closed")
	}
	return w.buf.Write(p)
}

func TestTextRenderer_TableFlushError(t *testing.T) {
	doc := sampleDocument()
	w := &tableFailWriter{}
	err := NewTextRenderer().Render(w, doc)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "write ranking table")
	assert.Contains(t, err.Error(), "pipe closed")
	assert.Contains(t, w.buf.String(), HeadingRanking)
	assert.NotContains(t, w.buf.String(), fmt.Sprintf(HeadingMetrics, len(doc.TopRanked)), "rendering stops at the failed table")
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONRenderer().Render(&buf, sampleDocument()))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "RBI rate cut", decoded["main_topic"])
	assert.Equal(t, "^NSEI", decoded["benchmark"])

	metrics := decoded["metrics"].([]interface{})
	require.Len(t, metrics, 2)
	flat := metrics[1].(map[string]interface{})
	assert.Nil(t, flat["sharpe_ratio"], "undefined ratio encodes as null")
	assert.Nil(t, flat["correlation"])

	// PDF/텍스트와 같은 단위: alpha, volatility, tracking error ×100, drawdown은 소수
	tcs := metrics[0].(map[string]interface{})
	assert.InDelta(t, 12.34, tcs["annualized_alpha"], 1e-9)
	assert.InDelta(t, 21.5, tcs["annualized_volatility"], 1e-9)
	assert.InDelta(t, 15.0, tcs["tracking_error"], 1e-9)
	assert.InDelta(t, 0.18, tcs["maximum_drawdown"], 1e-12)
	assert.InDelta(t, 0.12, tcs["downside_deviation"], 1e-12)

	// 문서 자체는 소수 단위 유지
	doc := sampleDocument()
	require.NoError(t, NewJSONRenderer().Render(&bytes.Buffer{}, doc))
	assert.InDelta(t, 0.1234, doc.Metrics[0].AnnualizedAlpha, 1e-12)
}

func TestPDFRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPDFRenderer().Render(&buf, sampleDocument()))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 1000)
}

func TestPDFRenderer_NonLatinTopic(t *testing.T) {
	doc := sampleDocument()
	doc.MainTopic = "Budget 2024 – ₹ outlook"

	var buf bytes.Buffer
	require.NoError(t, NewPDFRenderer().Render(&buf, doc))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestPDFRenderer_EmptyMetrics(t *testing.T) {
	doc := sampleDocument()
	doc.AttachBatch(&contracts.MetricsBatch{})
	doc.Quality = nil

	var buf bytes.Buffer
	require.NoError(t, NewPDFRenderer().Render(&buf, doc))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
