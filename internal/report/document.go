package report

import (
	"errors"
	"time"

	"github.com/wonny/eventreport/internal/contracts"
	"github.com/wonny/eventreport/internal/s0_data/quality"
)

// Document is everything a renderer needs for one report
// ⭐ SSOT: Orchestrator → Renderer 전달 구조
type Document struct {
	Title         string              `json:"title"`
	MainTopic     string              `json:"main_topic"`
	IndustryTopic string              `json:"industry_topic"`
	Analyst       string              `json:"analyst"`
	GeneratedAt   time.Time           `json:"generated_at"`
	Benchmark     string              `json:"benchmark"`
	Window        contracts.DateRange `json:"window"`

	// 재현성: 사용한 전략 설정
	StrategyID string `json:"strategy_id"`
	ConfigHash string `json:"config_hash"`

	UniverseSize int                          `json:"universe_size"` // 상위 N (점수 기준)
	TopRanked    []contracts.RankedInstrument `json:"top_ranked"`    // 지표 대상 상위 K
	Metrics      []contracts.MetricRecord     `json:"metrics"`       // 소수 단위 (렌더러가 Display()로 변환)
	Skipped      []SkippedInstrument          `json:"skipped,omitempty"`
	Degenerate   []DegenerateField            `json:"degenerate,omitempty"`
	Quality      *quality.Snapshot            `json:"quality,omitempty"`
}

// SkippedInstrument is a top-ranked instrument left out of the metrics table
type SkippedInstrument struct {
	Symbol       string `json:"symbol"`
	Observations int    `json:"observations"`
	Reason       string `json:"reason"`
}

// DegenerateField is one metric reported as N/A
type DegenerateField struct {
	Symbol string `json:"symbol"`
	Metric string `json:"metric"`
}

// AttachBatch copies the metrics batch outcome into the document
func (d *Document) AttachBatch(batch *contracts.MetricsBatch) {
	d.Metrics = batch.Records
	d.Skipped = d.Skipped[:0]
	d.Degenerate = d.Degenerate[:0]

	for _, err := range batch.Failures {
		var ide *contracts.InsufficientDataError
		if errors.As(err, &ide) {
			d.Skipped = append(d.Skipped, SkippedInstrument{
				Symbol:       ide.Symbol,
				Observations: ide.Observations,
				Reason:       ide.Reason,
			})
			continue
		}
		d.Skipped = append(d.Skipped, SkippedInstrument{Reason: err.Error()})
	}

	for _, err := range batch.Degenerate {
		var dme *contracts.DegenerateMetricError
		if errors.As(err, &dme) {
			d.Degenerate = append(d.Degenerate, DegenerateField{Symbol: dme.Symbol, Metric: dme.Metric})
		}
	}
}
