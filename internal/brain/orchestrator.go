package brain

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/wonny/eventreport/internal/contracts"
	"github.com/wonny/eventreport/internal/metrics"
	"github.com/wonny/eventreport/internal/report"
	"github.com/wonny/eventreport/internal/s0_data/quality"
	"github.com/wonny/eventreport/internal/scoring"
	"github.com/wonny/eventreport/internal/strategyconfig"
	"github.com/wonny/eventreport/pkg/logger"
)

// Orchestrator runs load → score → fetch → metrics → document for one request
// ⭐ SSOT: 파이프라인 조율은 여기서만
// 생성 후 불변: 요청 간 공유 상태 없음 (동시 요청 안전)
type Orchestrator struct {
	strategy   *strategyconfig.Config
	configHash string

	instruments contracts.InstrumentSource
	history     contracts.HistoryFetcher

	scorer      *scoring.Scorer
	engine      *metrics.Engine
	qualityGate *quality.QualityGate

	logger *logger.Logger
}

// Request is one report generation request
type Request struct {
	MainTopic     string
	IndustryTopic string
	Now           time.Time // 가격 이력 기간의 끝 (비어 있으면 현재 시각)
}

// Result holds everything produced by a run
type Result struct {
	Selection       *contracts.RankedSelection
	Quality         *quality.Snapshot
	History         *contracts.PriceHistory
	Batch           *contracts.MetricsBatch
	Document        *report.Document
	CompletedStages []contracts.Stage
	Duration        time.Duration
}

// NewOrchestrator validates the strategy and wires the pipeline.
// 가중치 모델 검증 실패 시 ConfigurationError (데이터 로딩 전)
func NewOrchestrator(
	strategy *strategyconfig.Config,
	instruments contracts.InstrumentSource,
	history contracts.HistoryFetcher,
	log *logger.Logger,
) (*Orchestrator, error) {
	if strategy == nil {
		strategy = strategyconfig.Default()
	}
	if err := strategyconfig.Validate(strategy); err != nil {
		return nil, fmt.Errorf("strategy config: %w", err)
	}

	hash, err := strategyconfig.Hash(strategy)
	if err != nil {
		return nil, fmt.Errorf("strategy hash: %w", err)
	}

	scorer, err := scoring.NewScorer(
		strategy.Scoring.Weights.Model(),
		scoring.Options{UniverseSize: strategy.Selection.UniverseSize},
		log.Module("scoring"),
	)
	if err != nil {
		return nil, err
	}

	engine := metrics.NewEngine(
		metrics.Options{TradingDays: strategy.Metrics.TradingDays},
		log.Module("metrics"),
	)

	for _, w := range strategyconfig.Warn(strategy) {
		log.WithFields(map[string]interface{}{
			"code":    w.Code,
			"message": w.Message,
		}).Warn("Strategy config warning")
	}

	return &Orchestrator{
		strategy:    strategy,
		configHash:  hash,
		instruments: instruments,
		history:     history,
		scorer:      scorer,
		engine:      engine,
		qualityGate: quality.NewQualityGate(quality.DefaultConfig()),
		logger:      log.Module("brain"),
	}, nil
}

// ConfigHash returns the hash of the strategy in use
func (o *Orchestrator) ConfigHash() string {
	return o.configHash
}

// Strategy returns the strategy in use
func (o *Orchestrator) Strategy() *strategyconfig.Config {
	return o.strategy
}

// Validate checks that both event topics are present
func (r Request) Validate() error {
	if strings.TrimSpace(r.MainTopic) == "" {
		return fmt.Errorf("%w: main topic", contracts.ErrMissingTopic)
	}
	if strings.TrimSpace(r.IndustryTopic) == "" {
		return fmt.Errorf("%w: industry topic", contracts.ErrMissingTopic)
	}
	return nil
}

// Rank loads the instrument table and scores it (no topics, no prices)
func (o *Orchestrator) Rank(ctx context.Context) (*contracts.RankedSelection, *quality.Snapshot, error) {
	records, err := o.instruments.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load instruments: %w", err)
	}

	snapshot := o.qualityGate.Check(records, o.strategy.Scoring.Weights.Model())
	if !snapshot.Passed {
		o.logger.WithFields(map[string]interface{}{
			"quality_score": snapshot.QualityScore,
			"missing":       snapshot.Missing(),
		}).Warn("Instrument table below quality threshold")
	}

	selection, err := o.scorer.Score(ctx, records)
	if err != nil {
		return nil, snapshot, fmt.Errorf("score: %w", err)
	}
	return selection, snapshot, nil
}

// Run executes the pipeline and builds the report document.
// 가격 이력 실패는 치명적: 문서를 만들지 않음
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	startTime := time.Now()
	result := &Result{CompletedStages: make([]contracts.Stage, 0, len(contracts.AllStages()))}

	if err := req.Validate(); err != nil {
		return result, err
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	o.logger.WithFields(map[string]interface{}{
		"main_topic":     req.MainTopic,
		"industry_topic": req.IndustryTopic,
		"strategy_id":    o.strategy.Meta.StrategyID,
		"config_hash":    o.configHash,
	}).Info("Starting report run")

	// Load + Quality + Score
	selection, snapshot, err := o.Rank(ctx)
	result.Quality = snapshot
	if snapshot != nil {
		result.CompletedStages = append(result.CompletedStages, contracts.StageLoad, contracts.StageQuality)
	}
	if err != nil {
		if snapshot == nil {
			return result, o.fail(contracts.StageLoad, err)
		}
		return result, o.fail(contracts.StageScore, err)
	}
	result.Selection = selection
	result.CompletedStages = append(result.CompletedStages, contracts.StageScore)

	// History (상위 K + 벤치마크)
	symbols := selection.MetricsSubset(o.strategy.Selection.MetricsSize)
	window := contracts.TrailingYear(now, o.strategy.Metrics.LookbackYears)
	benchmark := o.strategy.Metrics.Benchmark

	history, err := o.history.Fetch(ctx, symbols, benchmark, window)
	if err != nil {
		return result, o.fail(contracts.StageHistory, fmt.Errorf("price history: %w", err))
	}
	result.History = history
	result.CompletedStages = append(result.CompletedStages, contracts.StageHistory)

	// Metrics
	benchSeries, ok := history.BenchmarkSeries()
	if !ok {
		return result, o.fail(contracts.StageMetrics, fmt.Errorf("price history: %w: benchmark %s", contracts.ErrNoPriceData, benchmark))
	}
	batch, err := o.engine.Compute(history.Series, benchSeries, symbols)
	if err != nil {
		return result, o.fail(contracts.StageMetrics, fmt.Errorf("metrics: %w", err))
	}
	result.Batch = batch
	result.CompletedStages = append(result.CompletedStages, contracts.StageMetrics)

	// Document
	doc := &report.Document{
		Title:         o.strategy.Report.Title,
		MainTopic:     strings.TrimSpace(req.MainTopic),
		IndustryTopic: strings.TrimSpace(req.IndustryTopic),
		Analyst:       o.strategy.Report.Analyst,
		GeneratedAt:   now,
		Benchmark:     benchmark,
		Window:        window,
		StrategyID:    o.strategy.Meta.StrategyID,
		ConfigHash:    o.configHash,
		UniverseSize:  len(selection.Universe),
		TopRanked:     selection.Top(o.strategy.Selection.MetricsSize),
		Quality:       snapshot,
	}
	doc.AttachBatch(batch)
	result.Document = doc
	result.CompletedStages = append(result.CompletedStages, contracts.StageDocument)

	result.Duration = time.Since(startTime)
	o.logger.WithFields(map[string]interface{}{
		"universe":   len(selection.Universe),
		"metrics":    len(batch.Records),
		"skipped":    len(batch.Failures),
		"degenerate": len(batch.Degenerate),
		"duration":   result.Duration.Seconds(),
	}).Info("Report run completed")

	return result, nil
}

// fail logs the failed stage and returns err unchanged
func (o *Orchestrator) fail(stage contracts.Stage, err error) error {
	o.logger.WithStage(stage).WithError(err).Error("Report run failed")
	return err
}

// Generate runs the pipeline and renders the document to w
func (o *Orchestrator) Generate(ctx context.Context, req Request, w io.Writer, renderer report.Renderer) (*Result, error) {
	result, err := o.Run(ctx, req)
	if err != nil {
		return result, err
	}
	if err := renderer.Render(w, result.Document); err != nil {
		return result, fmt.Errorf("render report: %w", err)
	}
	return result, nil
}
