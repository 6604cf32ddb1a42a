package jobs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/wonny/eventreport/internal/brain"
	"github.com/wonny/eventreport/internal/report"
	"github.com/wonny/eventreport/pkg/config"
	"github.com/wonny/eventreport/pkg/logger"
)

// ReportGenerator runs and renders one report (brain.Orchestrator)
type ReportGenerator interface {
	Generate(ctx context.Context, req brain.Request, w io.Writer, renderer report.Renderer) (*brain.Result, error)
}

// ReportJob regenerates the configured report to a file
// ⭐ SSOT: 정기 보고서 생성 스케줄은 이 Job에서만
type ReportJob struct {
	generator ReportGenerator
	renderer  report.Renderer
	config    config.ReportConfig
	logger    *logger.Logger
}

// NewReportJob creates a new report job; topics and output come from config
func NewReportJob(gen ReportGenerator, cfg config.ReportConfig, log *logger.Logger) (*ReportJob, error) {
	renderer, err := report.NewRenderer(cfg.Format)
	if err != nil {
		return nil, err
	}
	req := brain.Request{MainTopic: cfg.MainTopic, IndustryTopic: cfg.IndustryTopic}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("scheduled report: %w (set REPORT_MAIN_TOPIC and REPORT_INDUSTRY_TOPIC)", err)
	}
	if cfg.Output == "" {
		return nil, fmt.Errorf("scheduled report: REPORT_OUTPUT is required")
	}

	return &ReportJob{
		generator: gen,
		renderer:  renderer,
		config:    cfg,
		logger:    log,
	}, nil
}

// Name returns the job name
func (j *ReportJob) Name() string {
	return "event_report"
}

// Schedule returns the cron schedule (with seconds)
func (j *ReportJob) Schedule() string {
	return j.config.Schedule
}

// Run generates the report into a temp file and renames it over the output.
// 실패 시 기존 보고서는 그대로 유지
func (j *ReportJob) Run(ctx context.Context) error {
	j.logger.WithFields(map[string]interface{}{
		"main_topic":     j.config.MainTopic,
		"industry_topic": j.config.IndustryTopic,
		"output":         j.config.Output,
	}).Info("Starting scheduled report")

	dir := filepath.Dir(j.config.Output)
	tmp, err := os.CreateTemp(dir, ".report-*"+j.renderer.Extension())
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	req := brain.Request{
		MainTopic:     j.config.MainTopic,
		IndustryTopic: j.config.IndustryTopic,
	}
	result, err := j.generator.Generate(ctx, req, tmp, j.renderer)
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close temp file: %w", closeErr)
	}
	if err != nil {
		return err
	}

	if err := os.Rename(tmpName, j.config.Output); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"output":  j.config.Output,
		"metrics": len(result.Document.Metrics),
		"skipped": len(result.Document.Skipped),
	}).Info("Scheduled report written")

	return nil
}
