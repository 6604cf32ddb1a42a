package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/wonny/eventreport/internal/brain"
	"github.com/wonny/eventreport/internal/contracts"
	"github.com/wonny/eventreport/internal/report"
	"github.com/wonny/eventreport/pkg/logger"
)

// ReportRunner runs the report pipeline (brain.Orchestrator)
type ReportRunner interface {
	Run(ctx context.Context, req brain.Request) (*brain.Result, error)
}

// ReportHandler handles report generation endpoints
// ⭐ SSOT: 보고서 API 핸들러는 이 구조체에서만
type ReportHandler struct {
	runner        ReportRunner
	defaultFormat string
	logger        *logger.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(runner ReportRunner, defaultFormat string, log *logger.Logger) *ReportHandler {
	if defaultFormat == "" {
		defaultFormat = report.FormatPDF
	}
	return &ReportHandler{
		runner:        runner,
		defaultFormat: defaultFormat,
		logger:        log,
	}
}

// CreateReportRequest is the POST /api/reports body
type CreateReportRequest struct {
	MainTopic     string `json:"main_topic"`
	IndustryTopic string `json:"industry_topic"`
}

// Create generates a report
// POST /api/reports?format=pdf|text|json
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = h.defaultFormat
	}
	renderer, err := report.NewRenderer(format)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := brain.Request{
		MainTopic:     body.MainTopic,
		IndustryTopic: body.IndustryTopic,
		Now:           time.Now(),
	}
	// 렌더링 전에 검증 (원본 동작: 두 주제 모두 필수)
	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, "Please fill in both event topics.")
		return
	}

	result, err := h.runner.Run(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"status": status,
		}).Error("Report generation failed")
		respondError(w, status, err.Error())
		return
	}

	// 렌더링 실패 시 부분 응답이 나가지 않도록 버퍼에 먼저 씀
	var buf bytes.Buffer
	if err := renderer.Render(&buf, result.Document); err != nil {
		h.logger.WithError(err).Error("Report rendering failed")
		respondError(w, http.StatusInternalServerError, "Failed to render report")
		return
	}

	w.Header().Set("Content-Type", renderer.ContentType())
	w.Header().Set("X-Config-Hash", result.Document.ConfigHash)
	if strings.EqualFold(strings.TrimSpace(format), report.FormatPDF) {
		w.Header().Set("Content-Disposition", `attachment; filename="report.pdf"`)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// statusFor maps pipeline errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, contracts.ErrMissingTopic):
		return http.StatusBadRequest
	case errors.Is(err, contracts.ErrEmptyInput), errors.Is(err, contracts.ErrDuplicateInstrument),
		errors.Is(err, contracts.ErrMissingColumn):
		return http.StatusUnprocessableEntity
	case errors.Is(err, contracts.ErrConfiguration):
		return http.StatusInternalServerError
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		// 가격 이력 등 외부 소스 실패
		return http.StatusBadGateway
	}
}
