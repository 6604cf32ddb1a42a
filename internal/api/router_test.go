package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/eventreport/internal/api/handlers"
	"github.com/wonny/eventreport/internal/brain"
	"github.com/wonny/eventreport/internal/contracts"
	"github.com/wonny/eventreport/internal/report"
	"github.com/wonny/eventreport/internal/s0_data/quality"
	"github.com/wonny/eventreport/pkg/config"
	"github.com/wonny/eventreport/pkg/logger"
)

type fakeRunner struct {
	err   error
	calls int
	got   brain.Request
}

func (f *fakeRunner) Run(ctx context.Context, req brain.Request) (*brain.Result, error) {
	f.calls++
	f.got = req
	if f.err != nil {
		return &brain.Result{}, f.err
	}
	doc := &report.Document{
		Title:         "Economic Event Analysis Report",
		MainTopic:     req.MainTopic,
		IndustryTopic: req.IndustryTopic,
		Analyst:       "Harika Enjamuri",
		GeneratedAt:   req.Now,
		Benchmark:     "^NSEI",
		ConfigHash:    "abc123",
		UniverseSize:  1,
		TopRanked: []contracts.RankedInstrument{
			{InstrumentRecord: contracts.InstrumentRecord{Symbol: "TCS.NS", TotalScore: 4.2}, Rank: 1},
		},
	}
	doc.AttachBatch(&contracts.MetricsBatch{
		Records: []contracts.MetricRecord{{Symbol: "TCS.NS", TotalValue: 3790.25, SharpeRatio: contracts.Null()}},
	})
	return &brain.Result{Document: doc}, nil
}

type fakeRanker struct {
	selection *contracts.RankedSelection
	err       error
}

func (f *fakeRanker) Rank(ctx context.Context) (*contracts.RankedSelection, *quality.Snapshot, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.selection, &quality.Snapshot{TotalInstruments: len(f.selection.All), QualityScore: 1, Passed: true}, nil
}

func sampleSelection() *contracts.RankedSelection {
	all := []contracts.RankedInstrument{
		{InstrumentRecord: contracts.InstrumentRecord{Symbol: "row3", TotalScore: 7.2}, Rank: 1},
		{InstrumentRecord: contracts.InstrumentRecord{Symbol: "row1", TotalScore: 4}, Rank: 2},
		{InstrumentRecord: contracts.InstrumentRecord{Symbol: "row2", TotalScore: 0.8}, Rank: 3},
	}
	return &contracts.RankedSelection{All: all, Universe: all}
}

func newTestRouter(runner handlers.ReportRunner, ranker handlers.Ranker) http.Handler {
	log := logger.NewNop()
	return NewRouter(
		handlers.NewReportHandler(runner, report.FormatPDF, log),
		handlers.NewRankingHandler(ranker, log),
		log,
	)
}

func post(t *testing.T, h http.Handler, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestRouter(&fakeRunner{}, &fakeRanker{}), "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestCreateReport_PDFDefault(t *testing.T) {
	runner := &fakeRunner{}
	rec := post(t, newTestRouter(runner, &fakeRanker{}), "/api/reports",
		`{"main_topic":"RBI rate cut","industry_topic":"Banking liquidity"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "report.pdf")
	assert.Equal(t, "abc123", rec.Header().Get("X-Config-Hash"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	assert.Equal(t, "RBI rate cut", runner.got.MainTopic)
	assert.Equal(t, "Banking liquidity", runner.got.IndustryTopic)
	assert.False(t, runner.got.Now.IsZero())
}

func TestCreateReport_JSONFormat(t *testing.T) {
	rec := post(t, newTestRouter(&fakeRunner{}, &fakeRanker{}), "/api/reports?format=json",
		`{"main_topic":"Budget","industry_topic":"Infra capex"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Header().Get("Content-Disposition"))

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "Budget", doc["main_topic"])
	metrics := doc["metrics"].([]interface{})
	assert.Nil(t, metrics[0].(map[string]interface{})["sharpe_ratio"])
}

func TestCreateReport_TextFormat(t *testing.T) {
	rec := post(t, newTestRouter(&fakeRunner{}, &fakeRanker{}), "/api/reports?format=text",
		`{"main_topic":"Budget","industry_topic":"Infra capex"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Industry Event: Infra capex")
}

func TestCreateReport_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		body    string
		wantErr string
	}{
		{"invalid json", "/api/reports", `{`, "Invalid JSON body"},
		{"missing industry topic", "/api/reports", `{"main_topic":"Budget"}`, "Please fill in both event topics."},
		{"missing main topic", "/api/reports", `{"industry_topic":"Banking"}`, "Please fill in both event topics."},
		{"unknown format", "/api/reports?format=docx", `{"main_topic":"a","industry_topic":"b"}`, "unknown report format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{}
			rec := post(t, newTestRouter(runner, &fakeRanker{}), tt.target, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, errorBody(t, rec), tt.wantErr)
			assert.Equal(t, 0, runner.calls)
		})
	}
}

func TestCreateReport_PipelineErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"empty table", &contracts.EmptyInputError{What: "instrument table has no rows"}, http.StatusUnprocessableEntity},
		{"no symbol column", fmt.Errorf("load instruments: %w: \"Stock Symbol\"", contracts.ErrMissingColumn), http.StatusUnprocessableEntity},
		{"bad weights", &contracts.ConfigurationError{Field: "MACD", Reason: "missing"}, http.StatusInternalServerError},
		{"price fetch", errors.New("price history: fetch TCS.NS: status 500"), http.StatusBadGateway},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, newTestRouter(&fakeRunner{err: tt.err}, &fakeRanker{}), "/api/reports",
				`{"main_topic":"a","industry_topic":"b"}`)

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, tt.err.Error(), errorBody(t, rec))
		})
	}
}

func TestGetRanking(t *testing.T) {
	h := newTestRouter(&fakeRunner{}, &fakeRanker{selection: sampleSelection()})

	rec := get(t, h, "/api/ranking?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var body handlers.RankingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Total)
	assert.Equal(t, 3, body.UniverseSize)
	require.Len(t, body.Items, 2)
	assert.Equal(t, handlers.RankingItem{Rank: 1, Symbol: "row3", TotalScore: contracts.Float(7.2)}, body.Items[0])
	assert.Equal(t, "row1", body.Items[1].Symbol)
	require.NotNil(t, body.Quality)

	rec = get(t, h, "/api/ranking")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Items, 3)
}

func TestGetRanking_InvalidLimit(t *testing.T) {
	h := newTestRouter(&fakeRunner{}, &fakeRanker{selection: sampleSelection()})

	for _, limit := range []string{"0", "-1", "abc"} {
		rec := get(t, h, "/api/ranking?limit="+limit)
		assert.Equal(t, http.StatusBadRequest, rec.Code, limit)
	}
}

func TestGetRanking_Error(t *testing.T) {
	h := newTestRouter(&fakeRunner{}, &fakeRanker{err: &contracts.EmptyInputError{What: "instrument table has no rows"}})

	rec := get(t, h, "/api/ranking")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestRouter(&fakeRunner{}, &fakeRanker{})

	rec := get(t, h, "/api/reports")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, errorBody(t, rec), "GET not allowed")

	rec = post(t, h, "/api/ranking", `{}`)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = get(t, h, "/api/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}

func testConfig() *config.Config {
	return &config.Config{
		Port:  "0",
		Env:   "development",
		Yahoo: config.YahooConfig{RateLimit: 2, Timeout: 30 * time.Second},
	}
}

func TestServerHandler(t *testing.T) {
	router := newTestRouter(&fakeRunner{}, &fakeRanker{})
	srv := New(testConfig(), logger.NewNop(), router, 21)
	assert.Equal(t, router, srv.Handler())
	assert.Equal(t, time.Minute, srv.WriteTimeout())
}

func TestReportTimeout(t *testing.T) {
	yc := config.YahooConfig{RateLimit: 2, Timeout: 30 * time.Second}

	// 201 시리즈 / 초당 2건 = 100.5s + 30s
	assert.Equal(t, 130500*time.Millisecond, ReportTimeout(yc, 201))
	assert.Equal(t, time.Minute, ReportTimeout(yc, 21), "short fetches use the floor")

	yc.RateLimit = 0
	assert.Equal(t, 130*time.Second, ReportTimeout(yc, 100))
}
