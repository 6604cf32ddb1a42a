package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/wonny/eventreport/internal/contracts"
	"github.com/wonny/eventreport/pkg/httputil"
	"github.com/wonny/eventreport/pkg/logger"
)

// DefaultBaseURL is the Yahoo Finance chart API host
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Client handles communication with the Yahoo Finance chart API
// ⭐ SSOT: 가격 이력 API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL (tests, proxies)
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// NewClient creates a new Yahoo Finance client.
// httpClient 는 재시도 비활성 + 레이트 리밋 설정된 상태로 전달받음
func NewClient(httpClient *httputil.Client, log *logger.Logger, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: httpClient,
		logger:     log.Module("yahoo"),
		baseURL:    DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError represents an error response from the chart API
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Symbol     string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("yahoo chart %s: %s (status %d): %s", e.Symbol, e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("yahoo chart %s: status %d: %s", e.Symbol, e.StatusCode, e.Message)
}

// FetchAdjClose retrieves daily adjusted closes for symbol within window.
// Implements contracts.PriceHistoryProvider.
func (c *Client) FetchAdjClose(ctx context.Context, symbol string, window contracts.DateRange) (contracts.PriceSeries, error) {
	params := url.Values{}
	params.Set("period1", strconv.FormatInt(window.From.Unix(), 10))
	params.Set("period2", strconv.FormatInt(window.To.Unix(), 10))
	params.Set("interval", "1d")
	params.Set("events", "div,split")
	params.Set("includeAdjustedClose", "true")

	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return contracts.PriceSeries{Symbol: symbol}, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return contracts.PriceSeries{Symbol: symbol}, fmt.Errorf("failed to read response body: %w", err)
	}

	var payload chartResponse
	decodeErr := json.Unmarshal(body, &payload)

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode, Symbol: symbol, Message: truncate(string(body), 200)}
		if decodeErr == nil && payload.Chart.Error != nil {
			apiErr.Code = payload.Chart.Error.Code
			apiErr.Message = payload.Chart.Error.Description
		}
		return contracts.PriceSeries{Symbol: symbol}, apiErr
	}
	if decodeErr != nil {
		return contracts.PriceSeries{Symbol: symbol}, fmt.Errorf("failed to decode chart response: %w", decodeErr)
	}

	series, err := parseChart(symbol, &payload)
	if err != nil {
		return contracts.PriceSeries{Symbol: symbol}, err
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"points": len(series.Points),
		"from":   window.From.Format("2006-01-02"),
		"to":     window.To.Format("2006-01-02"),
	}).Debug("Fetched adjusted closes")

	return series, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
