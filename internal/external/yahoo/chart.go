package yahoo

import (
	"fmt"
	"sort"
	"time"

	"github.com/wonny/eventreport/internal/contracts"
)

// chartResponse is the subset of /v8/finance/chart we read
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Symbol    string `json:"symbol"`
		Currency  string `json:"currency"`
		GMTOffset int64  `json:"gmtoffset"` // 거래소 시간대 (초)
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

// parseChart turns a chart payload into a date-ascending series.
// null 종가는 건너뜀. 같은 날짜가 중복되면 마지막 값 사용
func parseChart(symbol string, payload *chartResponse) (contracts.PriceSeries, error) {
	series := contracts.PriceSeries{Symbol: symbol}

	if payload.Chart.Error != nil {
		return series, &APIError{
			StatusCode: 200,
			Code:       payload.Chart.Error.Code,
			Message:    payload.Chart.Error.Description,
			Symbol:     symbol,
		}
	}
	if len(payload.Chart.Result) == 0 {
		return series, nil
	}

	result := payload.Chart.Result[0]

	// 수정종가가 없으면 종가로 대체
	var closes []*float64
	switch {
	case len(result.Indicators.AdjClose) > 0:
		closes = result.Indicators.AdjClose[0].AdjClose
	case len(result.Indicators.Quote) > 0:
		closes = result.Indicators.Quote[0].Close
	}

	if len(closes) != len(result.Timestamp) {
		return series, fmt.Errorf("chart %s: %d timestamps but %d closes", symbol, len(result.Timestamp), len(closes))
	}

	byDate := make(map[time.Time]float64, len(closes))
	for i, ts := range result.Timestamp {
		if closes[i] == nil {
			continue
		}
		byDate[tradeDate(ts, result.Meta.GMTOffset)] = *closes[i]
	}

	for d, v := range byDate {
		series.Points = append(series.Points, contracts.PricePoint{Date: d, AdjClose: v})
	}
	sort.Slice(series.Points, func(i, j int) bool {
		return series.Points[i].Date.Before(series.Points[j].Date)
	})

	return series, nil
}

// tradeDate converts a bar timestamp to the exchange-local calendar day (UTC midnight)
func tradeDate(ts, gmtOffset int64) time.Time {
	local := time.Unix(ts+gmtOffset, 0).UTC()
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
