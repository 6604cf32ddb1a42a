package contracts

import "context"

// InstrumentSource loads the instrument table (CSV, PostgreSQL)
// ⭐ SSOT: 입력 테이블 로딩 인터페이스
type InstrumentSource interface {
	Load(ctx context.Context) ([]InstrumentRecord, error)
}

// PriceHistoryProvider returns daily adjusted closes for one symbol
// ⭐ SSOT: 가격 이력 조회 인터페이스 (Yahoo, PostgreSQL)
type PriceHistoryProvider interface {
	FetchAdjClose(ctx context.Context, symbol string, window DateRange) (PriceSeries, error)
}

// HistoryFetcher fetches and aligns every requested series plus the benchmark
type HistoryFetcher interface {
	Fetch(ctx context.Context, symbols []string, benchmark string, window DateRange) (*PriceHistory, error)
}
