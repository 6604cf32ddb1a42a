package collector

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/eventreport/internal/contracts"
	"github.com/wonny/eventreport/pkg/logger"
)

type stubSource struct {
	errs map[string]error
}

func (s *stubSource) FetchAdjClose(ctx context.Context, symbol string, window contracts.DateRange) (contracts.PriceSeries, error) {
	if err := s.errs[symbol]; err != nil {
		return contracts.PriceSeries{}, err
	}
	return contracts.PriceSeries{
		Points: []contracts.PricePoint{
			{Date: window.From, AdjClose: 1},
			{Date: window.To, AdjClose: 2},
		},
	}, nil
}

type memStore struct {
	mu     sync.Mutex
	saved  map[string]int
	failOn string
}

func (m *memStore) SaveSeries(ctx context.Context, series contracts.PriceSeries) (int, error) {
	if series.Symbol == m.failOn {
		return 0, errors.New("write failed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		m.saved = make(map[string]int)
	}
	m.saved[series.Symbol] = series.Len()
	return series.Len(), nil
}

func testWindow() contracts.DateRange {
	return contracts.TrailingYear(time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), 1)
}

func bySymbol(results []SyncResult) map[string]SyncResult {
	out := make(map[string]SyncResult, len(results))
	for _, r := range results {
		out[r.Symbol] = r
	}
	return out
}

func TestSyncPrices(t *testing.T) {
	source := &stubSource{errs: map[string]error{"BAD.NS": errors.New("not found")}}
	store := &memStore{failOn: "RO.NS"}
	c := NewCollector(source, store, logger.NewNop())

	symbols := []string{"TCS.NS", "INFY.NS", "BAD.NS", "RO.NS", "^NSEI"}
	results := c.SyncPrices(context.Background(), symbols, testWindow(), Config{Workers: 3})
	require.Len(t, results, len(symbols))

	got := bySymbol(results)
	assert.NoError(t, got["TCS.NS"].Error)
	assert.Equal(t, 2, got["TCS.NS"].PriceCount)
	assert.NoError(t, got["^NSEI"].Error)
	assert.Error(t, got["BAD.NS"].Error)
	assert.Error(t, got["RO.NS"].Error)
	assert.Equal(t, 2, got["RO.NS"].PriceCount)

	failed := Failed(results)
	names := []string{failed[0].Symbol, failed[1].Symbol}
	sort.Strings(names)
	assert.Equal(t, []string{"BAD.NS", "RO.NS"}, names)

	assert.Equal(t, map[string]int{"TCS.NS": 2, "INFY.NS": 2, "^NSEI": 2}, store.saved)
}

func TestSyncPrices_ZeroWorkersStillRuns(t *testing.T) {
	c := NewCollector(&stubSource{}, &memStore{}, logger.NewNop())
	results := c.SyncPrices(context.Background(), []string{"A.NS"}, testWindow(), Config{})
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Error)
}

func TestSyncPrices_CancelledContext(t *testing.T) {
	store := &memStore{}
	c := NewCollector(&stubSource{}, store, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := c.SyncPrices(ctx, []string{"A.NS", "B.NS"}, testWindow(), Config{Workers: 2})
	require.Len(t, results, 2)
	for _, r := range results {
		assert.ErrorIs(t, r.Error, context.Canceled)
	}
	assert.Empty(t, store.saved)
}
