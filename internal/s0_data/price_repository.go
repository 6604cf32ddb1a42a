package s0_data

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/eventreport/internal/contracts"
)

// PriceRepository implements contracts.PriceHistoryProvider over PostgreSQL
// ⭐ SSOT: 가격 데이터 저장소는 여기서만
type PriceRepository struct {
	pool *pgxpool.Pool
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// FetchAdjClose retrieves adjusted closes for a symbol within the window
func (r *PriceRepository) FetchAdjClose(ctx context.Context, symbol string, window contracts.DateRange) (contracts.PriceSeries, error) {
	query := `
		SELECT trade_date, adj_close
		FROM data.daily_prices
		WHERE symbol = $1 AND trade_date BETWEEN $2 AND $3 AND adj_close IS NOT NULL
		ORDER BY trade_date ASC
	`

	series := contracts.PriceSeries{Symbol: symbol}

	rows, err := r.pool.Query(ctx, query, symbol, window.From, window.To)
	if err != nil {
		return series, fmt.Errorf("query prices %s: %w", symbol, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p contracts.PricePoint
		if err := rows.Scan(&p.Date, &p.AdjClose); err != nil {
			return series, fmt.Errorf("scan price %s: %w", symbol, err)
		}
		series.Points = append(series.Points, p)
	}
	return series, rows.Err()
}

// SaveSeries upserts every point of a series; returns the number written
func (r *PriceRepository) SaveSeries(ctx context.Context, series contracts.PriceSeries) (int, error) {
	if len(series.Points) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO data.daily_prices (symbol, trade_date, adj_close)
		VALUES ($1, $2, $3)
		ON CONFLICT (symbol, trade_date) DO UPDATE SET
			adj_close = EXCLUDED.adj_close
	`

	batch := &pgx.Batch{}
	for _, p := range series.Points {
		batch.Queue(query, series.Symbol, p.Date, p.AdjClose)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range series.Points {
		if _, err := br.Exec(); err != nil {
			return 0, fmt.Errorf("upsert prices %s: %w", series.Symbol, err)
		}
	}
	return len(series.Points), nil
}
