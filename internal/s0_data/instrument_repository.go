package s0_data

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/eventreport/internal/contracts"
	"github.com/wonny/eventreport/pkg/database"
)

// InstrumentRepository implements contracts.InstrumentSource over PostgreSQL
// ⭐ SSOT: 팩터 테이블 저장소는 여기서만
type InstrumentRepository struct {
	pool *pgxpool.Pool
}

// NewInstrumentRepository creates a new instrument repository
func NewInstrumentRepository(pool *pgxpool.Pool) *InstrumentRepository {
	return &InstrumentRepository{pool: pool}
}

// factorColumns matches contracts.AllFactors() order
const factorColumns = `volatility, beta, cagr, debt_to_equity_ratio, eps, dividend_yield,
	rsi, macd, percentage_difference, correlation_with_event`

// Load returns every instrument in import order; NULL cells are missing
func (r *InstrumentRepository) Load(ctx context.Context) ([]contracts.InstrumentRecord, error) {
	query := `
		SELECT symbol, ` + factorColumns + `
		FROM data.instrument_factors
		ORDER BY row_order ASC, symbol ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query instrument factors: %w", err)
	}
	defer rows.Close()

	factors := contracts.AllFactors()
	var records []contracts.InstrumentRecord
	for rows.Next() {
		var symbol string
		cells := make([]*float64, len(factors))
		dest := make([]interface{}, 0, len(factors)+1)
		dest = append(dest, &symbol)
		for i := range cells {
			dest = append(dest, &cells[i])
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan instrument factors: %w", err)
		}

		rec := contracts.InstrumentRecord{
			Symbol:  symbol,
			Factors: make(map[contracts.Factor]contracts.FactorValue, len(factors)),
		}
		for i, f := range factors {
			if cells[i] != nil {
				rec.Factors[f] = contracts.Present(*cells[i])
			} else {
				rec.Factors[f] = contracts.Missing()
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SaveBatch replaces the table contents with records (row_order = slice index)
func (r *InstrumentRepository) SaveBatch(ctx context.Context, records []contracts.InstrumentRecord) error {
	query := `
		INSERT INTO data.instrument_factors (symbol, row_order, ` + factorColumns + `, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
	`

	return database.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM data.instrument_factors`); err != nil {
			return fmt.Errorf("clear instrument factors: %w", err)
		}

		batch := &pgx.Batch{}
		for i, rec := range records {
			args := []interface{}{rec.Symbol, i}
			for _, f := range contracts.AllFactors() {
				v := rec.Factor(f)
				if v.Valid {
					args = append(args, v.Value)
				} else {
					args = append(args, nil)
				}
			}
			batch.Queue(query, args...)
		}

		br := tx.SendBatch(ctx, batch)
		for i := range records {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("insert %s: %w", records[i].Symbol, err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("close batch: %w", err)
		}
		return nil
	})
}
