package s0_data

import (
	"context"

	"github.com/wonny/eventreport/pkg/database"
)

// Schema creates the tables read by the postgres sources
var Schema = []string{
	`CREATE SCHEMA IF NOT EXISTS data`,
	`CREATE TABLE IF NOT EXISTS data.instrument_factors (
		symbol                 TEXT PRIMARY KEY,
		row_order              INTEGER NOT NULL,
		volatility             DOUBLE PRECISION,
		beta                   DOUBLE PRECISION,
		cagr                   DOUBLE PRECISION,
		debt_to_equity_ratio   DOUBLE PRECISION,
		eps                    DOUBLE PRECISION,
		dividend_yield         DOUBLE PRECISION,
		rsi                    DOUBLE PRECISION,
		macd                   DOUBLE PRECISION,
		percentage_difference  DOUBLE PRECISION,
		correlation_with_event DOUBLE PRECISION,
		updated_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS data.daily_prices (
		symbol     TEXT NOT NULL,
		trade_date DATE NOT NULL,
		adj_close  DOUBLE PRECISION,
		PRIMARY KEY (symbol, trade_date)
	)`,
}

// EnsureSchema applies Schema (idempotent)
func EnsureSchema(ctx context.Context, db *database.DB) error {
	return db.Exec(ctx, Schema...)
}
