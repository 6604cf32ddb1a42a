package database_test

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/eventreport/pkg/config"
	"github.com/wonny/eventreport/pkg/database"
)

// Example_poolConfig shows how DB_* settings map onto the pool
func Example_poolConfig() {
	cfg, err := database.PoolConfig(config.DatabaseConfig{
		URL:             "postgres://report@localhost:5432/eventreport",
		MaxConns:        10,
		MinConns:        1,
		MaxConnLifetime: time.Hour,
	})
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(cfg.MaxConns, cfg.MinConns, cfg.MaxConnLifetime)
	// Output: 10 1 1h0m0s
}

// Example_inTx replaces a table's contents atomically
func Example_inTx() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Println(err)
		return
	}

	db, err := database.New(ctx, cfg)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer db.Close()

	err = database.InTx(ctx, db.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM data.instrument_factors`); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `INSERT INTO data.instrument_factors (symbol, row_order) VALUES ($1, $2)`, "TCS.NS", 0)
		return err
	})
	if err != nil {
		fmt.Println(err)
	}
}
