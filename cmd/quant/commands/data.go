package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/eventreport/internal/contracts"
	"github.com/wonny/eventreport/internal/s0_data"
	"github.com/wonny/eventreport/internal/s0_data/collector"
)

// dataCmd groups PostgreSQL data maintenance commands
var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "PostgreSQL 데이터 관리",
	Long: `PostgreSQL 소스(INSTRUMENT_SOURCE/PRICE_SOURCE=postgres)용 데이터를 관리합니다.

Subcommands:
  init-schema          - 테이블 생성 (idempotent)
  import-instruments   - CSV 팩터 테이블 적재
  sync-prices          - Yahoo 가격 이력 적재

Example:
  go run ./cmd/quant data init-schema
  go run ./cmd/quant data import-instruments --file all_stock_parameters.csv
  go run ./cmd/quant data sync-prices --workers 8`,
}

var (
	importFile  string
	syncWorkers int
)

var (
	initSchemaCmd = &cobra.Command{
		Use:   "init-schema",
		Short: "테이블 생성",
		RunE:  runInitSchema,
	}

	importInstrumentsCmd = &cobra.Command{
		Use:   "import-instruments",
		Short: "CSV 팩터 테이블을 PostgreSQL로 적재",
		Long: `CSV 팩터 테이블을 읽어 data.instrument_factors를 교체합니다.
행 순서(row_order)는 CSV 순서를 그대로 유지합니다.`,
		RunE: runImportInstruments,
	}

	syncPricesCmd = &cobra.Command{
		Use:   "sync-prices",
		Short: "가격 이력 적재 (Yahoo → PostgreSQL)",
		Long: `전 종목과 벤치마크의 수정종가를 Yahoo에서 받아 data.daily_prices에 저장합니다.
기간은 전략 설정의 metrics.lookback_years 입니다.`,
		RunE: runSyncPrices,
	}
)

func init() {
	rootCmd.AddCommand(dataCmd)

	dataCmd.AddCommand(initSchemaCmd)
	dataCmd.AddCommand(importInstrumentsCmd)
	dataCmd.AddCommand(syncPricesCmd)

	importInstrumentsCmd.Flags().StringVar(&importFile, "file", "", "CSV 경로 (default: INSTRUMENTS_FILE)")
	syncPricesCmd.Flags().IntVar(&syncWorkers, "workers", 0, "동시 워커 수 (default: PRICE_SYNC_WORKERS)")
}

func runInitSchema(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := s0_data.EnsureSchema(cmd.Context(), a.db); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	PrintSuccess(cmd.OutOrStdout(), "Schema ready")
	return nil
}

func runImportInstruments(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	path := firstNonEmpty(importFile, a.cfg.Sources.InstrumentsFile)
	records, err := s0_data.NewCSVInstrumentSource(path, a.log).Load(cmd.Context())
	if err != nil {
		return err
	}

	if err := s0_data.NewInstrumentRepository(a.db.Pool).SaveBatch(cmd.Context(), records); err != nil {
		return fmt.Errorf("save instruments: %w", err)
	}

	PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Imported %d instruments from %s", len(records), path))
	return nil
}

func runSyncPrices(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.instruments.Load(ctx)
	if err != nil {
		return fmt.Errorf("load instruments: %w", err)
	}
	symbols := make([]string, 0, len(records)+1)
	for _, r := range records {
		symbols = append(symbols, r.Symbol)
	}
	symbols = append(symbols, a.strategy.Metrics.Benchmark)

	workers := syncWorkers
	if workers <= 0 {
		workers = a.cfg.Sources.PriceSyncWorkers
	}

	window := contracts.TrailingYear(time.Now(), a.strategy.Metrics.LookbackYears)
	col := collector.NewCollector(a.yahoo, s0_data.NewPriceRepository(a.db.Pool), a.log)
	results := col.SyncPrices(ctx, symbols, window, collector.Config{Workers: workers})

	w := cmd.OutOrStdout()
	failed := collector.Failed(results)
	if len(failed) > 0 {
		widths := []int{16, 60}
		PrintTableHeader(w, []string{"Symbol", "Error"}, widths)
		for _, r := range failed {
			PrintTableRow(w, []string{r.Symbol, r.Error.Error()}, widths)
		}
		return fmt.Errorf("%d of %d symbols failed", len(failed), len(results))
	}

	total := 0
	for _, r := range results {
		total += r.PriceCount
	}
	PrintSuccess(w, fmt.Sprintf("Synced %d symbols, %d prices", len(results), total))
	return nil
}
