package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quant",
	Short: "Event Report - 이벤트 기반 멀티팩터 종목 분석 리포트",
	Long: `Event Report Unified CLI

종목 팩터 테이블을 가중 점수로 랭킹하고, 상위 종목의 1년 가격 이력으로
리스크/수익 지표를 계산해 이벤트 분석 리포트(PDF/텍스트/JSON)를 생성합니다.

Usage:
  go run ./cmd/quant [command]

Examples:
  go run ./cmd/quant report --main-topic "RBI rate cut" --industry-topic "Banking liquidity"
  go run ./cmd/quant score --limit 20
  go run ./cmd/quant api
  go run ./cmd/quant scheduler start
  go run ./cmd/quant data sync-prices
  go run ./cmd/quant test-db`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML (default: STRATEGY_FILE or built-in weights)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (LOG_LEVEL=debug)")
}
