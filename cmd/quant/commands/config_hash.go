package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/eventreport/internal/strategyconfig"
)

// configHashCmd represents the config-hash command
var configHashCmd = &cobra.Command{
	Use:   "config-hash",
	Short: "전략 설정 검증 및 해시 출력",
	Long: `전략 YAML 을 검증하고 SHA-256 해시를 출력합니다.
리포트에 기록되는 해시와 같은 값입니다.

Example:
  go run ./cmd/quant config-hash --strategy config/strategy/event_report_v1.yaml`,
	RunE: runConfigHash,
}

func init() {
	rootCmd.AddCommand(configHashCmd)
}

func runConfigHash(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	strategy, err := strategyconfig.LoadOrDefault(cfg.Sources.StrategyFile)
	if err != nil {
		return fmt.Errorf("load strategy: %w", err)
	}

	hash, err := strategyconfig.Hash(strategy)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	source := cfg.Sources.StrategyFile
	if source == "" {
		source = "(built-in default)"
	}
	PrintHeader(w, "Strategy Config", [][2]string{
		{"Source", source},
		{"Strategy ID", strategy.Meta.StrategyID},
		{"Version", strategy.Meta.Version},
		{"Hash", hash},
	})
	for _, warn := range strategyconfig.Warn(strategy) {
		PrintWarning(w, fmt.Sprintf("[%s] %s", warn.Code, warn.Message))
	}
	PrintSuccess(w, "Strategy config is valid")
	return nil
}
