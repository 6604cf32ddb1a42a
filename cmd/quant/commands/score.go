package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/eventreport/internal/s0_data"
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "종목 점수/랭킹 조회",
	Long: `종목 테이블을 가중 점수로 정렬해 상위 종목을 출력합니다.
가격 이력은 조회하지 않습니다.

Example:
  go run ./cmd/quant score --limit 20
  go run ./cmd/quant score --csv ranking.csv`,
	RunE: runScore,
}

var (
	scoreLimit int
	scoreCSV   string
)

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().IntVar(&scoreLimit, "limit", 20, "number of ranked instruments to print")
	scoreCmd.Flags().StringVar(&scoreCSV, "csv", "", "write the full top-N universe to a CSV file")
}

func runScore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	orch, err := a.orchestrator()
	if err != nil {
		return err
	}

	selection, snapshot, err := orch.Rank(ctx)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	PrintHeader(w, "Instrument Ranking", [][2]string{
		{"Strategy", a.strategy.Meta.StrategyID + " (" + shortHash(orch.ConfigHash()) + ")"},
		{"Instruments", strconv.Itoa(len(selection.All))},
		{"Universe", strconv.Itoa(len(selection.Universe))},
		{"Quality", fmt.Sprintf("%.2f", snapshot.QualityScore)},
	})
	if !snapshot.Passed {
		PrintWarning(w, fmt.Sprintf("factor coverage below threshold, missing: %v", snapshot.Missing()))
	}

	widths := []int{6, 16, 12}
	PrintTableHeader(w, []string{"Rank", "Symbol", "Total Score"}, widths)
	for _, ri := range selection.Top(scoreLimit) {
		PrintTableRow(w, []string{
			strconv.Itoa(ri.Rank),
			ri.Symbol,
			fmt.Sprintf("%.4f", ri.TotalScore),
		}, widths)
	}

	if scoreCSV != "" {
		f, err := os.Create(scoreCSV)
		if err != nil {
			return fmt.Errorf("create csv: %w", err)
		}
		if err := s0_data.WriteRanking(f, selection.Universe); err != nil {
			f.Close()
			return fmt.Errorf("write csv: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close csv: %w", err)
		}
		PrintSuccess(w, fmt.Sprintf("Ranking written to %s", scoreCSV))
	}

	return nil
}
