package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/eventreport/internal/brain"
	"github.com/wonny/eventreport/internal/report"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "이벤트 분석 리포트 생성",
	Long: `종목 테이블을 점수화하고 상위 종목의 지표를 계산해 리포트를 생성합니다.

두 이벤트 주제(main, industry)는 모두 필수입니다.
가격 이력 수집이 하나라도 실패하면 리포트는 생성되지 않습니다.

Example:
  go run ./cmd/quant report --main-topic "RBI rate cut" --industry-topic "Banking liquidity"
  go run ./cmd/quant report --main-topic "Budget" --industry-topic "Infra" --format text --output -`,
	RunE: runReport,
}

var (
	reportMainTopic     string
	reportIndustryTopic string
	reportFormat        string
	reportOutput        string
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportMainTopic, "main-topic", "", "main event topic (default: REPORT_MAIN_TOPIC)")
	reportCmd.Flags().StringVar(&reportIndustryTopic, "industry-topic", "", "industry event topic (default: REPORT_INDUSTRY_TOPIC)")
	reportCmd.Flags().StringVar(&reportFormat, "format", "", "pdf | text | json (default: REPORT_FORMAT)")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "output file, - for stdout (default: REPORT_OUTPUT)")
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	req := brain.Request{
		MainTopic:     firstNonEmpty(reportMainTopic, a.cfg.Report.MainTopic),
		IndustryTopic: firstNonEmpty(reportIndustryTopic, a.cfg.Report.IndustryTopic),
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("please fill in both event topics: %w", err)
	}

	format := firstNonEmpty(reportFormat, a.cfg.Report.Format)
	renderer, err := report.NewRenderer(format)
	if err != nil {
		return err
	}

	output := firstNonEmpty(reportOutput, a.cfg.Report.Output)
	// 출력 파일 기본값이 report.pdf 이므로 형식에 맞춰 확장자 조정
	if reportOutput == "" && output == "report.pdf" {
		output = "report" + renderer.Extension()
	}

	orch, err := a.orchestrator()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if output != "-" {
		// 파이프라인이 성공한 뒤에만 파일 생성
		result, err := orch.Run(ctx, req)
		if err != nil {
			return fmt.Errorf("generate report: %w", err)
		}

		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		if err := renderer.Render(f, result.Document); err != nil {
			f.Close()
			return fmt.Errorf("render report: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close output: %w", err)
		}

		printRunSummary(cmd, result, output)
		return nil
	}

	if _, err := orch.Generate(ctx, req, out, renderer); err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	return nil
}

func printRunSummary(cmd *cobra.Command, result *brain.Result, output string) {
	w := cmd.OutOrStdout()
	doc := result.Document

	PrintHeader(w, doc.Title, [][2]string{
		{"Main Event", doc.MainTopic},
		{"Industry Event", doc.IndustryTopic},
		{"Benchmark", doc.Benchmark},
		{"Window", doc.Window.From.Format("2006-01-02") + " ~ " + doc.Window.To.Format("2006-01-02")},
		{"Strategy", doc.StrategyID + " (" + shortHash(doc.ConfigHash) + ")"},
	})
	fmt.Fprintf(w, "  Universe: %d  Metrics: %d  Skipped: %d  N/A fields: %d\n",
		doc.UniverseSize, len(doc.Metrics), len(doc.Skipped), len(doc.Degenerate))

	stages := make([]string, 0, len(result.CompletedStages))
	for _, st := range result.CompletedStages {
		stages = append(stages, st.Description())
	}
	fmt.Fprintf(w, "  Stages: %s\n", strings.Join(stages, " → "))

	for _, s := range doc.Skipped {
		PrintWarning(w, fmt.Sprintf("%s skipped: %s", s.Symbol, s.Reason))
	}
	PrintSuccess(w, fmt.Sprintf("Report written to %s in %.2fs", output, result.Duration.Seconds()))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
