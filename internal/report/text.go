package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
)

// TextRenderer renders the report as a plain console summary
type TextRenderer struct{}

// NewTextRenderer creates a text renderer
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

// ContentType implements Renderer
func (r *TextRenderer) ContentType() string { return "text/plain; charset=utf-8" }

// Extension implements Renderer
func (r *TextRenderer) Extension() string { return ".txt" }

// Render implements Renderer
func (r *TextRenderer) Render(w io.Writer, doc *Document) error {
	ew := &errWriter{w: w}

	ew.printf("%s\n%s\n", doc.Title, strings.Repeat("=", len(doc.Title)))
	ew.printf("Main Event: %s\n", doc.MainTopic)
	ew.printf("Industry Event: %s\n", doc.IndustryTopic)
	ew.printf("%s\n", AnalystLine(doc))
	ew.printf("Generated: %s  Benchmark: %s  Window: %s ~ %s\n",
		doc.GeneratedAt.Format("2006-01-02 15:04 MST"), doc.Benchmark,
		doc.Window.From.Format("2006-01-02"), doc.Window.To.Format("2006-01-02"))

	section(ew, HeadingExecutiveSummary)
	for _, p := range ExecutiveSummary(doc) {
		ew.printf("%s\n\n", p)
	}

	section(ew, HeadingKeyFindings)
	for _, item := range KeyFindings(doc) {
		ew.printf("- %s\n", item)
	}

	section(ew, HeadingImplications)
	for _, item := range InvestmentImplications() {
		ew.printf("- %s\n", item)
	}

	section(ew, HeadingRanking)
	tw := tabwriter.NewWriter(ew, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Rank\tSymbol\tTotal Score\t")
	for _, ri := range doc.TopRanked {
		fmt.Fprintf(tw, "%s\t%s\t%.4f\t\n", strconv.Itoa(ri.Rank), ri.Symbol, ri.TotalScore)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write ranking table: %w", err)
	}

	section(ew, fmt.Sprintf(HeadingMetrics, len(doc.TopRanked)))
	tw = tabwriter.NewWriter(ew, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, strings.Join(MetricsHeader, "\t")+"\t")
	for _, rec := range doc.Metrics {
		fmt.Fprintln(tw, strings.Join(MetricsRow(rec), "\t")+"\t")
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write metrics table: %w", err)
	}

	if len(doc.Skipped) > 0 || len(doc.Degenerate) > 0 {
		section(ew, HeadingDataNotes)
		for _, s := range doc.Skipped {
			ew.printf("- Skipped %s: %s (%d observations)\n", s.Symbol, s.Reason, s.Observations)
		}
		for _, d := range doc.Degenerate {
			ew.printf("- %s: %s undefined\n", d.Symbol, d.Metric)
		}
	}

	return ew.err
}

func section(ew *errWriter, title string) {
	ew.printf("\n%s\n%s\n", title, strings.Repeat("-", len(title)))
}

// errWriter keeps the first write error
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}

func (e *errWriter) printf(format string, args ...interface{}) {
	fmt.Fprintf(e, format, args...)
}
