package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"
)

// PDFRenderer renders the report as an A4 PDF
type PDFRenderer struct {
	font string
}

// NewPDFRenderer creates a PDF renderer using the core Arial font
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{font: "Arial"}
}

// ContentType implements Renderer
func (r *PDFRenderer) ContentType() string { return "application/pdf" }

// Extension implements Renderer
func (r *PDFRenderer) Extension() string { return ".pdf" }

// Render implements Renderer
func (r *PDFRenderer) Render(w io.Writer, doc *Document) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.SetTitle(doc.Title, true)
	pdf.SetAuthor(doc.Analyst, true)
	pdf.SetCreator("eventreport", false)
	if !doc.GeneratedAt.IsZero() {
		pdf.SetCreationDate(doc.GeneratedAt)
	}

	// 코어 폰트는 cp1252 만 지원
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	// Header
	pdf.SetFont(r.font, "B", 16)
	pdf.CellFormat(0, 10, tr(doc.Title), "", 1, "C", false, 0, "")
	pdf.SetFont(r.font, "", 12)
	pdf.CellFormat(0, 8, tr("Main Event: "+doc.MainTopic), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 8, tr("Industry Event: "+doc.IndustryTopic), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 8, tr(AnalystLine(doc)), "", 1, "C", false, 0, "")
	pdf.SetFont(r.font, "", 9)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Generated %s | Benchmark %s | Window %s to %s",
		doc.GeneratedAt.Format("2006-01-02 15:04 MST"), doc.Benchmark,
		doc.Window.From.Format("2006-01-02"), doc.Window.To.Format("2006-01-02"))), "", 1, "C", false, 0, "")

	r.heading(pdf, tr, HeadingExecutiveSummary)
	for _, p := range ExecutiveSummary(doc) {
		pdf.MultiCell(0, 6, tr(p), "", "L", false)
		pdf.Ln(2)
	}

	r.heading(pdf, tr, HeadingKeyFindings)
	r.bullets(pdf, tr, KeyFindings(doc))

	r.heading(pdf, tr, HeadingImplications)
	r.bullets(pdf, tr, InvestmentImplications())

	r.heading(pdf, tr, HeadingRanking)
	rankRows := [][]string{{"Rank", "Symbol", "Total Score"}}
	for _, ri := range doc.TopRanked {
		rankRows = append(rankRows, []string{
			strconv.Itoa(ri.Rank),
			ri.Symbol,
			fmt.Sprintf("%.4f", ri.TotalScore),
		})
	}
	r.table(pdf, tr, rankRows, []float64{20, 60, 40}, 9)

	// 지표 표는 가로 페이지
	pdf.AddPageFormat("L", pdf.GetPageSizeStr("A4"))
	r.heading(pdf, tr, fmt.Sprintf(HeadingMetrics, len(doc.TopRanked)))
	metricRows := [][]string{MetricsHeader}
	for _, rec := range doc.Metrics {
		metricRows = append(metricRows, MetricsRow(rec))
	}
	widths := make([]float64, len(MetricsHeader))
	widths[0] = 30
	for i := 1; i < len(widths); i++ {
		widths[i] = 247.0 / float64(len(widths)-1)
	}
	r.table(pdf, tr, metricRows, widths, 7)

	pdf.SetFont(r.font, "I", 8)
	pdf.MultiCell(0, 5, "Alpha, volatility and tracking error are annualized percentages. "+
		"Maximum drawdown and downside deviation are fractions. N/A marks a ratio with a zero denominator.", "", "L", false)

	r.dataNotes(pdf, tr, doc)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to generate PDF output: %w", err)
	}
	return nil
}

func (r *PDFRenderer) heading(pdf *fpdf.Fpdf, tr func(string) string, text string) {
	pdf.Ln(6)
	pdf.SetFont(r.font, "B", 12)
	pdf.CellFormat(0, 8, tr(text), "", 1, "L", false, 0, "")
	pdf.SetFont(r.font, "", 11)
}

func (r *PDFRenderer) bullets(pdf *fpdf.Fpdf, tr func(string) string, items []string) {
	for _, item := range items {
		pdf.MultiCell(0, 6, tr("- "+item), "", "L", false)
	}
}

// table draws a bordered grid; first row is the header
func (r *PDFRenderer) table(pdf *fpdf.Fpdf, tr func(string) string, rows [][]string, widths []float64, fontSize float64) {
	if len(rows) == 0 {
		return
	}
	lineHeight := fontSize * 0.6

	for i, row := range rows {
		if i == 0 {
			pdf.SetFont(r.font, "B", fontSize)
			pdf.SetFillColor(230, 230, 230)
		} else {
			pdf.SetFont(r.font, "", fontSize)
			pdf.SetFillColor(255, 255, 255)
		}
		for j, cell := range row {
			if j >= len(widths) {
				break
			}
			align := "R"
			if j == 0 || i == 0 {
				align = "C"
			}
			pdf.CellFormat(widths[j], lineHeight, tr(cell), "1", 0, align, i == 0, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.SetFont(r.font, "", 11)
}

func (r *PDFRenderer) dataNotes(pdf *fpdf.Fpdf, tr func(string) string, doc *Document) {
	r.heading(pdf, tr, HeadingDataNotes)
	pdf.SetFont(r.font, "", 9)

	notes := []string{
		fmt.Sprintf("Strategy %s (config %s)", doc.StrategyID, shortHash(doc.ConfigHash)),
	}
	if doc.Quality != nil {
		notes = append(notes, fmt.Sprintf("Instrument table: %d rows, factor coverage score %.2f",
			doc.Quality.TotalInstruments, doc.Quality.QualityScore))
	}
	for _, s := range doc.Skipped {
		notes = append(notes, fmt.Sprintf("Skipped %s: %s (%d observations)", s.Symbol, s.Reason, s.Observations))
	}
	for _, d := range doc.Degenerate {
		notes = append(notes, fmt.Sprintf("%s: %s undefined", d.Symbol, d.Metric))
	}

	for _, n := range notes {
		pdf.MultiCell(0, 5, tr("- "+n), "", "L", false)
	}
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
