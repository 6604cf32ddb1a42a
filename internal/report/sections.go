package report

import (
	"fmt"

	"github.com/wonny/eventreport/internal/contracts"
)

// Section headings shared by the PDF and text renderers
const (
	HeadingExecutiveSummary = "Executive Summary"
	HeadingKeyFindings      = "Key Findings"
	HeadingImplications     = "Investment Implications"
	HeadingRanking          = "Top Ranked Stocks"
	HeadingMetrics          = "Top %d Stocks Metrics"
	HeadingDataNotes        = "Data Notes"
)

// ExecutiveSummary returns the summary paragraphs for the document
func ExecutiveSummary(doc *Document) []string {
	return []string{
		fmt.Sprintf("This financial analysis report explores the relationship between %s and the performance of the top %d stocks. "+
			"By examining historical data and correlating it with stock performance, this report aims to identify patterns "+
			"and trends for informed investment decisions.", doc.MainTopic, doc.UniverseSize),
		fmt.Sprintf("The analysis considers several factors including volatility, beta, CAGR, debt to equity ratio, EPS, "+
			"dividend yield, RSI, MACD, percentage difference, and correlation with the event. The comprehensive evaluation "+
			"helps in understanding how %s, together with %s, impacts various financial metrics and stock performance.",
			doc.MainTopic, doc.IndustryTopic),
		fmt.Sprintf("The goal is to equip investors with the knowledge needed to make sound investment decisions in light of %s.",
			doc.MainTopic),
	}
}

// KeyFindings returns the bullet list for the findings section
func KeyFindings(doc *Document) []string {
	return []string{
		fmt.Sprintf("Stocks with varying degrees of correlation with %s, indicating different levels of impact.", doc.MainTopic),
		fmt.Sprintf("Stocks with higher volatility and beta may experience greater sensitivity to changes related to %s.", doc.MainTopic),
		"Companies with higher debt to equity ratios may face increased financial risks, impacting their stock prices and investor confidence.",
	}
}

// InvestmentImplications returns the bullet list for the implications section
func InvestmentImplications() []string {
	return []string{
		"Diversification: Investors should diversify their portfolios across various sectors and asset classes.",
		"Hedging Strategies: Using hedging instruments can help mitigate risks.",
		"Long-Term Perspective: A long-term investment approach will help investors navigate volatility and capitalize on growth opportunities.",
	}
}

// AnalystLine returns the attribution line
func AnalystLine(doc *Document) string {
	return "Prepared By SEBI Registered Research Analyst: " + doc.Analyst
}

// MetricsHeader is the column order of the metrics table
var MetricsHeader = []string{
	"Symbol", "Last Price", "Correlation", "Alpha (%)", "Volatility (%)", "Sharpe",
	"Treynor", "Sortino", "Max Drawdown", "R-Squared", "Downside Dev", "Tracking Err (%)",
}

// MetricsRow formats one record for display.
// 알파/변동성/추적오차는 퍼센트, 나머지는 소수 그대로
func MetricsRow(rec contracts.MetricRecord) []string {
	d := rec.Display()
	return []string{
		d.Symbol,
		fmt.Sprintf("%.2f", d.TotalValue),
		d.Correlation.String(),
		fmt.Sprintf("%.2f", d.AnnualizedAlpha),
		fmt.Sprintf("%.2f", d.AnnualizedVolatility),
		d.SharpeRatio.String(),
		d.TreynorRatio.String(),
		d.SortinoRatio.String(),
		fmt.Sprintf("%.4f", d.MaximumDrawdown),
		d.RSquared.String(),
		fmt.Sprintf("%.4f", d.DownsideDeviation),
		fmt.Sprintf("%.2f", d.TrackingError),
	}
}
