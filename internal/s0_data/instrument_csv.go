package s0_data

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/wonny/eventreport/internal/contracts"
	"github.com/wonny/eventreport/pkg/logger"
)

// symbolColumn is the only required header; factor columns may be absent (→ missing)
const symbolColumn = "Stock Symbol"

// utf8BOM prefixes Excel "CSV UTF-8" exports
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// instrumentRow is one spreadsheet row as text.
// 셀은 문자열로 받아서 직접 변환 (빈칸/문자 → 결측)
type instrumentRow struct {
	Symbol               string `csv:"Stock Symbol"`
	Volatility           string `csv:"Volatility"`
	Beta                 string `csv:"Beta"`
	CAGR                 string `csv:"CAGR"`
	DebtToEquityRatio    string `csv:"Debt_to_Equity_Ratio"`
	EPS                  string `csv:"EPS"`
	DividendYield        string `csv:"Dividend_Yield"`
	RSI                  string `csv:"RSI"`
	MACD                 string `csv:"MACD"`
	PercentageDifference string `csv:"Percentage_Difference"`
	CorrelationWithEvent string `csv:"Correlation_with_event"`
}

func (r *instrumentRow) cells() map[contracts.Factor]string {
	return map[contracts.Factor]string{
		contracts.FactorVolatility:           r.Volatility,
		contracts.FactorBeta:                 r.Beta,
		contracts.FactorCAGR:                 r.CAGR,
		contracts.FactorDebtToEquity:         r.DebtToEquityRatio,
		contracts.FactorEPS:                  r.EPS,
		contracts.FactorDividendYield:        r.DividendYield,
		contracts.FactorRSI:                  r.RSI,
		contracts.FactorMACD:                 r.MACD,
		contracts.FactorPercentageDifference: r.PercentageDifference,
		contracts.FactorEventCorrelation:     r.CorrelationWithEvent,
	}
}

// CSVInstrumentSource loads the instrument table from a CSV export
// ⭐ SSOT: 스프레드시트(CSV) 입력은 여기서만 해석
type CSVInstrumentSource struct {
	path   string
	logger *logger.Logger
}

// NewCSVInstrumentSource creates a CSV-backed instrument source
func NewCSVInstrumentSource(path string, log *logger.Logger) *CSVInstrumentSource {
	return &CSVInstrumentSource{
		path:   path,
		logger: log.Module("instrument_csv"),
	}
}

// Load reads the whole file on every call (no caching between requests)
func (s *CSVInstrumentSource) Load(ctx context.Context) ([]contracts.InstrumentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open instrument table: %w", err)
	}
	defer f.Close()

	records, err := ReadInstruments(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	s.logger.WithFields(map[string]interface{}{
		"path": s.path,
		"rows": len(records),
	}).Debug("Instrument table loaded")

	return records, nil
}

// ReadInstruments parses CSV rows in file order. Blank symbols are skipped;
// a repeated symbol is an error. A leading UTF-8 BOM is ignored.
func ReadInstruments(r io.Reader) ([]contracts.InstrumentRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	if err := checkHeader(data); err != nil {
		return nil, err
	}

	var rows []*instrumentRow
	if err := gocsv.Unmarshal(bytes.NewReader(data), &rows); err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	seen := make(map[string]int, len(rows))
	records := make([]contracts.InstrumentRecord, 0, len(rows))

	for i, row := range rows {
		symbol := strings.TrimSpace(row.Symbol)
		if symbol == "" {
			continue
		}
		if first, dup := seen[symbol]; dup {
			// 헤더가 1행이므로 데이터 행 번호는 +2
			return nil, fmt.Errorf("%w: %s (rows %d and %d)", contracts.ErrDuplicateInstrument, symbol, first+2, i+2)
		}
		seen[symbol] = i

		factors := make(map[contracts.Factor]contracts.FactorValue, 10)
		for f, cell := range row.cells() {
			factors[f] = ParseCell(cell)
		}

		records = append(records, contracts.InstrumentRecord{
			Symbol:  symbol,
			Factors: factors,
		})
	}

	return records, nil
}

// checkHeader requires the symbol column; otherwise every row would be skipped silently
func checkHeader(data []byte) error {
	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	if err == io.EOF {
		return fmt.Errorf("%w: %q (empty file)", contracts.ErrMissingColumn, symbolColumn)
	}
	if err != nil {
		return fmt.Errorf("parse csv header: %w", err)
	}
	for _, name := range header {
		if name == symbolColumn {
			return nil
		}
	}
	return fmt.Errorf("%w: %q (header: %s)", contracts.ErrMissingColumn, symbolColumn, strings.Join(header, ", "))
}

// ParseCell coerces one cell: blank, non-numeric and NaN become missing
func ParseCell(cell string) contracts.FactorValue {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return contracts.Missing()
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return contracts.Missing()
	}
	return contracts.Present(v)
}

// rankingRow is the CSV export shape of a ranked instrument
type rankingRow struct {
	Rank       int     `csv:"Rank"`
	Symbol     string  `csv:"Stock Symbol"`
	TotalScore float64 `csv:"Total_Score"`

	Volatility           string `csv:"Volatility"`
	Beta                 string `csv:"Beta"`
	CAGR                 string `csv:"CAGR"`
	DebtToEquityRatio    string `csv:"Debt_to_Equity_Ratio"`
	EPS                  string `csv:"EPS"`
	DividendYield        string `csv:"Dividend_Yield"`
	RSI                  string `csv:"RSI"`
	MACD                 string `csv:"MACD"`
	PercentageDifference string `csv:"Percentage_Difference"`
	CorrelationWithEvent string `csv:"Correlation_with_event"`
}

// WriteRanking exports ranked instruments as CSV (missing cells stay blank)
func WriteRanking(w io.Writer, ranked []contracts.RankedInstrument) error {
	cell := func(v contracts.FactorValue) string {
		if !v.Valid {
			return ""
		}
		return strconv.FormatFloat(v.Value, 'f', -1, 64)
	}

	rows := make([]*rankingRow, len(ranked))
	for i, r := range ranked {
		rows[i] = &rankingRow{
			Rank:                 r.Rank,
			Symbol:               r.Symbol,
			TotalScore:           r.TotalScore,
			Volatility:           cell(r.Factor(contracts.FactorVolatility)),
			Beta:                 cell(r.Factor(contracts.FactorBeta)),
			CAGR:                 cell(r.Factor(contracts.FactorCAGR)),
			DebtToEquityRatio:    cell(r.Factor(contracts.FactorDebtToEquity)),
			EPS:                  cell(r.Factor(contracts.FactorEPS)),
			DividendYield:        cell(r.Factor(contracts.FactorDividendYield)),
			RSI:                  cell(r.Factor(contracts.FactorRSI)),
			MACD:                 cell(r.Factor(contracts.FactorMACD)),
			PercentageDifference: cell(r.Factor(contracts.FactorPercentageDifference)),
			CorrelationWithEvent: cell(r.Factor(contracts.FactorEventCorrelation)),
		}
	}

	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("write ranking csv: %w", err)
	}
	return nil
}
