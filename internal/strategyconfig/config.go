package strategyconfig

import "github.com/wonny/eventreport/internal/contracts"

// Config는 이벤트 리포트 전략의 전체 설정
type Config struct {
	Meta      Meta      `yaml:"meta" json:"meta"`
	Scoring   Scoring   `yaml:"scoring" json:"scoring"`
	Selection Selection `yaml:"selection" json:"selection"`
	Metrics   Metrics   `yaml:"metrics" json:"metrics"`
	Report    Report    `yaml:"report" json:"report"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID  string `yaml:"strategy_id" json:"strategy_id"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Scoring 팩터 가중치
type Scoring struct {
	Weights Weights `yaml:"weights" json:"weights"`
}

// Weights 10개 팩터 가중치
// 포인터: 누락(nil)과 0을 구분해야 ConfigurationError 를 낼 수 있음
type Weights struct {
	Volatility           *float64 `yaml:"Volatility" json:"Volatility"`
	Beta                 *float64 `yaml:"Beta" json:"Beta"`
	CAGR                 *float64 `yaml:"CAGR" json:"CAGR"`
	DebtToEquityRatio    *float64 `yaml:"Debt_to_Equity_Ratio" json:"Debt_to_Equity_Ratio"`
	EPS                  *float64 `yaml:"EPS" json:"EPS"`
	DividendYield        *float64 `yaml:"Dividend_Yield" json:"Dividend_Yield"`
	RSI                  *float64 `yaml:"RSI" json:"RSI"`
	MACD                 *float64 `yaml:"MACD" json:"MACD"`
	PercentageDifference *float64 `yaml:"Percentage_Difference" json:"Percentage_Difference"`
	CorrelationWithEvent *float64 `yaml:"Correlation_with_event" json:"Correlation_with_event"`
}

// Model converts to a WeightModel; missing weights are left out so that
// scoring.ValidateWeights reports them
func (w Weights) Model() contracts.WeightModel {
	m := contracts.WeightModel{}
	set := func(f contracts.Factor, v *float64) {
		if v != nil {
			m[f] = *v
		}
	}
	set(contracts.FactorVolatility, w.Volatility)
	set(contracts.FactorBeta, w.Beta)
	set(contracts.FactorCAGR, w.CAGR)
	set(contracts.FactorDebtToEquity, w.DebtToEquityRatio)
	set(contracts.FactorEPS, w.EPS)
	set(contracts.FactorDividendYield, w.DividendYield)
	set(contracts.FactorRSI, w.RSI)
	set(contracts.FactorMACD, w.MACD)
	set(contracts.FactorPercentageDifference, w.PercentageDifference)
	set(contracts.FactorEventCorrelation, w.CorrelationWithEvent)
	return m
}

// WeightsFromModel builds the YAML shape from a WeightModel
func WeightsFromModel(m contracts.WeightModel) Weights {
	get := func(f contracts.Factor) *float64 {
		v, ok := m[f]
		if !ok {
			return nil
		}
		return &v
	}
	return Weights{
		Volatility:           get(contracts.FactorVolatility),
		Beta:                 get(contracts.FactorBeta),
		CAGR:                 get(contracts.FactorCAGR),
		DebtToEquityRatio:    get(contracts.FactorDebtToEquity),
		EPS:                  get(contracts.FactorEPS),
		DividendYield:        get(contracts.FactorDividendYield),
		RSI:                  get(contracts.FactorRSI),
		MACD:                 get(contracts.FactorMACD),
		PercentageDifference: get(contracts.FactorPercentageDifference),
		CorrelationWithEvent: get(contracts.FactorEventCorrelation),
	}
}

// Selection 상위 N (유니버스) / 상위 K (지표 계산 대상)
type Selection struct {
	UniverseSize int `yaml:"universe_size" json:"universe_size"` // N (기본: 100)
	MetricsSize  int `yaml:"metrics_size" json:"metrics_size"`   // K (기본: 20)
}

// Metrics 지표 계산 설정
type Metrics struct {
	Benchmark     string `yaml:"benchmark" json:"benchmark"`           // 예: ^NSEI
	LookbackYears int    `yaml:"lookback_years" json:"lookback_years"` // 가격 이력 기간
	TradingDays   int    `yaml:"trading_days" json:"trading_days"`     // 연환산 (252)
}

// Report 리포트 표기
type Report struct {
	Title   string `yaml:"title" json:"title"`
	Analyst string `yaml:"analyst" json:"analyst"`
}
