package backtest

import (
	"encoding/json"

	"equity-backtest/internal/model"

	"github.com/shopspring/decimal"
)

// ErrNoEquityData is reported in Report.Error when a run produced no samples.
const ErrNoEquityData = "no equity data"

// Result is everything a run produced.
type Result struct {
	Config      Config
	EquityCurve []model.EquityPoint
	Trades      []model.Trade
	FinalCash   float64
	Metadata    Metadata
	Report      Report
}

// Metadata flags approximations made while simulating.
type Metadata struct {
	TradingDays int `json:"trading_days"`
	// EntryPriceFallbacks counts position-days valued at entry price because
	// the symbol had no bar that day. FallbackDays counts the days affected.
	EntryPriceFallbacks int `json:"entry_price_fallbacks"`
	FallbackDays        int `json:"fallback_days"`
}

// Approximate reports whether any equity sample used the entry-price fallback.
func (m Metadata) Approximate() bool { return m.EntryPriceFallbacks > 0 }

// Report is the performance summary of a run.
//
// Callers must check Error first: when it is set (an empty equity curve) the
// other fields are zero.
type Report struct {
	Error string `json:"error,omitempty"`

	InitialCapital float64 `json:"initial_capital"`
	FinalEquity    float64 `json:"final_equity"`
	TotalReturn    float64 `json:"total_return"`
	TotalReturnPct float64 `json:"total_return_pct"`
	TotalPnL       float64 `json:"total_pnl"`

	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"`
	WinRatePct    float64 `json:"win_rate_pct"`
	AvgWin        float64 `json:"avg_win"`
	AvgLoss       float64 `json:"avg_loss"`
	AvgTrade      float64 `json:"avg_trade"`
	ProfitFactor  float64 `json:"profit_factor"`

	MaxDrawdown    float64 `json:"max_drawdown"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
	SortinoRatio   float64 `json:"sortino_ratio"`

	EquityCurve []model.EquityPoint `json:"equity_curve,omitempty"`
	Trades      []model.Trade       `json:"trades,omitempty"`
	Metadata    Metadata            `json:"metadata"`
}

// Failed reports whether the report carries an error instead of metrics.
func (r Report) Failed() bool { return r.Error != "" }

// MarshalJSON renders a failed report as just {"error": ...}.
func (r Report) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return json.Marshal(map[string]string{"error": r.Error})
	}
	type plain Report
	return json.Marshal(plain(r))
}

// pct converts a fraction to a percentage rounded to 4 places.
func pct(x float64) float64 {
	return decimal.NewFromFloat(x).Mul(decimal.NewFromInt(100)).Round(4).InexactFloat64()
}
