package analysis

import (
	"fmt"
	"sort"

	"equity-backtest/internal/backtest"
	"equity-backtest/internal/model"
)

// RankBySymbolStats computes stats per symbol and sorts descending by
// ForesightReturn, then by symbol.
func RankBySymbolStats(bySymbol map[string][]model.Bar) []SymbolStats {
	out := make([]SymbolStats, 0, len(bySymbol))
	for sym, bars := range bySymbol {
		out = append(out, ComputeStats(sym, bars))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ForesightReturn != out[j].ForesightReturn {
			return out[i].ForesightReturn > out[j].ForesightReturn
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}

// Entry is one named run to rank. Err is set when the run could not be
// completed (invalid variation, source failure) and Report is then unused.
type Entry struct {
	Name   string
	Report backtest.Report
	Err    string
}

// Ranked is an Entry with its 1-based position. Rank is 0 for failed entries.
type Ranked struct {
	Rank   int              `json:"rank"`
	Name   string           `json:"name"`
	Report *backtest.Report `json:"summary,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// Rank keys accepted by RankReports.
const (
	BySharpe       = "sharpe"
	BySortino      = "sortino"
	ByReturn       = "return"
	ByDrawdown     = "drawdown"
	ByProfitFactor = "profit_factor"
)

func metricFor(by string) (func(backtest.Report) float64, error) {
	switch by {
	case "", BySharpe:
		return func(r backtest.Report) float64 { return r.SharpeRatio }, nil
	case BySortino:
		return func(r backtest.Report) float64 { return r.SortinoRatio }, nil
	case ByReturn:
		return func(r backtest.Report) float64 { return r.TotalReturn }, nil
	case ByDrawdown:
		// Drawdowns are <= 0, so larger is better.
		return func(r backtest.Report) float64 { return r.MaxDrawdown }, nil
	case ByProfitFactor:
		return func(r backtest.Report) float64 { return r.ProfitFactor }, nil
	default:
		return nil, fmt.Errorf("unknown rank key %q", by)
	}
}

// RankReports orders successful runs best-first by the given key, breaking
// ties by total return and then name. Failed runs and reports carrying an
// error follow, unranked, in input order. Ranked summaries omit the equity
// curve and trade log.
func RankReports(entries []Entry, by string) ([]Ranked, error) {
	metric, err := metricFor(by)
	if err != nil {
		return nil, err
	}

	var ok, failed []Entry
	for _, e := range entries {
		switch {
		case e.Err != "":
			failed = append(failed, e)
		case e.Report.Failed():
			e.Err = e.Report.Error
			failed = append(failed, e)
		default:
			ok = append(ok, e)
		}
	}
	sort.SliceStable(ok, func(i, j int) bool {
		a, b := metric(ok[i].Report), metric(ok[j].Report)
		if a != b {
			return a > b
		}
		if ok[i].Report.TotalReturn != ok[j].Report.TotalReturn {
			return ok[i].Report.TotalReturn > ok[j].Report.TotalReturn
		}
		return ok[i].Name < ok[j].Name
	})

	out := make([]Ranked, 0, len(entries))
	for i, e := range ok {
		r := e.Report
		r.EquityCurve, r.Trades = nil, nil
		out = append(out, Ranked{Rank: i + 1, Name: e.Name, Report: &r})
	}
	for _, e := range failed {
		out = append(out, Ranked{Name: e.Name, Error: e.Err})
	}
	return out, nil
}
