package backtest

import (
	"math"

	"equity-backtest/internal/model"
)

// TradingDaysPerYear annualizes daily Sharpe/Sortino.
const TradingDaysPerYear = 252

// ComputeReport rolls the equity curve and trade log up into a Report.
// It is pure. An empty curve yields a Report with only Error set.
func ComputeReport(curve []model.EquityPoint, trades []model.Trade, initialCapital float64) Report {
	if len(curve) == 0 {
		return Report{Error: ErrNoEquityData}
	}

	r := Report{
		InitialCapital: initialCapital,
		FinalEquity:    curve[len(curve)-1].Equity,
		EquityCurve:    curve,
		Trades:         trades,
	}
	if initialCapital != 0 {
		r.TotalReturn = (r.FinalEquity - initialCapital) / initialCapital
	}
	r.TotalReturnPct = pct(r.TotalReturn)

	var winSum, lossSum float64
	for _, t := range trades {
		if !t.IsExit() {
			continue
		}
		r.TotalTrades++
		r.TotalPnL += t.PnL
		switch {
		case t.PnL > 0:
			r.WinningTrades++
			winSum += t.PnL
		case t.PnL < 0:
			r.LosingTrades++
			lossSum += t.PnL
		}
	}
	if r.TotalTrades > 0 {
		r.WinRate = float64(r.WinningTrades) / float64(r.TotalTrades)
		r.AvgTrade = r.TotalPnL / float64(r.TotalTrades)
	}
	r.WinRatePct = pct(r.WinRate)
	if r.WinningTrades > 0 {
		r.AvgWin = winSum / float64(r.WinningTrades)
	}
	if r.LosingTrades > 0 {
		r.AvgLoss = lossSum / float64(r.LosingTrades)
	}
	if lossSum != 0 {
		r.ProfitFactor = math.Abs(winSum) / math.Abs(lossSum)
	}

	r.MaxDrawdown = MaxDrawdown(curve)
	r.MaxDrawdownPct = pct(r.MaxDrawdown)

	returns := DailyReturns(curve)
	r.SharpeRatio = Sharpe(returns)
	r.SortinoRatio = Sortino(returns)
	return r
}

// DailyReturns is the simple return between consecutive samples.
// Steps from a non-positive equity are skipped.
func DailyReturns(curve []model.EquityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}
	out := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev <= 0 {
			continue
		}
		out = append(out, (curve[i].Equity-prev)/prev)
	}
	return out
}

// MaxDrawdown is the most negative (equity - running peak) / running peak.
// It is <= 0.
func MaxDrawdown(curve []model.EquityPoint) float64 {
	peak := math.Inf(-1)
	worst := 0.0
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak <= 0 {
			continue
		}
		if dd := (p.Equity - peak) / peak; dd < worst {
			worst = dd
		}
	}
	return worst
}

// Sharpe is mean/stdev of daily returns, annualized. It is 0 for fewer than
// two returns or zero volatility.
func Sharpe(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	sd := stdev(returns)
	if sd == 0 {
		return 0
	}
	return mean(returns) / sd * math.Sqrt(TradingDaysPerYear)
}

// Sortino is Sharpe with only negative returns in the denominator. It is 0
// when there are fewer than two negative returns or they have no variance.
func Sortino(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	if len(downside) < 2 {
		return 0
	}
	sd := stdev(downside)
	if sd == 0 {
		return 0
	}
	return mean(returns) / sd * math.Sqrt(TradingDaysPerYear)
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stdev is the sample standard deviation (n-1 denominator).
func stdev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	ss := 0.0
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}
