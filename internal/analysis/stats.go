package analysis

import (
	"math"
	"sort"
	"time"

	"equity-backtest/internal/model"
)

// SymbolStats is a strategy-independent summary of one symbol's bars, used
// to screen a universe before backtesting it.
type SymbolStats struct {
	Symbol string `json:"symbol"`

	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Count int       `json:"count"`

	MinClose  float64 `json:"min_close"`
	MaxClose  float64 `json:"max_close"`
	MeanClose float64 `json:"mean_close"`

	P05Return float64 `json:"p05_return"`
	P95Return float64 `json:"p95_return"`
	// AnnualVol is the sample stdev of daily close-to-close returns × sqrt(252).
	AnnualVol float64 `json:"annual_vol"`

	BuyHoldReturn float64 `json:"buy_hold_return"`
	MaxDrawdown   float64 `json:"max_drawdown"`

	// ForesightReturn compounds only the up days: a long-only trader who
	// knew every next close. It bounds any daily long-only strategy.
	ForesightReturn float64 `json:"foresight_return"`
}

// ComputeStats summarizes bars, which must be ascending.
func ComputeStats(symbol string, bars []model.Bar) SymbolStats {
	s := SymbolStats{Symbol: symbol}
	if len(bars) == 0 {
		return s
	}
	s.Count = len(bars)
	s.Start = bars[0].Timestamp
	s.End = bars[len(bars)-1].Timestamp

	sum := 0.0
	minv := math.Inf(1)
	maxv := math.Inf(-1)
	peak := math.Inf(-1)
	foresight := 1.0
	rets := make([]float64, 0, len(bars))
	for i, b := range bars {
		c := b.Close
		sum += c
		if c < minv {
			minv = c
		}
		if c > maxv {
			maxv = c
		}
		if c > peak {
			peak = c
		}
		if peak > 0 {
			if dd := (c - peak) / peak; dd < s.MaxDrawdown {
				s.MaxDrawdown = dd
			}
		}
		if i == 0 || bars[i-1].Close <= 0 {
			continue
		}
		r := c/bars[i-1].Close - 1
		rets = append(rets, r)
		if r > 0 {
			foresight *= 1 + r
		}
	}
	s.MinClose = minv
	s.MaxClose = maxv
	s.MeanClose = sum / float64(len(bars))
	if first := bars[0].Close; first > 0 {
		s.BuyHoldReturn = bars[len(bars)-1].Close/first - 1
	}
	s.ForesightReturn = foresight - 1

	if len(rets) > 1 {
		s.AnnualVol = sampleStdev(rets) * math.Sqrt(252)
	}
	sort.Float64s(rets)
	s.P05Return = percentileSorted(rets, 0.05)
	s.P95Return = percentileSorted(rets, 0.95)
	return s
}

func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	// Linear interpolation between order stats.
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func sampleStdev(xs []float64) float64 {
	m := 0.0
	for _, x := range xs {
		m += x
	}
	m /= float64(len(xs))
	ss := 0.0
	for _, x := range xs {
		ss += (x - m) * (x - m)
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}
