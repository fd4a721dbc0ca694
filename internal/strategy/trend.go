package strategy

import (
	"context"
	"time"

	"equity-backtest/internal/model"
)

// Trend is a fast/slow simple moving average crossover. It buys on the day
// the fast average crosses above the slow one and sells on the cross below.
type Trend struct {
	Fast int
	Slow int

	fast, slow windows
	above      map[string]bool
	seen       map[string]bool
}

func NewTrend(p Params) (*Trend, error) {
	t := &Trend{
		Fast: p.Int("fast", 10),
		Slow: p.Int("slow", 30),
	}
	if t.Fast < 1 {
		return nil, &ParamError{Strategy: "trend", Param: "fast", Reason: "must be >= 1"}
	}
	if t.Slow <= t.Fast {
		return nil, &ParamError{Strategy: "trend", Param: "slow", Reason: "must be greater than fast"}
	}
	t.fast = newWindows(t.Fast)
	t.slow = newWindows(t.Slow)
	t.above = make(map[string]bool)
	t.seen = make(map[string]bool)
	return t, nil
}

func (t *Trend) GenerateSignals(_ context.Context, _ time.Time, snap model.Snapshot) ([]Signal, error) {
	var out []Signal
	for _, sym := range snap.Symbols() {
		c := snap[sym].Close
		fw := t.fast.push(sym, c)
		sw := t.slow.push(sym, c)
		if !sw.full() {
			continue
		}
		above := fw.mean() > sw.mean()
		prev, seen := t.above[sym], t.seen[sym]
		t.above[sym], t.seen[sym] = above, true
		if !seen || above == prev {
			continue
		}
		if above {
			out = append(out, buy(sym, 1, "fast sma crossed above slow"))
		} else {
			out = append(out, sell(sym, "fast sma crossed below slow"))
		}
	}
	return out, nil
}
