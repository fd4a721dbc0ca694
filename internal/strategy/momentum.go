package strategy

import (
	"context"
	"fmt"
	"time"

	"equity-backtest/internal/model"
)

// Momentum buys when the N-day rate of change clears EntryThreshold and
// sells once it falls below ExitThreshold.
//
// Confidence grows with the strength of the move: 0.5 at the threshold,
// 1.0 at twice the threshold.
type Momentum struct {
	Lookback       int
	EntryThreshold float64
	ExitThreshold  float64

	closes windows
}

func NewMomentum(p Params) (*Momentum, error) {
	m := &Momentum{
		Lookback:       p.Int("lookback", 20),
		EntryThreshold: p.Float("entry_threshold", 0.05),
		ExitThreshold:  p.Float("exit_threshold", 0),
	}
	if m.Lookback < 1 {
		return nil, &ParamError{Strategy: "momentum", Param: "lookback", Reason: "must be >= 1"}
	}
	if m.EntryThreshold <= 0 {
		return nil, &ParamError{Strategy: "momentum", Param: "entry_threshold", Reason: "must be > 0"}
	}
	if m.ExitThreshold >= m.EntryThreshold {
		return nil, &ParamError{Strategy: "momentum", Param: "exit_threshold", Reason: "must be below entry_threshold"}
	}
	// Lookback returns need Lookback+1 closes.
	m.closes = newWindows(m.Lookback + 1)
	return m, nil
}

func (m *Momentum) GenerateSignals(_ context.Context, _ time.Time, snap model.Snapshot) ([]Signal, error) {
	var out []Signal
	for _, sym := range snap.Symbols() {
		w := m.closes.push(sym, snap[sym].Close)
		if !w.full() || w.first() <= 0 {
			continue
		}
		roc := w.last()/w.first() - 1
		switch {
		case roc >= m.EntryThreshold:
			conf := clamp(roc/(2*m.EntryThreshold), 0.5, 1)
			out = append(out, buy(sym, conf, fmt.Sprintf("roc %.4f >= %.4f", roc, m.EntryThreshold)))
		case roc < m.ExitThreshold:
			out = append(out, sell(sym, fmt.Sprintf("roc %.4f < %.4f", roc, m.ExitThreshold)))
		}
	}
	return out, nil
}
