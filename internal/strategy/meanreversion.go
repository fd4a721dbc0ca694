package strategy

import (
	"context"
	"fmt"
	"math"
	"time"

	"equity-backtest/internal/model"
)

// MeanReversion buys when the close sits EntryZ standard deviations below
// its N-day mean and sells when it recovers to ExitZ.
type MeanReversion struct {
	Lookback int
	EntryZ   float64 // negative, e.g. -2
	ExitZ    float64

	closes windows
}

func NewMeanReversion(p Params) (*MeanReversion, error) {
	m := &MeanReversion{
		Lookback: p.Int("lookback", 20),
		EntryZ:   p.Float("entry_z", -2),
		ExitZ:    p.Float("exit_z", 0),
	}
	if m.Lookback < 2 {
		return nil, &ParamError{Strategy: "mean_reversion", Param: "lookback", Reason: "must be >= 2"}
	}
	if m.EntryZ >= 0 {
		return nil, &ParamError{Strategy: "mean_reversion", Param: "entry_z", Reason: "must be negative"}
	}
	if m.ExitZ <= m.EntryZ {
		return nil, &ParamError{Strategy: "mean_reversion", Param: "exit_z", Reason: "must be above entry_z"}
	}
	m.closes = newWindows(m.Lookback)
	return m, nil
}

func (m *MeanReversion) GenerateSignals(_ context.Context, _ time.Time, snap model.Snapshot) ([]Signal, error) {
	var out []Signal
	for _, sym := range snap.Symbols() {
		w := m.closes.push(sym, snap[sym].Close)
		if !w.full() {
			continue
		}
		sd := w.stdev()
		if sd == 0 {
			continue
		}
		z := (w.last() - w.mean()) / sd
		switch {
		case z <= m.EntryZ:
			conf := clamp(math.Abs(z)/(2*math.Abs(m.EntryZ)), 0.5, 1)
			out = append(out, buy(sym, conf, fmt.Sprintf("z %.2f <= %.2f", z, m.EntryZ)))
		case z >= m.ExitZ:
			out = append(out, sell(sym, fmt.Sprintf("z %.2f >= %.2f", z, m.ExitZ)))
		}
	}
	return out, nil
}
