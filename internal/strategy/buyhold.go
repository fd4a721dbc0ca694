package strategy

import (
	"context"
	"time"

	"equity-backtest/internal/model"
)

// BuyAndHold buys every symbol the first day it has a bar and never sells.
// Protective exits and end-of-run finalization still close its positions.
type BuyAndHold struct {
	Confidence float64

	bought map[string]bool
}

func NewBuyAndHold(p Params) (*BuyAndHold, error) {
	conf := p.Float("confidence", 1)
	if conf <= 0 || conf > 1 {
		return nil, &ParamError{Strategy: "buy_and_hold", Param: "confidence", Reason: "must be in (0, 1]"}
	}
	return &BuyAndHold{Confidence: conf, bought: make(map[string]bool)}, nil
}

func (s *BuyAndHold) GenerateSignals(_ context.Context, _ time.Time, snap model.Snapshot) ([]Signal, error) {
	var out []Signal
	for _, sym := range snap.Symbols() {
		if s.bought[sym] {
			continue
		}
		s.bought[sym] = true
		out = append(out, buy(sym, s.Confidence, "initial allocation"))
	}
	return out, nil
}
