package strategy

import (
	"context"
	"time"

	"equity-backtest/internal/model"
)

// Signal is a generator's intent for one symbol on one day. Only BUY and SELL
// are acted on by the engine; Confidence scales BUY sizing and is clamped to
// [0, 1].
type Signal struct {
	Symbol     string       `json:"symbol"`
	Action     model.Action `json:"action"`
	Confidence float64      `json:"confidence"`
	Reason     string       `json:"reason,omitempty"`
}

// Generator turns one day's bars into signals. It is called once per trading
// day, in date order. Implementations may keep their own history but never
// see or change portfolio state.
type Generator interface {
	GenerateSignals(ctx context.Context, date time.Time, snap model.Snapshot) ([]Signal, error)
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(ctx context.Context, date time.Time, snap model.Snapshot) ([]Signal, error)

func (f GeneratorFunc) GenerateSignals(ctx context.Context, date time.Time, snap model.Snapshot) ([]Signal, error) {
	return f(ctx, date, snap)
}

func buy(symbol string, conf float64, reason string) Signal {
	return Signal{Symbol: symbol, Action: model.ActionBuy, Confidence: conf, Reason: reason}
}

func sell(symbol string, reason string) Signal {
	return Signal{Symbol: symbol, Action: model.ActionSell, Confidence: 1, Reason: reason}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
