// Package runner wires a validated run configuration to a bar source, a
// generator and the engine. The CLI and the HTTP API both go through it.
package runner

import (
	"context"
	"fmt"

	"equity-backtest/internal/analysis"
	"equity-backtest/internal/backtest"
	"equity-backtest/internal/config"
	"equity-backtest/internal/data"
	"equity-backtest/internal/strategy"

	"go.uber.org/zap"
)

// Run executes one backtest for the given backtest and strategy sections.
func Run(ctx context.Context, bt config.BacktestConfig, sc config.StrategyConfig, src data.BarSource, log *zap.Logger) (*backtest.Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cfg, err := bt.ToEngineConfig()
	if err != nil {
		return nil, err
	}
	gen, err := strategy.Build(sc.Name, sc.Params)
	if err != nil {
		return nil, &config.ValidationError{Field: "strategy", Reason: err.Error()}
	}
	engine, err := backtest.New(cfg, backtest.WithLogger(log.With(zap.String("strategy", sc.Name))))
	if err != nil {
		return nil, err
	}
	return engine.Run(ctx, src, gen)
}

// Outcome is one variation's result. Err is set instead of Result when the
// variation was invalid or its run failed.
type Outcome struct {
	Name   string
	Result *backtest.Result
	Err    error
}

// Compare runs every variation against base sequentially, sharing src.
// A failing variation is recorded and the rest still run; only context
// cancellation aborts the sweep.
func Compare(ctx context.Context, base config.Config, variations []config.Variation, src data.BarSource, log *zap.Logger) ([]Outcome, error) {
	if log == nil {
		log = zap.NewNop()
	}
	out := make([]Outcome, 0, len(variations))
	for _, v := range variations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		merged := v.Apply(base)
		res, err := Run(ctx, merged.Backtest, merged.Strategy, src, log.With(zap.String("variation", v.Name)))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn("variation failed", zap.String("variation", v.Name), zap.Error(err))
		}
		out = append(out, Outcome{Name: v.Name, Result: res, Err: err})
	}
	return out, nil
}

// Rank ranks outcomes by the given analysis key.
func Rank(outcomes []Outcome, by string) ([]analysis.Ranked, error) {
	entries := make([]analysis.Entry, 0, len(outcomes))
	for _, o := range outcomes {
		e := analysis.Entry{Name: o.Name}
		switch {
		case o.Err != nil:
			e.Err = o.Err.Error()
		case o.Result == nil:
			e.Err = "no result"
		default:
			e.Report = o.Result.Report
		}
		entries = append(entries, e)
	}
	ranked, err := analysis.RankReports(entries, by)
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}
	return ranked, nil
}
