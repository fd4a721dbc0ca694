package backtest

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"equity-backtest/internal/data"
	"equity-backtest/internal/model"
	"equity-backtest/internal/strategy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buyOnce(conf float64) strategy.Generator {
	done := map[string]bool{}
	return strategy.GeneratorFunc(func(_ context.Context, _ time.Time, snap model.Snapshot) ([]strategy.Signal, error) {
		var out []strategy.Signal
		for _, sym := range snap.Symbols() {
			if !done[sym] {
				done[sym] = true
				out = append(out, strategy.Signal{Symbol: sym, Action: model.ActionBuy, Confidence: conf})
			}
		}
		return out, nil
	})
}

var silent = strategy.GeneratorFunc(func(context.Context, time.Time, model.Snapshot) ([]strategy.Signal, error) {
	return nil, nil
})

func runEngine(t *testing.T, cfg Config, bars map[string][]model.Bar, gen strategy.Generator, opts ...Option) (*Engine, *Result) {
	t.Helper()
	e, err := New(cfg, opts...)
	require.NoError(t, err)
	res, err := e.Run(context.Background(), data.NewMemorySource(bars), gen)
	require.NoError(t, err)
	return e, res
}

func TestEngine_StopLossScenario(t *testing.T) {
	cfg := testConfig()
	cfg.EndDate = day(2)

	_, res := runEngine(t, cfg, map[string][]model.Bar{"AAA": closesFrom(100, 90, 70)}, buyOnce(1))

	require.Len(t, res.Trades, 2)
	entry, exit := res.Trades[0], res.Trades[1]
	assert.Equal(t, model.ActionBuy, entry.Action)
	assert.Equal(t, 100, entry.Shares)
	assert.Equal(t, model.ActionSell, exit.Action)
	assert.Equal(t, model.ReasonStopLoss, exit.Reason)
	assert.InDelta(t, 95.0, exit.Price, 1e-9)
	assert.InDelta(t, -500.0, exit.PnL, 1e-9)

	require.Len(t, res.EquityCurve, 3)
	assert.InDelta(t, 10_000.0, res.EquityCurve[0].Equity, 1e-9)
	assert.InDelta(t, 9_500.0, res.EquityCurve[1].Equity, 1e-9)
	assert.InDelta(t, 9_500.0, res.EquityCurve[2].Equity, 1e-9)

	assert.InDelta(t, 9_500.0, res.Report.FinalEquity, 1e-9)
	assert.InDelta(t, -0.05, res.Report.TotalReturn, 1e-12)
	assert.Equal(t, 1, res.Report.TotalTrades)
	assert.Equal(t, 1, res.Report.LosingTrades)
}

func TestEngine_NoSignals(t *testing.T) {
	cfg := testConfig()
	_, res := runEngine(t, cfg, map[string][]model.Bar{"AAA": closesFrom(100, 101, 99, 102)}, silent)

	assert.Empty(t, res.Trades)
	require.Len(t, res.EquityCurve, 4)
	for _, p := range res.EquityCurve {
		assert.Equal(t, 10_000.0, p.Equity)
	}
	assert.Equal(t, 0.0, res.Report.TotalReturn)
	assert.Equal(t, 0.0, res.Report.SharpeRatio)
	assert.Equal(t, 0.0, res.Report.MaxDrawdown)
	assert.Equal(t, 10_000.0, res.FinalCash)
}

func TestEngine_TakeProfit(t *testing.T) {
	bars := closesFrom(100, 0)
	bars[1] = model.Bar{Timestamp: bars[1].Timestamp, Open: 101, High: 112, Low: 101, Close: 108}

	_, res := runEngine(t, testConfig(), map[string][]model.Bar{"AAA": bars}, buyOnce(1))

	require.Len(t, res.Trades, 2)
	assert.Equal(t, model.ReasonTakeProfit, res.Trades[1].Reason)
	assert.InDelta(t, 110.0, res.Trades[1].Price, 1e-9)
	assert.InDelta(t, 1_000.0, res.Trades[1].PnL, 1e-6)
}

func TestEngine_StopWinsWhenBarSpansBothLevels(t *testing.T) {
	bars := closesFrom(100, 0)
	bars[1] = model.Bar{Timestamp: bars[1].Timestamp, Open: 100, High: 111, Low: 94, Close: 105}

	_, res := runEngine(t, testConfig(), map[string][]model.Bar{"AAA": bars}, buyOnce(1))

	require.Len(t, res.Trades, 2)
	assert.Equal(t, model.ReasonStopLoss, res.Trades[1].Reason)
}

func TestEngine_SkipsWeekendsAndMissingDays(t *testing.T) {
	bars := []model.Bar{
		flat(day(0), 100), // Mon
		// Tue missing
		flat(day(4), 100), // Fri
		flat(day(5), 100), // Sat
		flat(day(6), 100), // Sun
		flat(day(7), 100), // Mon
	}
	var seen []time.Time
	gen := strategy.GeneratorFunc(func(_ context.Context, d time.Time, _ model.Snapshot) ([]strategy.Signal, error) {
		seen = append(seen, d)
		return nil, nil
	})

	cfg := testConfig()
	cfg.EndDate = day(7)
	_, res := runEngine(t, cfg, map[string][]model.Bar{"AAA": bars}, gen)

	assert.Equal(t, []time.Time{day(0), day(4), day(7)}, seen)
	assert.Len(t, res.EquityCurve, 3)
	assert.Equal(t, 3, res.Metadata.TradingDays)
}

func TestEngine_FinalizeClosesAndIsIdempotent(t *testing.T) {
	cfg := testConfig()
	e, res := runEngine(t, cfg, map[string][]model.Bar{"AAA": closesFrom(100, 101, 102)}, buyOnce(1))

	require.Len(t, res.Trades, 2)
	last := res.Trades[1]
	assert.Equal(t, model.ReasonEndOfBacktest, last.Reason)
	assert.InDelta(t, 102.0, last.Price, 1e-9)
	assert.InDelta(t, 200.0, last.PnL, 1e-9)
	assert.InDelta(t, 10_200.0, res.EquityCurve[len(res.EquityCurve)-1].Equity, 1e-9)
	assert.InDelta(t, 10_200.0, res.FinalCash, 1e-9)

	assert.Nil(t, e.Finalize())
	assert.Len(t, e.Ledger().Trades(), 2)
}

func TestEngine_ConfidenceScalesSize(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPositionSize = 0.5

	_, res := runEngine(t, cfg, map[string][]model.Bar{"AAA": closesFrom(100, 100)}, buyOnce(0.5))

	require.NotEmpty(t, res.Trades)
	assert.Equal(t, 25, res.Trades[0].Shares)
}

func TestEngine_RepeatedBuysKeepOnePosition(t *testing.T) {
	always := strategy.GeneratorFunc(func(_ context.Context, _ time.Time, snap model.Snapshot) ([]strategy.Signal, error) {
		return []strategy.Signal{{Symbol: "AAA", Action: model.ActionBuy, Confidence: 0.2}}, nil
	})
	maxOpen := 0
	observer := WithObserver(func(_ time.Time, l *Ledger) {
		if n := l.OpenCount(); n > maxOpen {
			maxOpen = n
		}
	})

	_, res := runEngine(t, testConfig(), map[string][]model.Bar{"AAA": closesFrom(100, 100, 100, 100)}, always, observer)

	assert.Equal(t, 1, maxOpen)
	buys := 0
	for _, tr := range res.Trades {
		if tr.Action == model.ActionBuy {
			buys++
		}
	}
	assert.Equal(t, 1, buys)
}

func TestEngine_CapitalIsConserved(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	bars := map[string][]model.Bar{}
	for _, sym := range []string{"AAA", "BBB"} {
		px := 100.0
		var closes []float64
		for i := 0; i < 40; i++ {
			px *= math.Exp(rng.NormFloat64() * 0.03)
			closes = append(closes, px)
		}
		series := closesFrom(closes...)
		for i := range series {
			series[i].High = series[i].Close * 1.01
			series[i].Low = series[i].Close * 0.99
		}
		bars[sym] = series
	}

	n := 0
	flip := strategy.GeneratorFunc(func(_ context.Context, _ time.Time, snap model.Snapshot) ([]strategy.Signal, error) {
		n++
		act := model.ActionBuy
		if n%3 == 0 {
			act = model.ActionSell
		}
		var out []strategy.Signal
		for _, sym := range snap.Symbols() {
			out = append(out, strategy.Signal{Symbol: sym, Action: act, Confidence: 0.8})
		}
		return out, nil
	})

	cfg := testConfig("AAA", "BBB")
	cfg.EndDate = day(80)
	cfg.MaxPositionSize = 0.5
	cfg.CommissionPerShare = 0.01
	cfg.SlippageBps = 5

	e, res := runEngine(t, cfg, bars, flip)

	require.NotEmpty(t, res.Trades)
	assert.Equal(t, 0, e.Ledger().OpenCount())

	sum := 0.0
	for _, tr := range res.Trades {
		sum += tr.PnL
	}
	assert.InDelta(t, cfg.InitialCapital+sum, res.FinalCash, 1e-6)
	assert.InDelta(t, res.FinalCash, res.Report.FinalEquity, 1e-6)
	assert.InDelta(t, sum, res.Report.TotalPnL, 1e-6)
}

func TestEngine_EntryPriceFallbackIsCounted(t *testing.T) {
	cfg := testConfig("AAA", "BBB")
	cfg.MaxPositionSize = 0.5
	bars := map[string][]model.Bar{
		"AAA": {flat(day(0), 100), flat(day(1), 100), flat(day(2), 100)},
		"BBB": {flat(day(0), 50), flat(day(2), 50)},
	}

	_, res := runEngine(t, cfg, bars, buyOnce(1))

	assert.Equal(t, 1, res.Metadata.EntryPriceFallbacks)
	assert.Equal(t, 1, res.Metadata.FallbackDays)
	assert.True(t, res.Report.Metadata.Approximate())
	assert.InDelta(t, 10_000.0, res.EquityCurve[1].Equity, 1e-9)
}

func TestEngine_NoDataFailsReport(t *testing.T) {
	_, res := runEngine(t, testConfig(), map[string][]model.Bar{}, silent)

	assert.True(t, res.Report.Failed())
	assert.Equal(t, ErrNoEquityData, res.Report.Error)
	assert.Empty(t, res.EquityCurve)
}

func TestEngine_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.StopLossPct = 0

	_, err := New(cfg)
	require.Error(t, err)
	var ce *ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "stop_loss_pct", ce.Field)
}

func TestEngine_GeneratorErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	gen := strategy.GeneratorFunc(func(context.Context, time.Time, model.Snapshot) ([]strategy.Signal, error) {
		return nil, boom
	})
	e, err := New(testConfig())
	require.NoError(t, err)

	_, err = e.Run(context.Background(), data.NewMemorySource(map[string][]model.Bar{"AAA": closesFrom(100)}), gen)
	assert.ErrorIs(t, err, boom)
}

func TestEngine_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e, err := New(testConfig())
	require.NoError(t, err)
	_, err = e.Run(ctx, data.NewMemorySource(map[string][]model.Bar{"AAA": closesFrom(100)}), silent)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_NilCollaborators(t *testing.T) {
	e, err := New(testConfig())
	require.NoError(t, err)

	_, err = e.Run(context.Background(), nil, silent)
	assert.Error(t, err)
	_, err = e.Run(context.Background(), data.NewMemorySource(nil), nil)
	assert.Error(t, err)
}
