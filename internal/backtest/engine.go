package backtest

import (
	"context"
	"fmt"
	"math"
	"time"

	"equity-backtest/internal/data"
	"equity-backtest/internal/model"
	"equity-backtest/internal/strategy"

	"go.uber.org/zap"
)

// Engine runs one backtest. Build a fresh Engine per run; it holds no state
// shared with other runs.
type Engine struct {
	cfg    Config
	log    *zap.Logger
	ledger *Ledger

	curve     []model.EquityPoint
	lastClose map[string]float64
	lastDay   time.Time
	meta      Metadata

	observer func(day time.Time, l *Ledger)
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger. The default discards output.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithObserver registers fn to be called at the end of every simulated day,
// after the equity sample is recorded. fn must not mutate the ledger.
func WithObserver(fn func(day time.Time, l *Ledger)) Option {
	return func(e *Engine) { e.observer = fn }
}

// New validates cfg and returns an engine ready to Run.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid backtest config: %w", err)
	}
	e := &Engine{
		cfg:       cfg,
		log:       zap.NewNop(),
		lastClose: make(map[string]float64),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.ledger = NewLedger(cfg, e.log)
	return e, nil
}

// Ledger exposes the engine's ledger for inspection.
func (e *Engine) Ledger() *Ledger { return e.ledger }

// Run executes the backtest over [StartDate, EndDate].
//
// The only suspension points are the bar source and the generator; both are
// called sequentially. ctx is checked between days.
func (e *Engine) Run(ctx context.Context, src data.BarSource, gen strategy.Generator) (*Result, error) {
	if src == nil {
		return nil, fmt.Errorf("bar source is nil")
	}
	if gen == nil {
		return nil, fmt.Errorf("signal generator is nil")
	}

	bars, err := e.loadBars(ctx, src)
	if err != nil {
		return nil, err
	}

	start := model.Day(e.cfg.StartDate)
	end := model.Day(e.cfg.EndDate)
	e.log.Info("backtest starting",
		zap.String("start", start.Format("2006-01-02")),
		zap.String("end", end.Format("2006-01-02")),
		zap.Strings("symbols", e.cfg.Symbols),
		zap.Float64("initial_capital", e.cfg.InitialCapital),
	)

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if model.IsWeekend(day) {
			continue
		}
		snap := make(model.Snapshot, len(bars))
		for sym, byDay := range bars {
			if b, ok := byDay[day]; ok {
				snap[sym] = b
			}
		}
		if len(snap) == 0 {
			continue
		}
		if err := e.step(ctx, day, snap, gen); err != nil {
			return nil, fmt.Errorf("day %s: %w", day.Format("2006-01-02"), err)
		}
	}

	e.Finalize()

	res := &Result{
		Config:      e.cfg,
		EquityCurve: append([]model.EquityPoint(nil), e.curve...),
		Trades:      e.ledger.Trades(),
		FinalCash:   e.ledger.Cash(),
		Metadata:    e.meta,
	}
	res.Report = ComputeReport(res.EquityCurve, res.Trades, e.cfg.InitialCapital)
	res.Report.Metadata = e.meta

	e.log.Info("backtest finished",
		zap.Int("days", len(res.EquityCurve)),
		zap.Int("trades", res.Report.TotalTrades),
		zap.Float64("final_equity", res.Report.FinalEquity),
	)
	return res, nil
}

// Finalize force-closes every open position at its symbol's last known close
// with reason END_OF_BACKTEST. A second call finds nothing open and is a no-op.
func (e *Engine) Finalize() []model.Trade {
	if e.ledger.OpenCount() == 0 {
		return nil
	}
	closed := e.ledger.CloseAll(e.lastDay, e.lastClose, model.ReasonEndOfBacktest)
	if n := len(e.curve); n > 0 {
		// Closing at the last close only moves costs; keep the final sample
		// consistent with the settled cash.
		e.curve[n-1].Equity = e.ledger.MarkToMarket(e.lastClose)
	}
	return closed
}

func (e *Engine) step(ctx context.Context, day time.Time, snap model.Snapshot, gen strategy.Generator) error {
	closes := snap.Closes()
	for sym, c := range closes {
		e.lastClose[sym] = c
	}
	e.lastDay = day
	e.ledger.SetMarks(closes)

	// Mark.
	for _, pos := range e.ledger.Positions() {
		if bar, ok := snap[pos.Symbol]; ok {
			e.ledger.updateFavorable(pos.Symbol, bar)
		}
	}

	// Exit resolution against the day's range.
	for _, pos := range e.ledger.Positions() {
		bar, ok := snap[pos.Symbol]
		if !ok {
			continue
		}
		price, reason, hit := exitFor(pos, ResolveTouch(pos, bar))
		if !hit {
			continue
		}
		if t := e.ledger.Close(day, pos.Symbol, price, reason); t != nil {
			e.log.Debug("protective exit",
				zap.String("symbol", t.Symbol),
				zap.String("reason", reason),
				zap.Float64("price", price),
				zap.Float64("pnl", t.PnL),
			)
		}
	}

	signals, err := gen.GenerateSignals(ctx, day, snap.Clone())
	if err != nil {
		return fmt.Errorf("generate signals: %w", err)
	}
	for _, sig := range signals {
		e.apply(day, sig, snap, closes)
	}

	equity := e.ledger.MarkToMarket(closes)
	if unpriced := e.ledger.Unpriced(closes); len(unpriced) > 0 {
		e.meta.EntryPriceFallbacks += len(unpriced)
		e.meta.FallbackDays++
	}
	e.curve = append(e.curve, model.EquityPoint{Timestamp: day, Equity: equity})
	e.meta.TradingDays++

	if e.observer != nil {
		e.observer(day, e.ledger)
	}
	return nil
}

func (e *Engine) apply(day time.Time, sig strategy.Signal, snap model.Snapshot, closes map[string]float64) {
	bar, hasBar := snap[sig.Symbol]
	_, open := e.ledger.Position(sig.Symbol)

	switch sig.Action {
	case model.ActionSell:
		if !open || !hasBar {
			return
		}
		e.ledger.Close(day, sig.Symbol, bar.Close, model.ReasonSignal)

	case model.ActionBuy:
		if open || !hasBar || bar.Close <= 0 {
			return
		}
		total := e.ledger.MarkToMarket(closes)
		conf := math.Max(0, math.Min(1, sig.Confidence))
		shares := int(math.Floor(total * e.cfg.MaxPositionSize * conf / bar.Close))
		if afford := e.ledger.Affordable(bar.Close, model.SideLong); afford < shares {
			shares = afford
		}
		if shares <= 0 {
			e.log.Debug("buy skipped, zero shares",
				zap.String("symbol", sig.Symbol),
				zap.Float64("confidence", sig.Confidence),
			)
			return
		}
		e.ledger.Open(day, sig.Symbol, bar.Close, shares, model.SideLong, sig.Reason)
	}
}

// loadBars fetches every symbol and indexes its bars by day.
// Symbols with no data are kept with an empty index.
func (e *Engine) loadBars(ctx context.Context, src data.BarSource) (map[string]map[time.Time]model.Bar, error) {
	out := make(map[string]map[time.Time]model.Bar, len(e.cfg.Symbols))
	for _, sym := range e.cfg.Symbols {
		bars, err := src.GetBars(ctx, sym, e.cfg.StartDate, e.cfg.EndDate)
		if err != nil {
			return nil, fmt.Errorf("load bars for %s: %w", sym, err)
		}
		if len(bars) == 0 {
			e.log.Warn("no bars for symbol", zap.String("symbol", sym))
		}
		byDay := make(map[time.Time]model.Bar, len(bars))
		for _, b := range bars {
			byDay[model.Day(b.Timestamp)] = b
		}
		out[sym] = byDay
	}
	return out, nil
}
