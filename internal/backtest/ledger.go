package backtest

import (
	"math"
	"sort"
	"time"

	"equity-backtest/internal/model"

	"go.uber.org/zap"
)

// Ledger owns the cash balance, the open positions (at most one per symbol)
// and the append-only trade log. Only the simulation loop mutates it.
type Ledger struct {
	costs         CostModel
	gate          RiskGate
	stopLossPct   float64
	takeProfitPct float64

	cash      float64
	positions map[string]*model.Position
	trades    []model.Trade

	// marks are the evaluation prices the risk gate sees; the loop refreshes
	// them with each day's closes.
	marks map[string]float64

	log *zap.Logger
}

// NewLedger returns an empty ledger funded with cfg.InitialCapital.
func NewLedger(cfg Config, log *zap.Logger) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{
		costs:         cfg.Costs(),
		gate:          cfg.Gate(),
		stopLossPct:   cfg.StopLossPct,
		takeProfitPct: cfg.TakeProfitPct,
		cash:          cfg.InitialCapital,
		positions:     make(map[string]*model.Position),
		marks:         make(map[string]float64),
		log:           log,
	}
}

func (l *Ledger) Cash() float64 { return l.cash }

func (l *Ledger) OpenCount() int { return len(l.positions) }

// Position returns a copy of the open position for symbol.
func (l *Ledger) Position(symbol string) (model.Position, bool) {
	p, ok := l.positions[symbol]
	if !ok {
		return model.Position{}, false
	}
	return *p, true
}

// Positions returns copies of all open positions sorted by symbol.
func (l *Ledger) Positions() []model.Position {
	out := make([]model.Position, 0, len(l.positions))
	for _, sym := range l.openSymbols() {
		out = append(out, *l.positions[sym])
	}
	return out
}

// Trades returns a copy of the trade log.
func (l *Ledger) Trades() []model.Trade {
	out := make([]model.Trade, len(l.trades))
	copy(out, l.trades)
	return out
}

// SetMarks replaces the evaluation prices used by the risk gate.
func (l *Ledger) SetMarks(prices map[string]float64) {
	l.marks = make(map[string]float64, len(prices))
	for k, v := range prices {
		l.marks[k] = v
	}
}

// Open admits an entry. It returns nil when a position is already open for
// symbol or the risk gate rejects; both are logged at debug level.
func (l *Ledger) Open(date time.Time, symbol string, price float64, shares int, side model.Side, reason string) *model.Trade {
	if _, exists := l.positions[symbol]; exists {
		l.log.Debug("entry ignored, position already open", zap.String("symbol", symbol))
		return nil
	}
	ok, why := l.gate.CanOpen(symbol, price, shares, side, RiskState{
		Cash:      l.cash,
		Positions: l.positions,
		Prices:    l.marks,
	})
	if !ok {
		l.log.Debug("entry rejected",
			zap.String("symbol", symbol),
			zap.Float64("price", price),
			zap.Int("shares", shares),
			zap.String("reason", why),
		)
		return nil
	}

	action := model.EntryAction(side)
	slip := l.costs.Slippage(price, action)
	commission := l.costs.Commission(shares)
	n := float64(shares)

	pos := &model.Position{
		Symbol:           symbol,
		Side:             side,
		EntryTime:        date,
		Shares:           shares,
		EntryPrice:       price,
		EntryFill:        price + slip,
		HighestFavorable: price,
		EntrySlippage:    n * math.Abs(slip),
		EntryCommission:  commission,
		Reason:           reason,
	}
	if side == model.SideShort {
		pos.StopLoss = price * (1 + l.stopLossPct)
		pos.TakeProfit = price * (1 - l.takeProfitPct)
	} else {
		pos.StopLoss = price * (1 - l.stopLossPct)
		pos.TakeProfit = price * (1 + l.takeProfitPct)
	}

	l.cash -= pos.Cost()
	l.positions[symbol] = pos

	t := model.Trade{
		Timestamp:  date,
		Symbol:     symbol,
		Action:     action,
		Side:       side,
		Shares:     shares,
		Price:      price,
		Slippage:   pos.EntrySlippage,
		Commission: commission,
		PnL:        0,
		Reason:     reason,
	}
	l.trades = append(l.trades, t)
	return &t
}

// Close exits the open position for symbol at price. It returns nil when no
// position is open. The recorded PnL is the round trip's cash delta.
func (l *Ledger) Close(date time.Time, symbol string, price float64, reason string) *model.Trade {
	pos, ok := l.positions[symbol]
	if !ok {
		return nil
	}

	action := model.ExitAction(pos.Side)
	slip := l.costs.Slippage(price, action)
	commission := l.costs.Commission(pos.Shares)
	exitSlippage := float64(pos.Shares) * math.Abs(slip)

	pnl := pos.GrossPnL(price) - pos.EntrySlippage - exitSlippage - pos.EntryCommission - commission

	l.cash += pos.Cost() + pnl
	delete(l.positions, symbol)

	t := model.Trade{
		Timestamp:  date,
		Symbol:     symbol,
		Action:     action,
		Side:       pos.Side,
		Shares:     pos.Shares,
		Price:      price,
		Slippage:   exitSlippage,
		Commission: commission,
		PnL:        pnl,
		Reason:     reason,
	}
	l.trades = append(l.trades, t)
	return &t
}

// CloseAll force-closes every open position at prices[symbol], falling back
// to the entry price. Calling it with nothing open is a no-op.
func (l *Ledger) CloseAll(date time.Time, prices map[string]float64, reason string) []model.Trade {
	var out []model.Trade
	for _, sym := range l.openSymbols() {
		price, ok := prices[sym]
		if !ok {
			price = l.positions[sym].EntryPrice
		}
		if t := l.Close(date, sym, price, reason); t != nil {
			out = append(out, *t)
		}
	}
	return out
}

// MarkToMarket returns cash plus every open position valued at prices[symbol].
//
// A symbol missing from prices is valued at its entry price. That
// understates or overstates equity during data gaps; Unpriced reports which
// positions were affected so the approximation can be surfaced.
func (l *Ledger) MarkToMarket(prices map[string]float64) float64 {
	total := l.cash
	for sym, pos := range l.positions {
		p, ok := prices[sym]
		if !ok {
			p = pos.EntryPrice
		}
		total += pos.Value(p)
	}
	return total
}

// Unpriced lists open symbols that have no entry in prices.
func (l *Ledger) Unpriced(prices map[string]float64) []string {
	var out []string
	for _, sym := range l.openSymbols() {
		if _, ok := prices[sym]; !ok {
			out = append(out, sym)
		}
	}
	return out
}

// Affordable is the largest share count whose full entry cost fits in cash.
func (l *Ledger) Affordable(price float64, side model.Side) int {
	perShare := l.costs.Fill(price, model.EntryAction(side)) + l.costs.CommissionPerShare
	if perShare <= 0 || l.cash <= 0 {
		return 0
	}
	return int(math.Floor(l.cash / perShare))
}

// updateFavorable folds today's bar into the open position's running extreme.
func (l *Ledger) updateFavorable(symbol string, bar model.Bar) {
	if pos, ok := l.positions[symbol]; ok {
		pos.UpdateFavorable(bar)
	}
}

func (l *Ledger) openSymbols() []string {
	out := make([]string, 0, len(l.positions))
	for sym := range l.positions {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}
