package backtest

import (
	"fmt"

	"equity-backtest/internal/model"
)

// RiskState is the view of the ledger the gate needs to admit an entry.
type RiskState struct {
	Cash      float64
	Positions map[string]*model.Position
	// Prices are the current evaluation prices for held symbols.
	Prices map[string]float64
}

// RiskGate admits or rejects proposed entries using three independent caps.
type RiskGate struct {
	MaxPositionSize  float64
	MaxTotalExposure float64
	Costs            CostModel
}

// CanOpen reports whether opening shares of symbol at price passes all caps.
// When it does not, reason describes the first failing check. Rejection is
// policy, not failure: callers skip the intent and carry on.
//
// Held symbols without an evaluation price are valued at the incoming
// trade's price. This is an approximation kept for parity with historical
// results.
func (g RiskGate) CanOpen(symbol string, price float64, shares int, side model.Side, st RiskState) (bool, string) {
	if shares < 1 || price <= 0 {
		return false, "non-positive size or price"
	}
	notional := price * float64(shares)

	cost := g.Costs.EntryCost(price, shares, side)
	if cost > st.Cash {
		return false, fmt.Sprintf("insufficient cash: have %.2f, need %.2f", st.Cash, cost)
	}

	total := st.Cash
	exposure := 0.0
	for sym, pos := range st.Positions {
		p, ok := st.Prices[sym]
		if !ok {
			p = price
		}
		total += pos.Value(p)
		exposure += pos.Notional(p)
	}

	if limit := total * g.MaxPositionSize; notional > limit {
		return false, fmt.Sprintf("position cap: %.2f > %.2f", notional, limit)
	}
	if limit := total * g.MaxTotalExposure; exposure+notional > limit {
		return false, fmt.Sprintf("exposure cap: %.2f > %.2f", exposure+notional, limit)
	}
	return true, ""
}
