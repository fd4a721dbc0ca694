package backtest

import "equity-backtest/internal/model"

// CostModel converts a trade intent into slippage and commission.
type CostModel struct {
	CommissionPerShare float64
	SlippageBps        float64
}

// Slippage returns the signed per-share price adjustment for action.
// The sign always worsens the fill: buy-side actions pay up, sell-side
// actions receive less.
func (c CostModel) Slippage(price float64, action model.Action) float64 {
	amt := price * (c.SlippageBps / 10_000)
	if action.IsBuySide() {
		return amt
	}
	return -amt
}

// Commission is linear in shares.
func (c CostModel) Commission(shares int) float64 {
	return float64(shares) * c.CommissionPerShare
}

// Fill is the execution price after slippage.
func (c CostModel) Fill(price float64, action model.Action) float64 {
	return price + c.Slippage(price, action)
}

// EntryCost is the cash needed to open shares at price on side.
func (c CostModel) EntryCost(price float64, shares int, side model.Side) float64 {
	return float64(shares)*c.Fill(price, model.EntryAction(side)) + c.Commission(shares)
}
