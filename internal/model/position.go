package model

import (
	"math"
	"time"
)

// Position is an open holding in one symbol.
//
// EntryPrice is the quoted price the signal traded at; EntryFill is that price
// after slippage. Stop and target levels are derived from EntryPrice.
type Position struct {
	Symbol    string
	Side      Side
	EntryTime time.Time
	Shares    int

	EntryPrice float64
	EntryFill  float64

	StopLoss   float64
	TakeProfit float64

	// HighestFavorable is the best price seen since entry: the highest high
	// for a long, the lowest low for a short.
	HighestFavorable float64

	// Costs paid on entry, in currency (not per share).
	EntrySlippage   float64
	EntryCommission float64

	Reason string
}

// Cost is the cash debited when the position was opened.
func (p *Position) Cost() float64 {
	return float64(p.Shares)*p.EntryFill + p.EntryCommission
}

// Notional is the gross exposure at price.
func (p *Position) Notional(price float64) float64 {
	return float64(p.Shares) * price
}

// Value is the position's contribution to portfolio value at price.
// Longs are worth shares*price. Shorts hold their entry proceeds as
// collateral, so they are worth collateral plus unrealized gain.
func (p *Position) Value(price float64) float64 {
	n := float64(p.Shares)
	if p.Side == SideShort {
		return n * (2*p.EntryFill - price)
	}
	return n * price
}

// GrossPnL is the price move times shares, before any costs.
func (p *Position) GrossPnL(price float64) float64 {
	n := float64(p.Shares)
	if p.Side == SideShort {
		return n * (p.EntryPrice - price)
	}
	return n * (price - p.EntryPrice)
}

// UpdateFavorable folds a bar's range into HighestFavorable.
func (p *Position) UpdateFavorable(b Bar) {
	if p.Side == SideShort {
		if p.HighestFavorable == 0 {
			p.HighestFavorable = b.Low
			return
		}
		p.HighestFavorable = math.Min(p.HighestFavorable, b.Low)
		return
	}
	p.HighestFavorable = math.Max(p.HighestFavorable, b.High)
}
