package model

import "time"

// Trade is one immutable ledger entry. Entries carry PnL = 0; exits carry the
// round trip's PnL net of both legs' slippage and commission.
type Trade struct {
	Timestamp  time.Time `json:"timestamp"`
	Symbol     string    `json:"symbol"`
	Action     Action    `json:"action"`
	Side       Side      `json:"side"`
	Shares     int       `json:"shares"`
	Price      float64   `json:"price"`
	Slippage   float64   `json:"slippage"`
	Commission float64   `json:"commission"`
	PnL        float64   `json:"pnl"`
	Reason     string    `json:"reason"`
}

// IsExit reports whether this trade closed a position.
func (t Trade) IsExit() bool {
	return t.Action.IsExit()
}

// EquityPoint is one sample of the equity curve.
type EquityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Equity    float64   `json:"equity"`
}
