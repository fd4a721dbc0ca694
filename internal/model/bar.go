package model

import (
	"sort"
	"time"
)

// Bar is one day's OHLCV for a symbol.
// Prices are in the instrument's quote currency; Timestamp is the session date.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Day normalizes t to midnight UTC of its calendar date.
// Bars and simulation days are matched on this key.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsWeekend reports whether t falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Snapshot maps symbol -> that day's bar. Symbols without data that day are absent.
type Snapshot map[string]Bar

// Symbols returns the snapshot's symbols in sorted order.
func (s Snapshot) Symbols() []string {
	out := make([]string, 0, len(s))
	for sym := range s {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// Closes returns symbol -> close price.
func (s Snapshot) Closes() map[string]float64 {
	out := make(map[string]float64, len(s))
	for sym, b := range s {
		out[sym] = b.Close
	}
	return out
}

// Clone returns a shallow copy so callers cannot mutate the engine's view.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
