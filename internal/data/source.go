package data

import (
	"context"
	"fmt"
	"sort"
	"time"

	"equity-backtest/internal/model"
)

// BarSource supplies daily bars for one symbol over [start, end], ascending
// by timestamp. An empty result means "no data", not an error.
type BarSource interface {
	GetBars(ctx context.Context, symbol string, start, end time.Time) ([]model.Bar, error)
}

// SourceError is a provider failure carrying a stable machine-readable code.
type SourceError struct {
	Source     string
	StatusCode int
	Code       string
	Message    string
}

func (e *SourceError) Error() string {
	if e.Source == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Message)
}

// MemorySource serves bars held in memory. It backs JSON files and tests.
type MemorySource struct {
	bars map[string][]model.Bar
}

var _ BarSource = (*MemorySource)(nil)

// NewMemorySource copies and sorts the given bars.
func NewMemorySource(bars map[string][]model.Bar) *MemorySource {
	m := &MemorySource{bars: make(map[string][]model.Bar, len(bars))}
	for sym, bs := range bars {
		m.Add(sym, bs)
	}
	return m
}

// Add merges bars for symbol, replacing any existing bar on the same day.
func (m *MemorySource) Add(symbol string, bars []model.Bar) {
	byDay := make(map[time.Time]model.Bar, len(m.bars[symbol])+len(bars))
	for _, b := range m.bars[symbol] {
		byDay[model.Day(b.Timestamp)] = b
	}
	for _, b := range bars {
		byDay[model.Day(b.Timestamp)] = b
	}
	out := make([]model.Bar, 0, len(byDay))
	for _, b := range byDay {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	m.bars[symbol] = out
}

func (m *MemorySource) GetBars(ctx context.Context, symbol string, start, end time.Time) ([]model.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return FilterRange(m.bars[symbol], start, end), nil
}

// Symbols returns the symbols held, sorted.
func (m *MemorySource) Symbols() []string {
	out := make([]string, 0, len(m.bars))
	for sym := range m.bars {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// All returns every symbol's bars. The slices are shared; do not modify them.
func (m *MemorySource) All() map[string][]model.Bar {
	return m.bars
}

// FilterRange keeps bars whose day lies in [start, end].
func FilterRange(bars []model.Bar, start, end time.Time) []model.Bar {
	lo, hi := model.Day(start), model.Day(end)
	out := make([]model.Bar, 0, len(bars))
	for _, b := range bars {
		d := model.Day(b.Timestamp)
		if d.Before(lo) || d.After(hi) {
			continue
		}
		out = append(out, b)
	}
	return out
}
