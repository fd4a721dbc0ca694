package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"equity-backtest/internal/backtest"
	"equity-backtest/internal/data"
	"equity-backtest/internal/model"
	"equity-backtest/internal/strategy"
)

// Demo:
// - Generate a seeded random-walk price series for a few symbols
// - Run a strategy over it with the in-memory bar source
// - Print the open book each day to show how the pieces fit together
func main() {
	strat := flag.String("strategy", "buy_and_hold", "Strategy name")
	days := flag.Int("days", 30, "Number of calendar days to simulate")
	seed := flag.Int64("seed", 42, "Random seed for the price walk")
	outCSV := flag.String("out", "", "Optional path to write the trade ledger CSV")
	flag.Parse()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, *days-1)
	symbols := []string{"AAA", "BBB", "CCC"}

	rng := rand.New(rand.NewSource(*seed))
	src := data.NewMemorySource(nil)
	for i, sym := range symbols {
		src.Add(sym, randomWalk(rng, start, end, 50+25*float64(i)))
	}

	gen, err := strategy.Build(*strat, nil)
	if err != nil {
		fail(err)
	}

	cfg := backtest.Config{
		StartDate:        start,
		EndDate:          end,
		InitialCapital:   100_000,
		SlippageBps:      5,
		MaxPositionSize:  0.25,
		MaxTotalExposure: 1.0,
		StopLossPct:      0.05,
		TakeProfitPct:    0.10,
		Symbols:          symbols,
	}
	engine, err := backtest.New(cfg, backtest.WithObserver(func(day time.Time, l *backtest.Ledger) {
		fmt.Printf("%s  cash=%12.2f  open=%d\n", day.Format("2006-01-02"), l.Cash(), l.OpenCount())
	}))
	if err != nil {
		fail(err)
	}

	res, err := engine.Run(context.Background(), src, gen)
	if err != nil {
		fail(err)
	}

	r := res.Report
	fmt.Println()
	fmt.Printf("Final equity: %.2f (%.2f%%)\n", r.FinalEquity, r.TotalReturnPct)
	fmt.Printf("Round trips: %d  Sharpe: %.3f  Max DD: %.2f%%\n", r.TotalTrades, r.SharpeRatio, r.MaxDrawdownPct)

	if *outCSV != "" {
		if err := backtest.WriteTradesCSV(*outCSV, res.Trades); err != nil {
			fail(err)
		}
		fmt.Printf("Wrote %s\n", *outCSV)
	}
}

// randomWalk produces weekday bars with a lognormal close-to-close step.
func randomWalk(rng *rand.Rand, start, end time.Time, price float64) []model.Bar {
	var out []model.Bar
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if model.IsWeekend(d) {
			continue
		}
		open := price
		price *= math.Exp(rng.NormFloat64() * 0.02)
		spread := math.Abs(rng.NormFloat64()) * 0.01 * price
		out = append(out, model.Bar{
			Timestamp: d,
			Open:      open,
			High:      math.Max(open, price) + spread,
			Low:       math.Min(open, price) - spread,
			Close:     price,
			Volume:    float64(100_000 + rng.Intn(50_000)),
		})
	}
	return out
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
