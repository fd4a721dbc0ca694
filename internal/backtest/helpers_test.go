package backtest

import (
	"time"

	"equity-backtest/internal/model"
)

var jan1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) // Monday

func day(n int) time.Time { return jan1.AddDate(0, 0, n) }

func flat(t time.Time, px float64) model.Bar {
	return model.Bar{Timestamp: t, Open: px, High: px, Low: px, Close: px, Volume: 1000}
}

// closesFrom lays out flat bars on consecutive weekdays starting at jan1.
func closesFrom(closes ...float64) []model.Bar {
	out := make([]model.Bar, 0, len(closes))
	d := jan1
	for _, c := range closes {
		for model.IsWeekend(d) {
			d = d.AddDate(0, 0, 1)
		}
		out = append(out, flat(d, c))
		d = d.AddDate(0, 0, 1)
	}
	return out
}

func testConfig(symbols ...string) Config {
	if len(symbols) == 0 {
		symbols = []string{"AAA"}
	}
	return Config{
		StartDate:        jan1,
		EndDate:          day(30),
		InitialCapital:   10_000,
		MaxPositionSize:  1.0,
		MaxTotalExposure: 1.0,
		StopLossPct:      0.05,
		TakeProfitPct:    0.10,
		Symbols:          symbols,
	}
}
