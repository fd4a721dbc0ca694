package backtest

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"equity-backtest/internal/model"

	"github.com/shopspring/decimal"
)

func WriteTradesCSV(path string, trades []model.Trade) error {
	return writeFile(path, func(w io.Writer) error { return EncodeTradesCSV(w, trades) })
}

func WriteEquityCSV(path string, curve []model.EquityPoint) error {
	return writeFile(path, func(w io.Writer) error { return EncodeEquityCSV(w, curve) })
}

// EncodeTradesCSV writes one row per ledger entry.
func EncodeTradesCSV(out io.Writer, trades []model.Trade) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	header := []string{
		"index",
		"timestamp",
		"symbol",
		"action",
		"side",
		"shares",
		"price",
		"slippage",
		"commission",
		"pnl",
		"reason",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, t := range trades {
		row := []string{
			strconv.Itoa(i),
			fmtTime(t.Timestamp),
			t.Symbol,
			string(t.Action),
			string(t.Side),
			strconv.Itoa(t.Shares),
			fmtMoney(t.Price),
			fmtMoney(t.Slippage),
			fmtMoney(t.Commission),
			fmtMoney(t.PnL),
			t.Reason,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// EncodeEquityCSV writes the equity curve with a running drawdown column.
func EncodeEquityCSV(out io.Writer, curve []model.EquityPoint) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	if err := w.Write([]string{"timestamp", "equity", "drawdown"}); err != nil {
		return err
	}
	peak := 0.0
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		dd := 0.0
		if peak > 0 {
			dd = (p.Equity - peak) / peak
		}
		row := []string{
			fmtTime(p.Timestamp),
			fmtMoney(p.Equity),
			decimal.NewFromFloat(dd).StringFixed(6),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeFile(path string, encode func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func fmtMoney(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(4)
}
