package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"equity-backtest/internal/backtest"
	"equity-backtest/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	logLevel string
	logger   = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "cli",
	Short: "Daily-bar equity backtester",
	Long:  "Run, compare and inspect daily-bar equity backtests from YAML run files.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log, err := logging.New(logLevel, false)
		if err != nil {
			return err
		}
		logger = log
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func printReport(r backtest.Report, meta backtest.Metadata) {
	if r.Failed() {
		fmt.Printf("No result: %s\n", r.Error)
		return
	}
	fmt.Printf("Initial capital  %14.2f\n", r.InitialCapital)
	fmt.Printf("Final equity     %14.2f\n", r.FinalEquity)
	fmt.Printf("Total return     %13.2f%%\n", r.TotalReturnPct)
	fmt.Printf("Max drawdown     %13.2f%%\n", r.MaxDrawdownPct)
	fmt.Printf("Sharpe           %14.3f\n", r.SharpeRatio)
	fmt.Printf("Sortino          %14.3f\n", r.SortinoRatio)
	fmt.Printf("Trades           %14d  (%d won, %d lost, win rate %.1f%%)\n",
		r.TotalTrades, r.WinningTrades, r.LosingTrades, r.WinRatePct)
	fmt.Printf("Avg win / loss   %14.2f / %.2f\n", r.AvgWin, r.AvgLoss)
	fmt.Printf("Profit factor    %14.3f\n", r.ProfitFactor)
	fmt.Printf("Trading days     %14d\n", meta.TradingDays)
	if meta.Approximate() {
		fmt.Printf("Note: %d position-days on %d days were valued at entry price (missing bars)\n",
			meta.EntryPriceFallbacks, meta.FallbackDays)
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
