package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"equity-backtest/internal/backtest"
	"equity-backtest/internal/config"
	"equity-backtest/internal/data"
	"equity-backtest/internal/runner"

	"github.com/spf13/cobra"
)

var (
	backtestConfig  string
	backtestOut     string
	backtestJSON    bool
	backtestFrom    string
	backtestTo      string
	backtestSymbols string
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run one backtest from a YAML run file",
	Long:  "Run a strategy against historical bars and show performance statistics. Optionally write trades and equity CSVs.",
	Args:  cobra.NoArgs,
	RunE:  runBacktest,
}

func init() {
	backtestCmd.Flags().StringVar(&backtestConfig, "config", "", "Path to YAML run file (required)")
	backtestCmd.Flags().StringVar(&backtestOut, "out", "", "Directory for trades.csv and equity.csv")
	backtestCmd.Flags().BoolVar(&backtestJSON, "json", false, "Print the full report as JSON")
	backtestCmd.Flags().StringVar(&backtestFrom, "from", "", "Override start date YYYY-MM-DD")
	backtestCmd.Flags().StringVar(&backtestTo, "to", "", "Override end date YYYY-MM-DD")
	backtestCmd.Flags().StringVar(&backtestSymbols, "symbols", "", "Override symbols (comma-separated)")

	backtestCmd.MarkFlagRequired("config")

	rootCmd.AddCommand(backtestCmd)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(backtestConfig)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Backtest = config.MergeBacktest(cfg.Backtest, config.BacktestConfig{
		StartDate: backtestFrom,
		EndDate:   backtestTo,
		Symbols:   splitList(backtestSymbols),
	})

	src, err := data.Open(ctx, cfg.Data, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	res, err := runner.Run(ctx, cfg.Backtest, cfg.Strategy, src, logger)
	if err != nil {
		return err
	}

	if backtestOut != "" {
		if err := os.MkdirAll(backtestOut, 0o755); err != nil {
			return err
		}
		tradesPath := filepath.Join(backtestOut, "trades.csv")
		equityPath := filepath.Join(backtestOut, "equity.csv")
		if err := backtest.WriteTradesCSV(tradesPath, res.Trades); err != nil {
			return err
		}
		if err := backtest.WriteEquityCSV(equityPath, res.EquityCurve); err != nil {
			return err
		}
		fmt.Printf("Wrote %d trades to %s and %d equity points to %s\n",
			len(res.Trades), tradesPath, len(res.EquityCurve), equityPath)
	}

	if backtestJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Report)
	}

	fmt.Printf("=== Backtest: %s on %d symbols, %s to %s ===\n",
		cfg.Strategy.Name, len(cfg.Backtest.Symbols), cfg.Backtest.StartDate, cfg.Backtest.EndDate)
	printReport(res.Report, res.Metadata)
	return nil
}
