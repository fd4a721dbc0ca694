package main

import (
	"fmt"
	"time"

	"equity-backtest/internal/config"
	"equity-backtest/internal/data"
	"equity-backtest/internal/runner"

	"github.com/spf13/cobra"
)

const defaultCompareCacheTTL = time.Hour

var (
	compareFile   string
	compareRankBy string
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run variations of a base config and rank them",
	Args:  cobra.NoArgs,
	RunE:  runCompare,
}

func init() {
	compareCmd.Flags().StringVar(&compareFile, "file", "", "Path to compare YAML (base + variations) (required)")
	compareCmd.Flags().StringVar(&compareRankBy, "rank-by", "sharpe", "sharpe, sortino, return, drawdown or profit_factor")

	compareCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	f, err := config.LoadCompare(compareFile)
	if err != nil {
		return fmt.Errorf("load compare file: %w", err)
	}

	// Bars are fetched once per variation; a cache keeps that cheap for remote sources.
	opts := f.Base.Data
	if opts.CacheTTL == 0 && opts.Source != "" && opts.Source != data.KindJSON {
		opts.CacheTTL = defaultCompareCacheTTL
	}
	src, err := data.Open(ctx, opts, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	outcomes, err := runner.Compare(ctx, f.Base, f.Variations, src, logger)
	if err != nil {
		return err
	}
	ranked, err := runner.Rank(outcomes, compareRankBy)
	if err != nil {
		return err
	}

	fmt.Printf("%-4s %-24s %10s %10s %10s %8s %8s\n", "rank", "variation", "return%", "maxdd%", "sharpe", "trades", "win%")
	for _, r := range ranked {
		if r.Error != "" {
			fmt.Printf("%-4s %-24s error: %s\n", "-", r.Name, r.Error)
			continue
		}
		s := r.Report
		fmt.Printf("%-4d %-24s %10.2f %10.2f %10.3f %8d %8.1f\n",
			r.Rank, r.Name, s.TotalReturnPct, s.MaxDrawdownPct, s.SharpeRatio, s.TotalTrades, s.WinRatePct)
	}
	return nil
}
