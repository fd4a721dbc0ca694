package main

import (
	"fmt"

	"equity-backtest/internal/analysis"
	"equity-backtest/internal/data"
	"equity-backtest/internal/model"

	"github.com/spf13/cobra"
)

var (
	statsData    string
	statsSymbols string
	statsLimit   int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Rank symbols in bar files by return statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsData, "data", "data/bars", "Bar JSON file or directory")
	statsCmd.Flags().StringVar(&statsSymbols, "symbols", "", "Only these symbols (comma-separated)")
	statsCmd.Flags().IntVar(&statsLimit, "limit", 0, "Show at most N rows (0=all)")

	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	src, err := data.LoadBars(statsData)
	if err != nil {
		return err
	}

	bySymbol := src.All()
	if want := splitList(statsSymbols); len(want) > 0 {
		filtered := make(map[string][]model.Bar, len(want))
		for _, s := range want {
			if bars, ok := bySymbol[s]; ok {
				filtered[s] = bars
			}
		}
		bySymbol = filtered
	}

	ranked := analysis.RankBySymbolStats(bySymbol)
	if statsLimit > 0 && statsLimit < len(ranked) {
		ranked = ranked[:statsLimit]
	}

	fmt.Printf("%-4s %-8s %-6s %10s %10s %10s %10s %12s\n", "rank", "symbol", "count", "b&h%", "maxdd%", "vol%", "p05/p95%", "foresight%")
	for i, s := range ranked {
		fmt.Printf("%-4d %-8s %-6d %10.2f %10.2f %10.2f %5.2f/%-5.2f %12.2f\n",
			i+1, s.Symbol, s.Count,
			s.BuyHoldReturn*100, s.MaxDrawdown*100, s.AnnualVol*100,
			s.P05Return*100, s.P95Return*100, s.ForesightReturn*100)
	}
	return nil
}
