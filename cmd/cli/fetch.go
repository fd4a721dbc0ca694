package main

import (
	"fmt"
	"os"
	"time"

	"equity-backtest/internal/config"
	"equity-backtest/internal/data"
	"equity-backtest/internal/model"

	"github.com/spf13/cobra"
)

var (
	fetchSymbols string
	fetchFrom    string
	fetchTo      string
	fetchOut     string
	fetchFeed    string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download daily bars from Alpaca into a JSON bar file",
	Long:  "Download daily bars from Alpaca into a JSON bar file. Reads APCA_API_KEY_ID and APCA_API_SECRET_KEY from the environment or .env.",
	Args:  cobra.NoArgs,
	RunE:  runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchSymbols, "symbols", "", "Symbols to fetch (comma-separated) (required)")
	fetchCmd.Flags().StringVar(&fetchFrom, "from", "", "Start date YYYY-MM-DD (required)")
	fetchCmd.Flags().StringVar(&fetchTo, "to", "", "End date YYYY-MM-DD (default: today)")
	fetchCmd.Flags().StringVar(&fetchOut, "out", "data/bars/bars.json", "Output JSON path")
	fetchCmd.Flags().StringVar(&fetchFeed, "feed", "iex", "Alpaca data feed: iex or sip")

	fetchCmd.MarkFlagRequired("symbols")
	fetchCmd.MarkFlagRequired("from")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	env, _ := config.LoadServerEnv()

	from, err := time.Parse(config.DateLayout, fetchFrom)
	if err != nil {
		return fmt.Errorf("invalid from date format (expected YYYY-MM-DD): %w", err)
	}
	to := time.Now().UTC()
	if fetchTo != "" {
		if to, err = time.Parse(config.DateLayout, fetchTo); err != nil {
			return fmt.Errorf("invalid to date format (expected YYYY-MM-DD): %w", err)
		}
	}
	if to.Before(from) {
		return fmt.Errorf("end date must be after start date")
	}

	opts := env.Data.Alpaca
	opts.Feed = fetchFeed
	src := data.NewAlpacaSource(opts, logger)

	out := make(map[string][]model.Bar)
	for _, sym := range splitList(fetchSymbols) {
		bars, err := src.GetBars(cmd.Context(), sym, from, to)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", sym, err)
		}
		fmt.Fprintf(os.Stderr, "%-8s %d bars\n", sym, len(bars))
		out[sym] = bars
	}

	if err := data.SaveBars(fetchOut, out); err != nil {
		return err
	}
	fmt.Printf("Saved %d symbols to %s\n", len(out), fetchOut)
	return nil
}
