package main

import (
	"fmt"

	"equity-backtest/internal/config"
	"equity-backtest/internal/data"

	"github.com/spf13/cobra"
)

var ingestData string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load JSON bar files into ClickHouse",
	Long:  "Load JSON bar files into the ClickHouse bars table, creating it if needed. Connection settings come from CLICKHOUSE_* variables.",
	Args:  cobra.NoArgs,
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestData, "data", "data/bars", "Bar JSON file or directory")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	env, _ := config.LoadServerEnv()

	mem, err := data.LoadBars(ingestData)
	if err != nil {
		return err
	}

	ch, err := data.NewClickHouseSource(ctx, env.Data.ClickHouse, logger)
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := ch.EnsureSchema(ctx); err != nil {
		return err
	}

	total := 0
	for _, sym := range mem.Symbols() {
		bars := mem.All()[sym]
		if err := ch.Insert(ctx, sym, bars); err != nil {
			return fmt.Errorf("insert %s: %w", sym, err)
		}
		total += len(bars)
	}
	fmt.Printf("Inserted %d bars for %d symbols\n", total, len(mem.Symbols()))
	return nil
}
