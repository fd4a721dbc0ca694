package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"equity-backtest/internal/config"
	"equity-backtest/internal/data"
	"equity-backtest/internal/logging"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"go.uber.org/zap"
)

func main() {
	var (
		name       = flag.String("name", "default", "Universe name")
		outputPath = flag.String("output", "", "Output file path (default: ./data/universe.json)")
		seedFile   = flag.String("seed", "", "Path to existing universe file to use as seed")
		exchange   = flag.String("exchange", "", "Restrict to one exchange (e.g. NASDAQ, NYSE)")
		all        = flag.Bool("all", false, "Include every active tradable asset, not just the seed symbols")
	)
	flag.Parse()

	env, _ := config.LoadServerEnv()
	logger, err := logging.New(env.LogLevel, env.Production())
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if env.Data.Alpaca.KeyID == "" || env.Data.Alpaca.SecretKey == "" {
		logger.Fatal("APCA_API_KEY_ID and APCA_API_SECRET_KEY environment variables are required")
	}

	if *outputPath == "" {
		*outputPath = data.DefaultUniversePath()
	}

	client := alpaca.NewClient(alpaca.ClientOpts{
		APIKey:    env.Data.Alpaca.KeyID,
		APISecret: env.Data.Alpaca.SecretKey,
		BaseURL:   os.Getenv("APCA_API_BASE_URL"),
	})

	seedPath := *seedFile
	if seedPath == "" {
		seedPath = data.DefaultUniversePath()
	}
	var seed []data.Asset
	if u, err := data.LoadUniverse(seedPath); err == nil {
		seed = u.Assets
		fmt.Printf("Loaded %d existing assets from %s\n", len(seed), seedPath)
	}
	if len(seed) == 0 && !*all {
		seed = defaultSeed()
		fmt.Printf("No seed file, using %d default symbols\n", len(seed))
	}

	fmt.Println("Querying active US equities...")
	assets, err := client.GetAssets(alpaca.GetAssetsRequest{
		Status:     "active",
		AssetClass: "us_equity",
		Exchange:   strings.ToUpper(*exchange),
	})
	if err != nil {
		logger.Fatal("failed to list assets", zap.String("exchange", *exchange), zap.Error(err))
	}
	fmt.Printf("Broker returned %d assets\n", len(assets))

	merged := mergeAssets(seed, assets, *all)

	u := &data.Universe{
		Name:      *name,
		UpdatedAt: time.Now().Format(time.RFC3339),
		Assets:    merged,
	}
	if err := data.SaveUniverse(u, *outputPath); err != nil {
		logger.Fatal("failed to save universe", zap.String("path", *outputPath), zap.Error(err))
	}

	fmt.Printf("Saved %d assets (%d tradable) to %s\n", len(merged), len(u.Symbols()), *outputPath)
}

// mergeAssets refreshes seed metadata from the broker listing. Seed symbols
// the broker no longer lists are kept but marked untradable.
func mergeAssets(seed []data.Asset, listed []alpaca.Asset, includeAll bool) []data.Asset {
	bySymbol := make(map[string]data.Asset, len(seed))
	for _, a := range seed {
		a.Tradable = false
		bySymbol[a.Symbol] = a
	}

	updated := 0
	for _, a := range listed {
		_, known := bySymbol[a.Symbol]
		if !known && !includeAll {
			continue
		}
		bySymbol[a.Symbol] = data.Asset{
			Symbol:   a.Symbol,
			Name:     a.Name,
			Exchange: a.Exchange,
			Class:    string(a.Class),
			Tradable: a.Tradable,
		}
		if known {
			updated++
		}
	}
	if len(seed) > 0 {
		fmt.Printf("Refreshed %d/%d seed symbols\n", updated, len(seed))
	}

	out := make([]data.Asset, 0, len(bySymbol))
	for _, a := range bySymbol {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

func defaultSeed() []data.Asset {
	symbols := []string{"AAPL", "AMZN", "GOOGL", "MSFT", "NVDA", "SPY", "QQQ"}
	out := make([]data.Asset, len(symbols))
	for i, s := range symbols {
		out[i] = data.Asset{Symbol: s}
	}
	return out
}
