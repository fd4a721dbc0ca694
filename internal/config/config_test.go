package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"equity-backtest/internal/data"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalYAML = `
backtest:
  start_date: "2024-01-01"
  end_date: "2024-06-30"
  symbols: [AAPL, MSFT]
strategy:
  name: momentum
  params:
    lookback: 10
data:
  path: bars.json
  cache_ttl: 30m
`

func TestLoad_AppliesDefaultsAndResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bars.json", `{"bars":{}}`)
	path := writeFile(t, dir, "run.yaml", minimalYAML)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 100000.0, cfg.Backtest.InitialCapital)
	assert.Equal(t, 0.1, cfg.Backtest.MaxPositionSize)
	assert.Equal(t, 1.0, cfg.Backtest.MaxTotalExposure)
	assert.Equal(t, 0.05, cfg.Backtest.StopLossPct)
	assert.Equal(t, 0.10, cfg.Backtest.TakeProfitPct)
	assert.Equal(t, 0.0, cfg.Backtest.CommissionPerShare)
	assert.Equal(t, []string{"AAPL", "MSFT"}, cfg.Backtest.Symbols)
	assert.Equal(t, "momentum", cfg.Strategy.Name)
	assert.Equal(t, 10, cfg.Strategy.Params["lookback"])
	assert.Equal(t, filepath.Join(dir, "bars.json"), cfg.Data.Path)
	assert.Equal(t, 30*time.Minute, cfg.Data.CacheTTL)
}

func TestLoad_UniverseFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, data.SaveUniverse(&data.Universe{Assets: []data.Asset{
		{Symbol: "SPY", Tradable: true},
		{Symbol: "QQQ", Tradable: true},
		{Symbol: "OLD", Tradable: false},
	}}, filepath.Join(dir, "universe.json")))
	path := writeFile(t, dir, "run.yaml", `
universe_file: universe.json
backtest:
  start_date: "2024-01-01"
  end_date: "2024-02-01"
strategy:
  name: buy_and_hold
data:
  source: alpaca
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"QQQ", "SPY"}, cfg.Backtest.Symbols)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{
			name:  "missing strategy",
			yaml:  "backtest: {start_date: '2024-01-01', end_date: '2024-02-01', symbols: [A]}\ndata: {source: alpaca}",
			field: "strategy.name",
		},
		{
			name:  "bad strategy params",
			yaml:  "backtest: {start_date: '2024-01-01', end_date: '2024-02-01', symbols: [A]}\nstrategy: {name: trend, params: {fast: 5, slow: 5}}\ndata: {source: alpaca}",
			field: "strategy",
		},
		{
			name:  "unknown strategy",
			yaml:  "backtest: {start_date: '2024-01-01', end_date: '2024-02-01', symbols: [A]}\nstrategy: {name: nope}\ndata: {source: alpaca}",
			field: "strategy",
		},
		{
			name:  "bad date",
			yaml:  "backtest: {start_date: '01/01/2024', end_date: '2024-02-01', symbols: [A]}\nstrategy: {name: momentum}\ndata: {source: alpaca}",
			field: "backtest.start_date",
		},
		{
			name:  "engine rule",
			yaml:  "backtest: {start_date: '2024-01-01', end_date: '2024-02-01', symbols: [A], max_position_size: 2}\nstrategy: {name: momentum}\ndata: {source: alpaca}",
			field: "backtest.max_position_size",
		},
		{
			name:  "no symbols",
			yaml:  "backtest: {start_date: '2024-01-01', end_date: '2024-02-01'}\nstrategy: {name: momentum}\ndata: {source: alpaca}",
			field: "backtest.symbols",
		},
		{
			name:  "json without path",
			yaml:  "backtest: {start_date: '2024-01-01', end_date: '2024-02-01', symbols: [A]}\nstrategy: {name: momentum}",
			field: "data.path",
		},
		{
			name:  "unknown source",
			yaml:  "backtest: {start_date: '2024-01-01', end_date: '2024-02-01', symbols: [A]}\nstrategy: {name: momentum}\ndata: {source: csv}",
			field: "data.source",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "run.yaml", tt.yaml)
			_, err := Load(path)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := writeFile(t, t.TempDir(), "bad.yaml", "backtest: [unterminated")
	_, err = Load(path)
	assert.ErrorContains(t, err, "parse")
}

func TestLoadUnchecked_SkipsDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "run.yaml", "strategy: {name: momentum}")
	cfg, err := LoadUnchecked(path)
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.Backtest.InitialCapital)
}

func TestToEngineConfig(t *testing.T) {
	bt := MergeBacktest(Defaults, BacktestConfig{
		StartDate: "2024-01-02",
		EndDate:   "2024-03-29",
		Symbols:   []string{"AAPL"},
	})
	cfg, err := bt.ToEngineConfig()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), cfg.StartDate)
	assert.Equal(t, time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC), cfg.EndDate)
	assert.Equal(t, 100000.0, cfg.InitialCapital)

	bt.EndDate = "2023-12-31"
	_, err = bt.ToEngineConfig()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "backtest.end_date", ve.Field)
	assert.Equal(t, "backtest.end_date must not be before start_date", err.Error())
}

func TestMergeBacktest(t *testing.T) {
	base := BacktestConfig{StartDate: "2024-01-01", InitialCapital: 50_000, StopLossPct: 0.05, Symbols: []string{"A"}}
	out := MergeBacktest(base, BacktestConfig{StopLossPct: 0.02, SlippageBps: 5, Symbols: []string{"B", "C"}})

	assert.Equal(t, "2024-01-01", out.StartDate)
	assert.Equal(t, 50_000.0, out.InitialCapital)
	assert.Equal(t, 0.02, out.StopLossPct)
	assert.Equal(t, 5.0, out.SlippageBps)
	assert.Equal(t, []string{"B", "C"}, out.Symbols)
	assert.Equal(t, []string{"A"}, base.Symbols)
}

func TestMergeStrategy(t *testing.T) {
	base := StrategyConfig{Name: "momentum", Params: map[string]any{"lookback": 20, "entry_threshold": 0.05}}

	same := MergeStrategy(base, StrategyConfig{Params: map[string]any{"lookback": 10}})
	assert.Equal(t, "momentum", same.Name)
	assert.Equal(t, map[string]any{"lookback": 10, "entry_threshold": 0.05}, same.Params)

	// Switching strategy drops the old strategy's params.
	other := MergeStrategy(base, StrategyConfig{Name: "trend", Params: map[string]any{"fast": 5}})
	assert.Equal(t, "trend", other.Name)
	assert.Equal(t, map[string]any{"fast": 5}, other.Params)

	assert.Equal(t, 20, base.Params["lookback"])
}
