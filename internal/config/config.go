package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"equity-backtest/internal/backtest"
	"equity-backtest/internal/data"
	"equity-backtest/internal/strategy"

	"gopkg.in/yaml.v3"
)

// DateLayout is the format of start_date / end_date.
const DateLayout = "2006-01-02"

// Config is the on-disk configuration shape (YAML).
type Config struct {
	// Optional: load symbols from a universe JSON file (see data.Universe).
	// Symbols listed under backtest.symbols take precedence.
	UniverseFile string         `yaml:"universe_file"`
	Backtest     BacktestConfig `yaml:"backtest"`
	Strategy     StrategyConfig `yaml:"strategy"`
	Data         data.Options   `yaml:"data"`
}

// BacktestConfig mirrors backtest.Config with string dates. The JSON tags let
// the API accept the same shape.
type BacktestConfig struct {
	StartDate          string   `yaml:"start_date" json:"start_date"`
	EndDate            string   `yaml:"end_date" json:"end_date"`
	InitialCapital     float64  `yaml:"initial_capital" json:"initial_capital"`
	CommissionPerShare float64  `yaml:"commission_per_share" json:"commission_per_share"`
	SlippageBps        float64  `yaml:"slippage_bps" json:"slippage_bps"`
	MaxPositionSize    float64  `yaml:"max_position_size" json:"max_position_size"`
	MaxTotalExposure   float64  `yaml:"max_total_exposure" json:"max_total_exposure"`
	StopLossPct        float64  `yaml:"stop_loss_pct" json:"stop_loss_pct"`
	TakeProfitPct      float64  `yaml:"take_profit_pct" json:"take_profit_pct"`
	Symbols            []string `yaml:"symbols" json:"symbols"`
}

type StrategyConfig struct {
	Name   string         `yaml:"name" json:"name"`
	Params map[string]any `yaml:"params" json:"params,omitempty"`
}

// Defaults fills fields a run file may leave out. Costs are not defaulted:
// zero commission and slippage are legitimate.
var Defaults = BacktestConfig{
	InitialCapital:   100000,
	MaxPositionSize:  0.1,
	MaxTotalExposure: 1.0,
	StopLossPct:      0.05,
	TakeProfitPct:    0.10,
}

// ValidationError names the offending config key.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.Backtest = MergeBacktest(Defaults, c.Backtest)
	if (c.Data.Source == "" || c.Data.Source == data.KindJSON) && c.Data.Path != "" {
		c.Data.Path = resolveRelative(path, c.Data.Path)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads the file and resolves universe_file, but does not
// apply defaults or validate.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if c.UniverseFile != "" && len(c.Backtest.Symbols) == 0 {
		u, err := data.LoadUniverse(resolveRelative(path, c.UniverseFile))
		if err != nil {
			return nil, err
		}
		c.Backtest.Symbols = u.Symbols()
	}
	return &c, nil
}

// resolveRelative prefers rel relative to the config file's directory, but
// falls back to the path as given (relative to cwd) if that doesn't exist.
func resolveRelative(configPath, rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	cand := filepath.Join(filepath.Dir(configPath), rel)
	if _, err := os.Stat(cand); err == nil {
		return cand
	}
	return rel
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Strategy.Name == "" {
		return &ValidationError{Field: "strategy.name", Reason: "is required"}
	}
	if _, err := strategy.Build(c.Strategy.Name, c.Strategy.Params); err != nil {
		return &ValidationError{Field: "strategy", Reason: err.Error()}
	}
	if _, err := c.Backtest.ToEngineConfig(); err != nil {
		return err
	}
	switch c.Data.Source {
	case "", data.KindJSON:
		if c.Data.Path == "" {
			return &ValidationError{Field: "data.path", Reason: "is required for the json source"}
		}
	case data.KindAlpaca, data.KindClickHouse:
	default:
		return &ValidationError{Field: "data.source", Reason: fmt.Sprintf("unknown source %q", c.Data.Source)}
	}
	if c.Data.CacheTTL < 0 {
		return &ValidationError{Field: "data.cache_ttl", Reason: "must be >= 0"}
	}
	return nil
}

// ToEngineConfig parses dates and validates the result. Engine validation
// failures come back as ValidationError with the key prefixed by "backtest.".
func (b BacktestConfig) ToEngineConfig() (backtest.Config, error) {
	start, err := parseDate("backtest.start_date", b.StartDate)
	if err != nil {
		return backtest.Config{}, err
	}
	end, err := parseDate("backtest.end_date", b.EndDate)
	if err != nil {
		return backtest.Config{}, err
	}
	cfg := backtest.Config{
		StartDate:          start,
		EndDate:            end,
		InitialCapital:     b.InitialCapital,
		CommissionPerShare: b.CommissionPerShare,
		SlippageBps:        b.SlippageBps,
		MaxPositionSize:    b.MaxPositionSize,
		MaxTotalExposure:   b.MaxTotalExposure,
		StopLossPct:        b.StopLossPct,
		TakeProfitPct:      b.TakeProfitPct,
		Symbols:            append([]string(nil), b.Symbols...),
	}
	if err := cfg.Validate(); err != nil {
		var ce *backtest.ConfigError
		if errors.As(err, &ce) {
			return backtest.Config{}, &ValidationError{Field: "backtest." + ce.Field, Reason: ce.Reason}
		}
		return backtest.Config{}, err
	}
	return cfg, nil
}

func parseDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, &ValidationError{Field: field, Reason: "is required"}
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Reason: "must be YYYY-MM-DD"}
	}
	return t, nil
}

// MergeBacktest overlays non-zero fields from override onto base.
// This is used for defaults and for compare variations.
func MergeBacktest(base, override BacktestConfig) BacktestConfig {
	out := base
	if override.StartDate != "" {
		out.StartDate = override.StartDate
	}
	if override.EndDate != "" {
		out.EndDate = override.EndDate
	}
	if override.InitialCapital != 0 {
		out.InitialCapital = override.InitialCapital
	}
	// Note: zero costs can't be expressed as an override; start from a zero-cost base instead.
	if override.CommissionPerShare != 0 {
		out.CommissionPerShare = override.CommissionPerShare
	}
	if override.SlippageBps != 0 {
		out.SlippageBps = override.SlippageBps
	}
	if override.MaxPositionSize != 0 {
		out.MaxPositionSize = override.MaxPositionSize
	}
	if override.MaxTotalExposure != 0 {
		out.MaxTotalExposure = override.MaxTotalExposure
	}
	if override.StopLossPct != 0 {
		out.StopLossPct = override.StopLossPct
	}
	if override.TakeProfitPct != 0 {
		out.TakeProfitPct = override.TakeProfitPct
	}
	if len(override.Symbols) > 0 {
		out.Symbols = append([]string(nil), override.Symbols...)
	}
	return out
}

// MergeStrategy replaces the strategy name when set and overlays params.
func MergeStrategy(base, override StrategyConfig) StrategyConfig {
	out := StrategyConfig{Name: base.Name, Params: make(map[string]any, len(base.Params)+len(override.Params))}
	if override.Name != "" && override.Name != base.Name {
		out.Name = override.Name
	} else {
		for k, v := range base.Params {
			out.Params[k] = v
		}
	}
	for k, v := range override.Params {
		out.Params[k] = v
	}
	return out
}
