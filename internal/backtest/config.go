package backtest

import (
	"fmt"
	"strings"
	"time"
)

// Config holds the immutable parameters of one run.
// Fractions are expressed as 0..1 (0.05 = 5%).
type Config struct {
	StartDate time.Time
	EndDate   time.Time

	InitialCapital     float64
	CommissionPerShare float64
	SlippageBps        float64

	MaxPositionSize  float64 // per-position cap as a fraction of portfolio value
	MaxTotalExposure float64 // aggregate cap as a fraction of portfolio value
	StopLossPct      float64
	TakeProfitPct    float64

	Symbols []string
}

// ConfigError names the offending field of an invalid Config.
// Field uses the YAML/JSON key so it can be reported back to users verbatim.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (c Config) Validate() error {
	if c.StartDate.IsZero() {
		return &ConfigError{Field: "start_date", Reason: "is required"}
	}
	if c.EndDate.IsZero() {
		return &ConfigError{Field: "end_date", Reason: "is required"}
	}
	if c.EndDate.Before(c.StartDate) {
		return &ConfigError{Field: "end_date", Reason: "must not be before start_date"}
	}
	if c.InitialCapital <= 0 {
		return &ConfigError{Field: "initial_capital", Reason: "must be > 0"}
	}
	if c.CommissionPerShare < 0 {
		return &ConfigError{Field: "commission_per_share", Reason: "must be >= 0"}
	}
	if c.SlippageBps < 0 {
		return &ConfigError{Field: "slippage_bps", Reason: "must be >= 0"}
	}
	fractions := []struct {
		field string
		v     float64
	}{
		{"max_position_size", c.MaxPositionSize},
		{"max_total_exposure", c.MaxTotalExposure},
		{"stop_loss_pct", c.StopLossPct},
		{"take_profit_pct", c.TakeProfitPct},
	}
	for _, f := range fractions {
		if f.v <= 0 || f.v > 1 {
			return &ConfigError{Field: f.field, Reason: "must be in (0, 1]"}
		}
	}
	if len(c.Symbols) == 0 {
		return &ConfigError{Field: "symbols", Reason: "must list at least one symbol"}
	}
	seen := make(map[string]bool, len(c.Symbols))
	for _, s := range c.Symbols {
		if strings.TrimSpace(s) == "" {
			return &ConfigError{Field: "symbols", Reason: "must not contain empty symbols"}
		}
		if seen[s] {
			return &ConfigError{Field: "symbols", Reason: fmt.Sprintf("lists %q more than once", s)}
		}
		seen[s] = true
	}
	return nil
}

// Costs returns the cost model implied by the config.
func (c Config) Costs() CostModel {
	return CostModel{
		CommissionPerShare: c.CommissionPerShare,
		SlippageBps:        c.SlippageBps,
	}
}

// Gate returns the risk gate implied by the config.
func (c Config) Gate() RiskGate {
	return RiskGate{
		MaxPositionSize:  c.MaxPositionSize,
		MaxTotalExposure: c.MaxTotalExposure,
		Costs:            c.Costs(),
	}
}
