package models

import "equity-backtest/internal/config"

// BacktestRequest represents the request body for running a backtest
type BacktestRequest struct {
	// Preset names a run config YAML in the preset directory. Fields set in
	// Config and Strategy override it.
	Preset   string                `json:"preset,omitempty"`
	Config   config.BacktestConfig `json:"config"`
	Strategy config.StrategyConfig `json:"strategy"`
	Options  BacktestOptions       `json:"options,omitempty"`
}

// BacktestOptions controls how much of the result is echoed back
type BacktestOptions struct {
	IncludeTrades      bool `json:"include_trades,omitempty"`
	IncludeEquityCurve bool `json:"include_equity_curve,omitempty"`
}

// CompareBacktestRequest represents a request to compare multiple backtests
type CompareBacktestRequest struct {
	Preset     string                `json:"preset,omitempty"`
	BaseConfig config.BacktestConfig `json:"base_config"`
	Strategy   config.StrategyConfig `json:"strategy"`
	Variations []config.Variation    `json:"variations" binding:"required,min=1,dive"`
	RankBy     string                `json:"rank_by,omitempty"` // sharpe (default), sortino, return, drawdown, profit_factor
}

// StatsRequest represents a request to rank symbols by bar statistics
type StatsRequest struct {
	Symbols   string `form:"symbols"` // comma-separated; default: universe
	StartDate string `form:"start_date" binding:"required"`
	EndDate   string `form:"end_date" binding:"required"`
	Limit     int    `form:"limit,omitempty"` // default: 10
}
