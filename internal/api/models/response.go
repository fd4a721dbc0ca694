package models

import (
	"time"

	"equity-backtest/internal/analysis"
	"equity-backtest/internal/backtest"
	"equity-backtest/internal/config"
	"equity-backtest/internal/model"
)

// BacktestResponse represents the response from a backtest run
type BacktestResponse struct {
	ID        string                `json:"id"`
	Status    string                `json:"status"`
	CreatedAt time.Time             `json:"created_at"`
	Config    config.BacktestConfig `json:"config"`
	Strategy  config.StrategyConfig `json:"strategy"`
	Summary   backtest.Report       `json:"summary"`
}

// CompareBacktestResponse represents the response from a comparison
type CompareBacktestResponse struct {
	RankBy     string            `json:"rank_by"`
	Comparison []analysis.Ranked `json:"comparison"`
}

// TradesResponse is the trade log of a stored run
type TradesResponse struct {
	ID     string        `json:"id"`
	Count  int           `json:"count"`
	Trades []model.Trade `json:"trades"`
}

// EquityResponse is the equity curve of a stored run
type EquityResponse struct {
	ID          string              `json:"id"`
	Count       int                 `json:"count"`
	EquityCurve []model.EquityPoint `json:"equity_curve"`
}

// StatsResponse represents the response from ranking symbols
type StatsResponse struct {
	Rankings []analysis.SymbolStats `json:"rankings"`
	Missing  []string               `json:"missing,omitempty"`
}

// PresetInfo represents information about a run config preset
type PresetInfo struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	File     string   `json:"file"`
	Strategy string   `json:"strategy"`
	Source   string   `json:"data_source,omitempty"`
	Symbols  []string `json:"symbols"`
	Start    string   `json:"start_date"`
	End      string   `json:"end_date"`
}

// UniverseResponse lists the configured symbol universe
type UniverseResponse struct {
	Name      string   `json:"name"`
	UpdatedAt string   `json:"updated_at"`
	Count     int      `json:"count"`
	Symbols   []string `json:"symbols"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
