package strategy

import "fmt"

// ParamInfo describes one tunable parameter.
type ParamInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Default     interface{} `json:"default"`
}

// Info describes a built-in strategy.
type Info struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []ParamInfo `json:"parameters"`
}

// Catalog lists the built-in strategies in a stable order.
func Catalog() []Info {
	return []Info{
		{
			Name:        "buy_and_hold",
			Description: "Buys every symbol on its first bar and holds until a protective exit or the end of the run.",
			Parameters: []ParamInfo{
				{Name: "confidence", Type: "float", Description: "Fraction of the per-position cap to allocate (0, 1]", Default: 1.0},
			},
		},
		{
			Name:        "momentum",
			Description: "Buys when the N-day rate of change clears a threshold; sells when it turns below the exit threshold.",
			Parameters: []ParamInfo{
				{Name: "lookback", Type: "int", Description: "Rate-of-change window in trading days", Default: 20},
				{Name: "entry_threshold", Type: "float", Description: "Minimum rate of change to enter", Default: 0.05},
				{Name: "exit_threshold", Type: "float", Description: "Rate of change below which to exit", Default: 0.0},
			},
		},
		{
			Name:        "mean_reversion",
			Description: "Buys when the close is far below its rolling mean (z-score); sells when it reverts.",
			Parameters: []ParamInfo{
				{Name: "lookback", Type: "int", Description: "Rolling window in trading days", Default: 20},
				{Name: "entry_z", Type: "float", Description: "Z-score at or below which to enter (negative)", Default: -2.0},
				{Name: "exit_z", Type: "float", Description: "Z-score at or above which to exit", Default: 0.0},
			},
		},
		{
			Name:        "trend",
			Description: "Fast/slow simple moving average crossover.",
			Parameters: []ParamInfo{
				{Name: "fast", Type: "int", Description: "Fast SMA window", Default: 10},
				{Name: "slow", Type: "int", Description: "Slow SMA window", Default: 30},
			},
		},
	}
}

// Build constructs a fresh generator by name. Generators keep per-run
// history, so build one per backtest.
func Build(name string, params Params) (Generator, error) {
	if params == nil {
		params = Params{}
	}
	switch name {
	case "buy_and_hold", "buyhold":
		return unwrap(NewBuyAndHold(params))
	case "momentum":
		return unwrap(NewMomentum(params))
	case "mean_reversion", "meanreversion":
		return unwrap(NewMeanReversion(params))
	case "trend", "sma_cross":
		return unwrap(NewTrend(params))
	default:
		return nil, fmt.Errorf("unsupported strategy: %q", name)
	}
}

// unwrap keeps a typed nil out of the Generator interface.
func unwrap[T Generator](g T, err error) (Generator, error) {
	if err != nil {
		return nil, err
	}
	return g, nil
}
