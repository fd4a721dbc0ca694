package config

import (
	"fmt"
	"os"

	"equity-backtest/internal/data"

	"gopkg.in/yaml.v3"
)

// CompareFile describes a base run plus named variations of it.
//
//	base: { backtest: {...}, strategy: {...}, data: {...} }
//	variations:
//	  - name: tight-stops
//	    backtest: { stop_loss_pct: 0.02 }
type CompareFile struct {
	Base       Config      `yaml:"base"`
	Variations []Variation `yaml:"variations"`
}

// Variation overrides parts of a base config. Zero fields inherit.
type Variation struct {
	Name     string         `yaml:"name" json:"name"`
	Backtest BacktestConfig `yaml:"backtest" json:"backtest"`
	Strategy StrategyConfig `yaml:"strategy" json:"strategy"`
}

// Apply returns base with v's overrides merged in. The result is not validated.
func (v Variation) Apply(base Config) Config {
	out := base
	out.Backtest = MergeBacktest(base.Backtest, v.Backtest)
	out.Strategy = MergeStrategy(base.Strategy, v.Strategy)
	return out
}

// LoadCompare reads a compare file. The base gets defaults applied; each
// variation is validated only when it is run, so one bad variation does not
// sink the rest.
func LoadCompare(path string) (*CompareFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f CompareFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(f.Variations) == 0 {
		return nil, &ValidationError{Field: "variations", Reason: "must list at least one variation"}
	}
	if f.Base.UniverseFile != "" && len(f.Base.Backtest.Symbols) == 0 {
		u, err := data.LoadUniverse(resolveRelative(path, f.Base.UniverseFile))
		if err != nil {
			return nil, err
		}
		f.Base.Backtest.Symbols = u.Symbols()
	}
	f.Base.Backtest = MergeBacktest(Defaults, f.Base.Backtest)
	if (f.Base.Data.Source == "" || f.Base.Data.Source == data.KindJSON) && f.Base.Data.Path != "" {
		f.Base.Data.Path = resolveRelative(path, f.Base.Data.Path)
	}
	for i := range f.Variations {
		if f.Variations[i].Name == "" {
			f.Variations[i].Name = fmt.Sprintf("variation-%d", i+1)
		}
	}
	return &f, nil
}
