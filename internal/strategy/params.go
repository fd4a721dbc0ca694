package strategy

import (
	"fmt"
	"strconv"
)

// Params are loosely typed strategy parameters as decoded from YAML or JSON.
type Params map[string]interface{}

// Float returns key as a float64, or def when absent or not numeric.
func (p Params) Float(key string, def float64) float64 {
	if v, ok := p[key]; ok && v != nil {
		switch x := v.(type) {
		case float64:
			return x
		case float32:
			return float64(x)
		case int:
			return float64(x)
		case int64:
			return float64(x)
		case string:
			if f, err := strconv.ParseFloat(x, 64); err == nil {
				return f
			}
		}
	}
	return def
}

func (p Params) Int(key string, def int) int {
	return int(p.Float(key, float64(def)))
}

// ParamError reports a parameter outside its allowed range.
type ParamError struct {
	Strategy string
	Param    string
	Reason   string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("strategy %s: %s %s", e.Strategy, e.Param, e.Reason)
}
