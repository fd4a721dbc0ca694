package backtest

import "equity-backtest/internal/model"

// Touch identifies which protective level a bar reached.
type Touch int

const (
	TouchNone Touch = iota
	TouchStop
	TouchTarget
)

// ResolveTouch checks a bar's range against a position's stop and target.
// The stop is checked first and short-circuits: a bar that spans both
// levels resolves as a stop-loss, never a take-profit.
func ResolveTouch(pos model.Position, bar model.Bar) Touch {
	if pos.Side == model.SideShort {
		if bar.High >= pos.StopLoss {
			return TouchStop
		}
		if bar.Low <= pos.TakeProfit {
			return TouchTarget
		}
		return TouchNone
	}
	if bar.Low <= pos.StopLoss {
		return TouchStop
	}
	if bar.High >= pos.TakeProfit {
		return TouchTarget
	}
	return TouchNone
}

// exitFor maps a touch to the fill price and recorded reason.
// Protective exits fill at the level itself.
func exitFor(pos model.Position, t Touch) (float64, string, bool) {
	switch t {
	case TouchStop:
		return pos.StopLoss, model.ReasonStopLoss, true
	case TouchTarget:
		return pos.TakeProfit, model.ReasonTakeProfit, true
	default:
		return 0, "", false
	}
}
