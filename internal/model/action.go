package model

// Action is the ledger verb recorded on a trade.
// Keep these values stable; they are intended for CSV and JSON output.
type Action string

const (
	ActionBuy   Action = "BUY"
	ActionSell  Action = "SELL"
	ActionShort Action = "SHORT"
	ActionCover Action = "COVER"
)

// IsBuySide reports whether the action lifts the offer (opening a long or
// covering a short). Buy-side fills pay slippage up, sell-side fills down.
func (a Action) IsBuySide() bool {
	return a == ActionBuy || a == ActionCover
}

// IsExit reports whether the action closes a position.
func (a Action) IsExit() bool {
	return a == ActionSell || a == ActionCover
}

// Side is the direction of an open position.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// EntryAction returns the action that opens a position on this side.
func EntryAction(s Side) Action {
	if s == SideShort {
		return ActionShort
	}
	return ActionBuy
}

// ExitAction returns the action that closes a position on this side.
func ExitAction(s Side) Action {
	if s == SideShort {
		return ActionCover
	}
	return ActionSell
}

// Exit reasons recorded on closing trades.
const (
	ReasonStopLoss      = "STOP_LOSS"
	ReasonTakeProfit    = "TAKE_PROFIT"
	ReasonSignal        = "signal"
	ReasonEndOfBacktest = "END_OF_BACKTEST"
)
