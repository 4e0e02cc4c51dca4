package enum

// TradingAction is the outcome of evaluating one trading record against a
// closed candle.
type TradingAction uint8

const (
	_trading_action_beg TradingAction = iota
	TradingActionNoAction
	TradingActionShouldEnter
	TradingActionShouldExit
	_trading_action_end
)

func (a TradingAction) IsAvailable() bool {
	return a > _trading_action_beg && a < _trading_action_end
}

// ShouldPlaceOrder reports whether the action requires an order placement.
func (a TradingAction) ShouldPlaceOrder() bool {
	return a == TradingActionShouldEnter || a == TradingActionShouldExit
}

func (a TradingAction) String() string {
	switch a {
	case TradingActionNoAction:
		return "no_action"
	case TradingActionShouldEnter:
		return "should_enter"
	case TradingActionShouldExit:
		return "should_exit"
	default:
		return "unknown"
	}
}

// PositionState tracks a trading record's derived position.
type PositionState uint8

const (
	_position_state_beg PositionState = iota
	PositionFlat
	PositionEntered
	_position_state_end
)

func (p PositionState) IsAvailable() bool {
	return p > _position_state_beg && p < _position_state_end
}

func (p PositionState) String() string {
	switch p {
	case PositionFlat:
		return "flat"
	case PositionEntered:
		return "entered"
	default:
		return "unknown"
	}
}
