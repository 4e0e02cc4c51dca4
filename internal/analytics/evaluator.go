package analytics

import (
	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"

	"polotrader/internal/model"
	"polotrader/internal/model/enum"
)

var ErrNilSignal = errors.New("analytics: nil signal")

// Signal is the opaque entry/exit rule evaluator a strategy is built from.
// Indicator mathematics live behind this interface.
type Signal interface {
	ShouldEnter(ctx Context) bool
	ShouldExit(ctx Context) bool
}

// Context carries everything the evaluation capability may inspect for one
// trading record on one closed candle.
type Context struct {
	Signal       Signal
	Position     enum.PositionState
	HistoryIndex int
	Candle       model.Candle
	Index        int
	Direction    enum.OrderSide
	Volume       decimal.Decimal
}

// Evaluator decides the trading action for one record on one closed candle.
type Evaluator interface {
	Evaluate(ctx Context) (enum.TradingAction, error)
}

// SeriesEvaluator implements the flat -> entered -> flat position model over
// a signal source. Entries are suppressed on backfilled candles so backfill
// never trades retroactively.
type SeriesEvaluator struct{}

func (SeriesEvaluator) Evaluate(ctx Context) (enum.TradingAction, error) {
	if ctx.Signal == nil {
		return enum.TradingActionNoAction, ErrNilSignal
	}

	switch ctx.Position {
	case enum.PositionFlat:
		if ctx.Index >= ctx.HistoryIndex && ctx.Signal.ShouldEnter(ctx) {
			return enum.TradingActionShouldEnter, nil
		}
	case enum.PositionEntered:
		if ctx.Signal.ShouldExit(ctx) {
			return enum.TradingActionShouldExit, nil
		}
	}
	return enum.TradingActionNoAction, nil
}
