package analytics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polotrader/internal/model"
	"polotrader/internal/model/enum"
)

func thresholdCtx(close string, position enum.PositionState, index, historyIndex int) Context {
	return Context{
		Signal: ThresholdSignal{
			EnterBelow: decimal.RequireFromString("100"),
			ExitAbove:  decimal.RequireFromString("110"),
		},
		Position:     position,
		HistoryIndex: historyIndex,
		Candle:       model.Candle{Close: decimal.RequireFromString(close)},
		Index:        index,
		Direction:    enum.OrderSideBuy,
		Volume:       decimal.RequireFromString("0.01"),
	}
}

func TestEvaluateEntersWhenFlat(t *testing.T) {
	action, err := SeriesEvaluator{}.Evaluate(thresholdCtx("99", enum.PositionFlat, 5, 3))
	require.NoError(t, err)
	assert.Equal(t, enum.TradingActionShouldEnter, action)
}

func TestEvaluateSuppressesEntryOnBackfill(t *testing.T) {
	action, err := SeriesEvaluator{}.Evaluate(thresholdCtx("99", enum.PositionFlat, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, enum.TradingActionNoAction, action)
}

func TestEvaluateExitsWhenEntered(t *testing.T) {
	action, err := SeriesEvaluator{}.Evaluate(thresholdCtx("111", enum.PositionEntered, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, enum.TradingActionShouldExit, action)
}

func TestEvaluateNoActionBetweenThresholds(t *testing.T) {
	action, err := SeriesEvaluator{}.Evaluate(thresholdCtx("105", enum.PositionFlat, 5, 3))
	require.NoError(t, err)
	assert.Equal(t, enum.TradingActionNoAction, action)

	action, err = SeriesEvaluator{}.Evaluate(thresholdCtx("105", enum.PositionEntered, 5, 3))
	require.NoError(t, err)
	assert.Equal(t, enum.TradingActionNoAction, action)
}

func TestEvaluateNilSignal(t *testing.T) {
	ctx := thresholdCtx("99", enum.PositionFlat, 5, 3)
	ctx.Signal = nil
	_, err := SeriesEvaluator{}.Evaluate(ctx)
	assert.ErrorIs(t, err, ErrNilSignal)
}
