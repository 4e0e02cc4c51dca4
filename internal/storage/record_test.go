package storage

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polotrader/internal/model"
	"polotrader/internal/model/enum"
)

func TestTradingRecordAcquireIsExclusive(t *testing.T) {
	r := NewTradingRecord("th", 1)
	assert.Equal(t, "th-tr-1", r.Name())

	require.True(t, r.TryAcquire())
	assert.False(t, r.TryAcquire())
	assert.True(t, r.InFlight())

	r.Release()
	assert.True(t, r.TryAcquire())
}

func TestTradingRecordPositionFollowsOrders(t *testing.T) {
	r := NewTradingRecord("th", 1)
	assert.Equal(t, enum.PositionFlat, r.Position())

	entry := model.Order{
		ID:          1,
		RequestTime: time.Now(),
		Price:       decimal.RequireFromString("100"),
		Amount:      decimal.RequireFromString("0.5"),
		Side:        enum.OrderSideBuy,
		Action:      enum.TradingActionShouldEnter,
	}
	r.Append(entry)
	assert.Equal(t, enum.PositionEntered, r.Position())

	got, ok := r.LastEntry()
	require.True(t, ok)
	assert.Equal(t, int64(1), got.ID)

	r.Append(model.Order{ID: 2, Side: enum.OrderSideSell, Action: enum.TradingActionShouldExit})
	assert.Equal(t, enum.PositionFlat, r.Position())
	assert.Len(t, r.Orders(), 2)

	// LastEntry still points at the original entry after the exit.
	got, ok = r.LastEntry()
	require.True(t, ok)
	assert.Equal(t, int64(1), got.ID)
}
