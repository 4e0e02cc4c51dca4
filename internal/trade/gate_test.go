package trade

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanun0323/errors"

	"polotrader/internal/model"
	"polotrader/internal/model/enum"
	"polotrader/internal/storage"
)

type failingSubmitter struct{}

func (failingSubmitter) Submit(context.Context, SubmitRequest) (model.Order, error) {
	return model.Order{}, errors.New("exchange rejected")
}

type journalSpy struct {
	records []string
	err     error
}

func (j *journalSpy) Record(_, record string, _ model.Order) error {
	j.records = append(j.records, record)
	return j.err
}

func closedCandle(close string) model.Candle {
	price := decimal.RequireFromString(close)
	return model.Candle{
		Begin: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 1, 10, 5, 0, 0, time.UTC),
		Open:  price,
		Close: price,
		Min:   price,
		Max:   price,
	}
}

func acquiredRecord(t *testing.T) *storage.TradingRecord {
	t.Helper()
	r := storage.NewTradingRecord("th", 1)
	require.True(t, r.TryAcquire())
	return r
}

func TestPlaceEntryAppendsAndReleases(t *testing.T) {
	g := NewGate(NewSimulatedSubmitter(), nil)
	record := acquiredRecord(t)
	volume := decimal.RequireFromString("0.01")

	order, err := g.Place(t.Context(), record, "USDT_BTC", closedCandle("100"), 7,
		enum.TradingActionShouldEnter, enum.OrderSideBuy, volume, false)
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.Equal(t, enum.OrderSideBuy, order.Side)
	assert.Equal(t, 7, order.Index)
	assert.Equal(t, EntryAmount(volume, decimal.RequireFromString("100"), enum.OrderSideBuy).String(), order.Amount.String())
	assert.Equal(t, enum.PositionEntered, record.Position())
	assert.False(t, record.InFlight())
}

func TestPlaceExitUsesLastEntry(t *testing.T) {
	g := NewGate(NewSimulatedSubmitter(), nil)
	record := acquiredRecord(t)
	volume := decimal.RequireFromString("0.01")

	_, err := g.Place(t.Context(), record, "USDT_BTC", closedCandle("100"), 7,
		enum.TradingActionShouldEnter, enum.OrderSideBuy, volume, false)
	require.NoError(t, err)

	require.True(t, record.TryAcquire())
	order, err := g.Place(t.Context(), record, "USDT_BTC", closedCandle("120"), 9,
		enum.TradingActionShouldExit, enum.OrderSideBuy, volume, false)
	require.NoError(t, err)

	entry, ok := record.LastEntry()
	require.True(t, ok)
	assert.Equal(t, enum.OrderSideSell, order.Side)
	assert.Equal(t, ExitAmount(entry, decimal.RequireFromString("120")).String(), order.Amount.String())
	assert.Equal(t, enum.PositionFlat, record.Position())
	assert.False(t, record.InFlight())
}

func TestPlaceExitWithoutEntryReleases(t *testing.T) {
	g := NewGate(NewSimulatedSubmitter(), nil)
	record := acquiredRecord(t)

	order, err := g.Place(t.Context(), record, "USDT_BTC", closedCandle("100"), 7,
		enum.TradingActionShouldExit, enum.OrderSideBuy, decimal.RequireFromString("0.01"), false)
	assert.ErrorIs(t, err, ErrNoEntryOrder)
	assert.Nil(t, order)
	assert.False(t, record.InFlight())
	assert.Empty(t, record.Orders())
}

func TestPlaceSubmitFailureReleasesWithoutAppend(t *testing.T) {
	g := NewGate(failingSubmitter{}, nil)
	record := acquiredRecord(t)

	order, err := g.Place(t.Context(), record, "USDT_BTC", closedCandle("100"), 7,
		enum.TradingActionShouldEnter, enum.OrderSideBuy, decimal.RequireFromString("0.01"), false)
	require.Error(t, err)
	assert.Nil(t, order)
	assert.False(t, record.InFlight())
	assert.Empty(t, record.Orders())
	assert.Equal(t, enum.PositionFlat, record.Position())
}

func TestPlaceNoActionRejected(t *testing.T) {
	g := NewGate(NewSimulatedSubmitter(), nil)
	record := acquiredRecord(t)

	_, err := g.Place(t.Context(), record, "USDT_BTC", closedCandle("100"), 7,
		enum.TradingActionNoAction, enum.OrderSideBuy, decimal.RequireFromString("0.01"), false)
	assert.ErrorIs(t, err, ErrUnplacedAction)
	assert.False(t, record.InFlight())
}

func TestPlaceJournalFailureDoesNotFailPlacement(t *testing.T) {
	spy := &journalSpy{err: errors.New("db down")}
	g := NewGate(NewSimulatedSubmitter(), spy)
	record := acquiredRecord(t)

	order, err := g.Place(t.Context(), record, "USDT_BTC", closedCandle("100"), 7,
		enum.TradingActionShouldEnter, enum.OrderSideBuy, decimal.RequireFromString("0.01"), false)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, []string{"th-tr-1"}, spy.records)
	assert.Equal(t, enum.PositionEntered, record.Position())
}
