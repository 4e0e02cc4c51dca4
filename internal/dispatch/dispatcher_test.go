package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanun0323/errors"

	"polotrader/internal/analytics"
	"polotrader/internal/model"
	"polotrader/internal/model/enum"
	"polotrader/internal/obs"
	"polotrader/internal/storage"
)

type fakeGate struct {
	placed []string
	fail   bool
}

func (g *fakeGate) Place(_ context.Context, record *storage.TradingRecord, _ string, candle model.Candle, index int,
	action enum.TradingAction, direction enum.OrderSide, volume decimal.Decimal, _ bool) (*model.Order, error) {
	defer record.Release()
	if g.fail {
		return nil, errors.New("submit refused")
	}

	order := model.Order{
		ID:          int64(len(g.placed) + 1),
		RequestTime: time.Now(),
		Price:       candle.Close,
		Amount:      volume,
		Side:        direction,
		Action:      action,
		Index:       index,
	}
	record.Append(order)
	g.placed = append(g.placed, record.Name())
	return &order, nil
}

func closedSeries(t *testing.T, closePrice string) *storage.TimeFrameStorage {
	t.Helper()
	s := storage.NewTimeFrameStorage("USDT_BTC", enum.TimeFrameFiveMinutes)
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	s.Ingest(model.Tick{Time: base, Price: decimal.RequireFromString(closePrice), Amount: decimal.RequireFromString("1"), Side: enum.OrderSideBuy}, false)
	s.Ingest(model.Tick{Time: base.Add(5 * time.Minute), Price: decimal.RequireFromString(closePrice), Amount: decimal.RequireFromString("1"), Side: enum.OrderSideBuy}, false)
	return s
}

func enterStrategy(name string, records int) *storage.Strategy {
	return storage.NewStrategy(name, analytics.ThresholdSignal{
		EnterBelow: decimal.RequireFromString("100"),
		ExitAbove:  decimal.RequireFromString("110"),
	}, enum.OrderSideBuy, decimal.RequireFromString("0.01"), records)
}

func TestDispatchEntersOncePerStrategy(t *testing.T) {
	series := closedSeries(t, "90")
	series.AddStrategy(enterStrategy("th", 3))

	gate := &fakeGate{}
	d := NewDispatcher(analytics.SeriesEvaluator{}, gate, nil, obs.NewMetrics(), false)

	report, ok := d.Dispatch(series, 0)
	require.True(t, ok)
	require.Len(t, report.Results, 3)

	assert.Equal(t, ResultOK, report.Results[0].Kind)
	require.NotNil(t, report.Results[0].Order)
	assert.Equal(t, ResultSkipped, report.Results[1].Kind)
	assert.Equal(t, ResultSkipped, report.Results[2].Kind)
	assert.Equal(t, []string{"th-tr-1"}, gate.placed)
}

func TestDispatchSkipsRecordsInFlight(t *testing.T) {
	series := closedSeries(t, "90")
	strategy := enterStrategy("th", 2)
	series.AddStrategy(strategy)

	require.True(t, strategy.Records()[0].TryAcquire())

	gate := &fakeGate{}
	d := NewDispatcher(analytics.SeriesEvaluator{}, gate, nil, obs.NewMetrics(), false)

	report, ok := d.Dispatch(series, 0)
	require.True(t, ok)
	assert.Equal(t, ResultSkipped, report.Results[0].Kind)
	assert.Equal(t, ResultOK, report.Results[1].Kind)
	assert.Equal(t, []string{"th-tr-2"}, gate.placed)
}

func TestDispatchIsolatesStrategyErrors(t *testing.T) {
	series := closedSeries(t, "90")
	series.AddStrategy(storage.NewStrategy("broken", nil, enum.OrderSideBuy, decimal.RequireFromString("0.01"), 1))
	series.AddStrategy(enterStrategy("th", 1))

	gate := &fakeGate{}
	d := NewDispatcher(analytics.SeriesEvaluator{}, gate, nil, obs.NewMetrics(), false)

	report, ok := d.Dispatch(series, 0)
	require.True(t, ok)
	require.Len(t, report.Results, 2)

	assert.Equal(t, ResultEvaluationError, report.Results[0].Kind)
	assert.ErrorIs(t, report.Results[0].Err, analytics.ErrNilSignal)
	assert.Equal(t, ResultOK, report.Results[1].Kind)
}

func TestDispatchSubmissionFailureKeepsEntryArmed(t *testing.T) {
	series := closedSeries(t, "90")
	series.AddStrategy(enterStrategy("th", 2))

	gate := &fakeGate{fail: true}
	metrics := obs.NewMetrics()
	d := NewDispatcher(analytics.SeriesEvaluator{}, gate, nil, metrics, false)

	report, ok := d.Dispatch(series, 0)
	require.True(t, ok)

	// A failed submission never sets the once-per-strategy entry latch, so
	// the next record still attempts the entry.
	assert.Equal(t, ResultSubmissionError, report.Results[0].Kind)
	assert.Equal(t, ResultSubmissionError, report.Results[1].Kind)
	assert.Equal(t, uint64(2), metrics.Snapshot().OrderFailures)
}

func TestOnCandleClosedRunsThroughPool(t *testing.T) {
	series := closedSeries(t, "90")
	series.AddStrategy(enterStrategy("th", 1))

	gate := &fakeGate{}
	pool := NewPool(1, 4)
	pool.Run(t.Context())
	d := NewDispatcher(analytics.SeriesEvaluator{}, gate, pool, obs.NewMetrics(), false)

	d.OnCandleClosed(series, 0)

	require.Eventually(t, func() bool {
		return series.Strategies()[0].Records()[0].Position() == enum.PositionEntered
	}, time.Second, 10*time.Millisecond)
}

func TestOnCandleClosedDropsWhenPoolFull(t *testing.T) {
	series := closedSeries(t, "90")
	series.AddStrategy(enterStrategy("th", 1))

	pool := NewPool(1, 1)
	require.NoError(t, pool.TrySubmit(func() {}))

	metrics := obs.NewMetrics()
	d := NewDispatcher(analytics.SeriesEvaluator{}, &fakeGate{}, pool, metrics, false)

	d.OnCandleClosed(series, 0)
	assert.Equal(t, uint64(1), metrics.Snapshot().DispatchDrops)
}
