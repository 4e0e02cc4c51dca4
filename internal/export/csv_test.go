package export

import (
	"encoding/csv"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polotrader/internal/analytics"
	"polotrader/internal/model"
	"polotrader/internal/model/enum"
	"polotrader/internal/storage"
)

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestExportCandles(t *testing.T) {
	series := storage.NewTimeFrameStorage("USDT_BTC", enum.TimeFrameFiveMinutes)
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	series.Ingest(model.Tick{Time: base, Price: decimal.RequireFromString("100"), Amount: decimal.RequireFromString("1"), Side: enum.OrderSideBuy}, false)
	series.Ingest(model.Tick{Time: base.Add(5 * time.Minute), Price: decimal.RequireFromString("101"), Amount: decimal.RequireFromString("2"), Side: enum.OrderSideSell}, false)

	e := NewCSVExporter(t.TempDir())
	e.now = func() time.Time { return base }

	path, err := e.ExportCandles(series)
	require.NoError(t, err)
	assert.Contains(t, path, "candles_USDT_BTC_5m_2024-03-01.csv")

	rows := readRows(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, "begin", rows[0][0])
	assert.Equal(t, "100.00000000", rows[1][2])
	assert.Equal(t, "1", rows[1][8])
	assert.Equal(t, "101.00000000", rows[2][2])
}

func strategyWithOrder(name string) *storage.Strategy {
	strategy := storage.NewStrategy(name, analytics.ThresholdSignal{
		EnterBelow: decimal.RequireFromString("1"),
		ExitAbove:  decimal.RequireFromString("2"),
	}, enum.OrderSideBuy, decimal.RequireFromString("0.01"), 1)

	strategy.Records()[0].Append(model.Order{
		ID:          42,
		RequestTime: time.Date(2024, 3, 1, 10, 5, 0, 0, time.UTC),
		Price:       decimal.RequireFromString("100"),
		Amount:      decimal.RequireFromString("0.5"),
		Side:        enum.OrderSideBuy,
		Action:      enum.TradingActionShouldEnter,
		Index:       3,
	})
	return strategy
}

func TestExportRecords(t *testing.T) {
	series := storage.NewTimeFrameStorage("USDT_BTC", enum.TimeFrameFiveMinutes)
	series.AddStrategy(strategyWithOrder("th"))

	e := NewCSVExporter(t.TempDir())
	e.now = func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }

	path, err := e.ExportRecords(series)
	require.NoError(t, err)
	assert.Contains(t, path, "records_USDT_BTC_5m_2024-03-01.csv")

	rows := readRows(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"th", "th-tr-1", "42", "2024-03-01T10:05:00Z", "buy", "should_enter", "100.00000000", "0.50000000", "3"}, rows[1])
}

func TestExportRecordsKeepsEveryTimeFrameOfAPair(t *testing.T) {
	fiveMin := storage.NewTimeFrameStorage("USDT_BTC", enum.TimeFrameFiveMinutes)
	fiveMin.AddStrategy(strategyWithOrder("five-min"))
	thirtyMin := storage.NewTimeFrameStorage("USDT_BTC", enum.TimeFrameThirtyMinutes)
	thirtyMin.AddStrategy(strategyWithOrder("thirty-min"))

	e := NewCSVExporter(t.TempDir())
	e.now = func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }

	fivePath, err := e.ExportRecords(fiveMin)
	require.NoError(t, err)
	thirtyPath, err := e.ExportRecords(thirtyMin)
	require.NoError(t, err)
	require.NotEqual(t, fivePath, thirtyPath)

	fiveRows := readRows(t, fivePath)
	require.Len(t, fiveRows, 2)
	assert.Equal(t, "five-min-tr-1", fiveRows[1][1])

	thirtyRows := readRows(t, thirtyPath)
	require.Len(t, thirtyRows, 2)
	assert.Equal(t, "thirty-min-tr-1", thirtyRows[1][1])
}
