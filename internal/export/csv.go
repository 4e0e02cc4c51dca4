package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/yanun0323/errors"

	"polotrader/internal/model"
	"polotrader/internal/storage"
)

const _fileDatePattern = "2006-01-02"

// CSVExporter writes candle series and trading record summaries into dated
// csv files under one directory.
type CSVExporter struct {
	dir string
	now func() time.Time
}

func NewCSVExporter(dir string) *CSVExporter {
	return &CSVExporter{
		dir: dir,
		now: time.Now,
	}
}

func (e *CSVExporter) filename(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	return filepath.Join(e.dir, fmt.Sprintf("%s_%s.csv", name, e.now().Format(_fileDatePattern)))
}

// ExportCandles writes one row per candle of the series, open candle included.
func (e *CSVExporter) ExportCandles(series *storage.TimeFrameStorage) (string, error) {
	path := e.filename(fmt.Sprintf("candles_%s_%s", series.Pair(), series.TimeFrame()))
	rows := [][]string{
		{"begin", "end", "open", "close", "min", "max", "amount", "volume", "trades"},
	}
	for _, c := range series.Candles() {
		rows = append(rows, []string{
			c.Begin.UTC().Format(time.RFC3339),
			c.End.UTC().Format(time.RFC3339),
			c.Open.StringFixed(model.MoneyScale),
			c.Close.StringFixed(model.MoneyScale),
			c.Min.StringFixed(model.MoneyScale),
			c.Max.StringFixed(model.MoneyScale),
			c.Amount.StringFixed(model.MoneyScale),
			c.Volume.StringFixed(model.MoneyScale),
			strconv.Itoa(c.Trades),
		})
	}

	return path, e.write(path, rows)
}

// ExportRecords writes one row per submitted order across every record of the
// series' strategies. The filename carries the timeframe so a pair trading
// several timeframes writes one file per series.
func (e *CSVExporter) ExportRecords(series *storage.TimeFrameStorage) (string, error) {
	path := e.filename(fmt.Sprintf("records_%s_%s", series.Pair(), series.TimeFrame()))
	rows := [][]string{
		{"strategy", "record", "order_id", "request_time", "side", "action", "price", "amount", "candle_index"},
	}
	for _, strategy := range series.Strategies() {
		for _, record := range strategy.Records() {
			for _, order := range record.Orders() {
				rows = append(rows, []string{
					strategy.Name,
					record.Name(),
					strconv.FormatInt(order.ID, 10),
					order.RequestTime.UTC().Format(time.RFC3339),
					order.Side.String(),
					order.Action.String(),
					order.Price.StringFixed(model.MoneyScale),
					order.Amount.StringFixed(model.MoneyScale),
					strconv.Itoa(order.Index),
				})
			}
		}
	}

	return path, e.write(path, rows)
}

func (e *CSVExporter) write(path string, rows [][]string) error {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return errors.Wrap(err, "create export dir")
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create csv")
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return errors.Wrap(err, "write csv")
	}

	return errors.Wrap(f.Close(), "close csv")
}
