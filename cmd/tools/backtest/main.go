package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"polotrader/internal/analytics"
	"polotrader/internal/dispatch"
	"polotrader/internal/export"
	"polotrader/internal/model"
	"polotrader/internal/model/enum"
	"polotrader/internal/obs"
	"polotrader/internal/ops"
	"polotrader/internal/storage"
	"polotrader/internal/trade"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML config")
	ticksPath := flag.String("ticks", "", "Tick CSV file: time,price,amount,side")
	pairName := flag.String("pair", "", "Pair the ticks belong to (default: first configured pair)")
	exportDir := flag.String("export", "", "Export per-series candle and record CSVs into this directory")
	flag.Parse()

	if *ticksPath == "" {
		log.Fatal("missing -ticks")
	}

	loaded, err := ops.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	pair := *pairName
	if pair == "" {
		pair = loaded.Pairs[0].Name
	}

	metrics := obs.NewMetrics()
	gate := trade.NewGate(trade.NewSimulatedSubmitter(), nil)
	dispatcher := dispatch.NewDispatcher(analytics.SeriesEvaluator{}, gate, nil, metrics, false)

	market := storage.NewMarket(func(series *storage.TimeFrameStorage, index int) {
		if _, ok := dispatcher.Dispatch(series, index); !ok {
			log.Printf("no candle at index %d for %s %s", index, series.Pair(), series.TimeFrame())
		}
	})
	for _, pairSpec := range loaded.Pairs {
		if pairSpec.Name != pair {
			continue
		}
		for _, seriesSpec := range pairSpec.Series {
			series := storage.NewTimeFrameStorage(pair, seriesSpec.TimeFrame)
			for _, spec := range seriesSpec.Strategies {
				series.AddStrategy(storage.NewStrategy(spec.Name, spec.Signal, spec.Direction, spec.Volume, spec.Records))
			}
			market.Register(series)
		}
	}
	if len(market.Series(pair)) == 0 {
		log.Fatalf("pair %s not configured", pair)
	}

	count, err := replay(*ticksPath, pair, market, metrics)
	if err != nil {
		log.Fatalf("replay failed: %v", err)
	}
	fmt.Printf("replayed %d ticks for %s\n", count, pair)

	for _, series := range market.Series(pair) {
		printSummary(series)
	}

	if *exportDir != "" {
		exporter := export.NewCSVExporter(*exportDir)
		for _, series := range market.Series(pair) {
			if path, err := exporter.ExportCandles(series); err == nil {
				fmt.Printf("exported %s\n", path)
			} else {
				log.Printf("export candles failed: %v", err)
			}
			if path, err := exporter.ExportRecords(series); err == nil {
				fmt.Printf("exported %s\n", path)
			} else {
				log.Printf("export records failed: %v", err)
			}
		}
	}
}

func replay(path, pair string, market *storage.Market, metrics *obs.Metrics) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 4

	count := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, err
		}
		if count == 0 && row[0] == "time" {
			continue
		}

		tick, err := parseTick(row)
		if err != nil {
			return count, fmt.Errorf("row %d: %w", count+1, err)
		}

		metrics.IncTick()
		market.Ingest(pair, tick, false)
		count++
	}
}

func parseTick(row []string) (model.Tick, error) {
	t, err := time.Parse(time.RFC3339, row[0])
	if err != nil {
		return model.Tick{}, err
	}
	price, err := decimal.NewFromString(row[1])
	if err != nil {
		return model.Tick{}, err
	}
	amount, err := decimal.NewFromString(row[2])
	if err != nil {
		return model.Tick{}, err
	}
	side, err := enum.ParseOrderSide(row[3])
	if err != nil {
		return model.Tick{}, err
	}
	return model.Tick{Time: t, Price: price, Amount: amount, Side: side}, nil
}

func printSummary(series *storage.TimeFrameStorage) {
	fmt.Printf("%s %s: %d candles\n", series.Pair(), series.TimeFrame(), series.Len())
	for _, strategy := range series.Strategies() {
		for _, record := range strategy.Records() {
			orders := record.Orders()
			var exits []model.ResultTrade
			for _, order := range orders {
				if order.Action == enum.TradingActionShouldExit {
					exits = append(exits, model.ResultTrade{
						Rate:   order.Price,
						Amount: order.Amount,
						Total:  trade.OrderTotal(order),
					})
				}
			}
			fmt.Printf("  %s: orders=%d exits=%d avg_exit_rate=%s exit_amount=%s\n",
				record.Name(), len(orders), len(exits),
				trade.ResultRate(exits, decimal.Zero).StringFixed(model.MoneyScale),
				trade.ResultAmount(exits, decimal.Zero).StringFixed(model.MoneyScale))
		}
	}
}
