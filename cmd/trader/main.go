package main

import (
	"context"
	"flag"
	"log"
	"time"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/joho/godotenv"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"

	"polotrader/internal/analytics"
	"polotrader/internal/dispatch"
	"polotrader/internal/export"
	"polotrader/internal/history"
	"polotrader/internal/ingest"
	"polotrader/internal/obs"
	"polotrader/internal/ops"
	"polotrader/internal/storage"
	"polotrader/internal/trade"
	"polotrader/pkg/conn"
)

const _metricsInterval = 30 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML config")
	envPath := flag.String("env", "", "Path to dotenv file with credentials")
	profile := flag.Bool("profile", false, "Enable continuous profiling")
	flag.Parse()

	if *envPath != "" {
		if err := godotenv.Load(*envPath); err != nil {
			log.Fatalf("load env file failed: %v", err)
		}
	}

	loaded, err := ops.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	creds := ops.LoadCredentials()

	if *profile && loaded.Profile.ServerAddress != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "polotrader",
			ServerAddress:   loaded.Profile.ServerAddress,
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileInuseObjects,
			},
		})
		if err != nil {
			log.Fatalf("pyroscope start failed: %v", err)
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := obs.NewMetrics()

	var recorder trade.Recorder
	if loaded.Journal.Enabled {
		journalClient, err := conn.New(conn.Option{
			Host:     loaded.Journal.Host,
			Port:     loaded.Journal.Port,
			User:     loaded.Journal.User,
			Password: creds.JournalPwd,
			Database: loaded.Journal.Database,
		})
		if err != nil {
			log.Fatalf("journal connect failed: %v", err)
		}
		defer journalClient.Close()

		journal, err := export.NewJournal(journalClient.DB())
		if err != nil {
			log.Fatalf("journal migrate failed: %v", err)
		}
		recorder = journal
	}

	var submitter trade.Submitter
	if loaded.RealPrice {
		if creds.APIKey == "" || creds.APISecret == "" {
			log.Fatal("realPrice requires POLONIEX_API_KEY and POLONIEX_API_SECRET")
		}
		submitter = trade.NewPoloniexClient(loaded.Poloniex.TradingURL, creds.APIKey, creds.APISecret)
	} else {
		submitter = trade.NewSimulatedSubmitter()
	}

	gate := trade.NewGate(submitter, recorder)
	pool := dispatch.NewPool(loaded.Dispatch.Workers, loaded.Dispatch.Queue)
	pool.Run(ctx)
	dispatcher := dispatch.NewDispatcher(analytics.SeriesEvaluator{}, gate, pool, metrics, loaded.RealPrice)

	market := storage.NewMarket(dispatcher.OnCandleClosed)
	pairs := make([]string, 0, len(loaded.Pairs))
	for _, pair := range loaded.Pairs {
		pairs = append(pairs, pair.Name)
		for _, seriesSpec := range pair.Series {
			series := storage.NewTimeFrameStorage(pair.Name, seriesSpec.TimeFrame)
			for _, spec := range seriesSpec.Strategies {
				series.AddStrategy(storage.NewStrategy(spec.Name, spec.Signal, spec.Direction, spec.Volume, spec.Records))
			}
			market.Register(series)
		}
	}

	if err := backfill(ctx, loaded, market, metrics, pairs); err != nil {
		log.Fatalf("history backfill failed: %v", err)
	}

	feed := ingest.NewPoloniexPub(ctx, loaded.Poloniex.WsURL)
	if err := feed.StartWebsocket(ctx); err != nil {
		log.Fatalf("websocket start failed: %v", err)
	}
	if err := feed.SubscribeTrades(ctx, pairs); err != nil {
		log.Fatalf("trades subscribe failed: %v", err)
	}
	feed.KeepAlive(ctx)

	unsubscribe := feed.ObserveTrades(ctx, func(t ingest.PoloniexTrade) {
		tick, err := t.Tick()
		if err != nil {
			logs.Warnf("drop malformed trade %s, err: %+v", t.ID, err)
			return
		}
		metrics.IncTick()
		market.Ingest(t.Symbol, tick, false)
	})

	go reportMetrics(ctx, metrics)

	logs.Infof("trading %d pair(s), realPrice: %t", len(pairs), loaded.RealPrice)
	<-sys.Shutdown()
	logs.Info("shutting down")

	cancel()
	unsubscribe()
	if !feed.CloseWhenEmpty() {
		feed.Close()
	}
	pool.Wait()

	if loaded.Export.Dir != "" {
		exportAll(loaded.Export.Dir, market)
	}
}

func backfill(ctx context.Context, loaded ops.Loaded, market *storage.Market, metrics *obs.Metrics, pairs []string) error {
	client := history.NewClient(loaded.Poloniex.PublicURL)
	loader := history.NewLoader(client, metrics)

	end := time.Now()
	start := end.Add(-time.Duration(loaded.History.Hours) * time.Hour)

	for _, pair := range pairs {
		trades, err := loader.Load(ctx, pair, start, end)
		if err != nil {
			return err
		}
		for _, trade := range trades {
			market.Ingest(pair, trade.Tick(), true)
		}
		logs.Infof("backfilled %s, trades: %d", pair, len(trades))
	}

	return nil
}

func reportMetrics(ctx context.Context, metrics *obs.Metrics) {
	ticker := time.NewTicker(_metricsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := metrics.Snapshot()
			logs.Infof("ticks: %d, closed: %d, drops: %d, orders: %d, failures: %d, retries: %d, dispatch avg: %s",
				s.TicksIngested, s.CandlesClosed, s.DispatchDrops, s.OrdersPlaced, s.OrderFailures, s.HistoryRetries,
				s.DispatchLatency.Avg)
		}
	}
}

func exportAll(dir string, market *storage.Market) {
	exporter := export.NewCSVExporter(dir)
	for _, series := range market.All() {
		path, err := exporter.ExportCandles(series)
		if err != nil {
			logs.Errorf("export candles, err: %+v", err)
			continue
		}
		logs.Infof("exported %s", path)

		path, err = exporter.ExportRecords(series)
		if err != nil {
			logs.Errorf("export records, err: %+v", err)
			continue
		}
		logs.Infof("exported %s", path)
	}
}
