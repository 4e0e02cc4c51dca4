package dispatch

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/logs"

	"polotrader/internal/analytics"
	"polotrader/internal/model"
	"polotrader/internal/model/enum"
	"polotrader/internal/obs"
	"polotrader/internal/storage"
)

// ResultKind classifies the outcome of one trading record evaluation.
type ResultKind uint8

const (
	ResultOK ResultKind = iota
	ResultSkipped
	ResultEvaluationError
	ResultSubmissionError
)

func (k ResultKind) String() string {
	switch k {
	case ResultOK:
		return "ok"
	case ResultSkipped:
		return "skipped"
	case ResultEvaluationError:
		return "evaluation_error"
	case ResultSubmissionError:
		return "submission_error"
	default:
		return "unknown"
	}
}

// RecordResult is the outcome of evaluating one trading record against one
// closed candle.
type RecordResult struct {
	Strategy string
	Record   string
	Action   enum.TradingAction
	Kind     ResultKind
	Order    *model.Order
	Err      error
}

// Report collects every record outcome of one candle-close dispatch.
type Report struct {
	Pair      string
	TimeFrame enum.TimeFrame
	Index     int
	Results   []RecordResult
}

// Gate places orders for eligible records.
type Gate interface {
	Place(ctx context.Context, record *storage.TradingRecord, pair string, candle model.Candle, index int,
		action enum.TradingAction, direction enum.OrderSide, volume decimal.Decimal, realPrice bool) (*model.Order, error)
}

// Dispatcher evaluates every active strategy of a series when one of its
// candles closes. Evaluation runs on the pool, off the ingestion path.
type Dispatcher struct {
	evaluator analytics.Evaluator
	gate      Gate
	pool      *Pool
	metrics   *obs.Metrics
	realPrice bool
}

func NewDispatcher(evaluator analytics.Evaluator, gate Gate, pool *Pool, metrics *obs.Metrics, realPrice bool) *Dispatcher {
	return &Dispatcher{
		evaluator: evaluator,
		gate:      gate,
		pool:      pool,
		metrics:   metrics,
		realPrice: realPrice,
	}
}

// OnCandleClosed submits the dispatch for one closed candle and returns
// without waiting for it. A full pool drops the dispatch; the signal is lost,
// not deferred.
func (d *Dispatcher) OnCandleClosed(series *storage.TimeFrameStorage, index int) {
	d.metrics.IncCandleClosed()
	candle, ok := series.Candle(index)
	if !ok {
		logs.Warnf("no candle at index %d for %s %s", index, series.Pair(), series.TimeFrame())
		return
	}
	if err := d.pool.TrySubmit(func() {
		start := time.Now()
		report := d.evaluate(series, candle, index)
		d.metrics.ObserveDispatch(time.Since(start))
		d.logReport(report)
	}); err != nil {
		d.metrics.IncDispatchDrop()
		logs.Warnf("drop dispatch for %s %s at index %d, err: %+v",
			series.Pair(), series.TimeFrame(), index, err)
	}
}

// Dispatch evaluates one closed candle synchronously and returns the report.
// Replay tooling uses it to keep evaluation in tick order.
func (d *Dispatcher) Dispatch(series *storage.TimeFrameStorage, index int) (Report, bool) {
	candle, ok := series.Candle(index)
	if !ok {
		return Report{}, false
	}
	return d.evaluate(series, candle, index), true
}

// evaluate walks strategies and their records in registration order. Errors
// in one record never abort the remaining records or strategies.
func (d *Dispatcher) evaluate(series *storage.TimeFrameStorage, candle model.Candle, index int) Report {
	report := Report{
		Pair:      series.Pair(),
		TimeFrame: series.TimeFrame(),
		Index:     index,
	}
	historyIndex := series.HistoryIndex()

	for _, strategy := range series.Strategies() {
		entrySignaledOnce := false
		for _, record := range strategy.Records() {
			res := RecordResult{
				Strategy: strategy.Name,
				Record:   record.Name(),
			}

			action, err := d.evaluator.Evaluate(analytics.Context{
				Signal:       strategy.Signal,
				Position:     record.Position(),
				HistoryIndex: historyIndex,
				Candle:       candle,
				Index:        index,
				Direction:    strategy.Direction,
				Volume:       strategy.Volume,
			})
			if err != nil {
				res.Kind = ResultEvaluationError
				res.Err = err
				report.Results = append(report.Results, res)
				continue
			}
			res.Action = action

			if !action.ShouldPlaceOrder() {
				report.Results = append(report.Results, res)
				continue
			}

			canTrade := (action != enum.TradingActionShouldEnter || !entrySignaledOnce) && record.TryAcquire()
			if !canTrade {
				res.Kind = ResultSkipped
				report.Results = append(report.Results, res)
				continue
			}

			order, err := d.gate.Place(context.Background(), record, series.Pair(), candle, index,
				action, strategy.Direction, strategy.Volume, d.realPrice)
			switch {
			case err != nil:
				res.Kind = ResultSubmissionError
				res.Err = err
				d.metrics.IncOrderFailure()
			case order != nil:
				res.Order = order
				d.metrics.IncOrderPlaced()
				if action == enum.TradingActionShouldEnter {
					entrySignaledOnce = true
				}
			}
			report.Results = append(report.Results, res)
		}
	}
	return report
}

func (d *Dispatcher) logReport(report Report) {
	for _, res := range report.Results {
		if res.Err != nil {
			logs.Errorf("dispatch %s %s index %d record %s: %s, err: %+v",
				report.Pair, report.TimeFrame, report.Index, res.Record, res.Kind, res.Err)
			continue
		}
		if res.Order != nil {
			logs.Infof("dispatch %s %s index %d record %s placed %s order %d, price %s, amount %s",
				report.Pair, report.TimeFrame, report.Index, res.Record,
				res.Order.Side, res.Order.ID, res.Order.Price, res.Order.Amount)
		}
	}
}
