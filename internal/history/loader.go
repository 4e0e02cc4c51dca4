package history

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/logs"

	"polotrader/internal/model"
	"polotrader/internal/model/enum"
	"polotrader/internal/obs"
)

const (
	// maxWindow is the largest range the exchange serves per request.
	maxWindow  = 6 * time.Hour
	retryDelay = 5 * time.Second
	cursorStep = time.Second
)

// ErrTransient marks request-level failures worth retrying. Anything else is
// permanent and aborts the backfill.
var ErrTransient = errors.New("history: transient request failure")

// Trade is one historical exchange trade row.
type Trade struct {
	TradeID int64
	Time    time.Time
	Side    enum.OrderSide
	Rate    decimal.Decimal
	Amount  decimal.Decimal
	Total   decimal.Decimal
}

// Tick converts the row for candle ingestion.
func (t Trade) Tick() model.Tick {
	return model.Tick{
		Time:   t.Time,
		Price:  t.Rate,
		Amount: t.Amount,
		Side:   t.Side,
	}
}

// Source returns historical trades for one window, oldest first.
type Source interface {
	TradesBetween(ctx context.Context, pair string, from, to time.Time) ([]Trade, error)
}

// Loader backfills trades over a range in fixed-size windows. A failed window
// is retried after a fixed delay without advancing the cursor, with no retry
// limit; a persistently failing window blocks forward progress and surfaces
// through its retry logging.
type Loader struct {
	source  Source
	metrics *obs.Metrics
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewLoader(source Source, metrics *obs.Metrics) *Loader {
	return &Loader{
		source:  source,
		metrics: metrics,
		sleep:   ctxSleep,
	}
}

// Load fetches every trade in [start, end). The cursor only advances past a
// window after that window succeeds.
func (l *Loader) Load(ctx context.Context, pair string, start, end time.Time) ([]Trade, error) {
	logs.Infof("loading %s trades history from %s to %s", pair, start.UTC(), end.UTC())

	var trades []Trade
	from := start
	for from.Before(end) {
		to := from.Add(maxWindow)
		if to.After(end) {
			to = end
		}

		batch, err := l.source.TradesBetween(ctx, pair, from, to)
		if err != nil {
			if !errors.Is(err, ErrTransient) {
				return trades, err
			}
			l.metrics.IncHistoryRetry()
			logs.Errorf("history window %s - %s for %s failed, retrying, err: %+v",
				from.UTC(), to.UTC(), pair, err)
			if err := l.sleep(ctx, retryDelay); err != nil {
				return trades, err
			}
			continue
		}

		trades = append(trades, batch...)
		from = to.Add(cursorStep)
	}
	return trades, nil
}

func ctxSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
