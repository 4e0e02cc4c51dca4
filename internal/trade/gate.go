package trade

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"polotrader/internal/model"
	"polotrader/internal/model/enum"
	"polotrader/internal/storage"
)

var (
	ErrNoEntryOrder   = errors.New("trade: no entry order to exit")
	ErrUnplacedAction = errors.New("trade: action does not place orders")
)

// SubmitRequest describes one order for the submission capability.
type SubmitRequest struct {
	Pair      string
	Side      enum.OrderSide
	Price     decimal.Decimal
	Amount    decimal.Decimal
	Action    enum.TradingAction
	Index     int
	RealPrice bool
}

// Submitter is the order submission capability.
type Submitter interface {
	Submit(ctx context.Context, req SubmitRequest) (model.Order, error)
}

// Recorder receives every submitted order for reporting. Failures only log;
// they never fail the placement.
type Recorder interface {
	Record(pair, record string, order model.Order) error
}

// Gate performs at-most-one-in-flight order placement per trading record.
type Gate struct {
	submitter Submitter
	recorder  Recorder
}

// NewGate creates a gate over a submission capability. recorder may be nil.
func NewGate(submitter Submitter, recorder Recorder) *Gate {
	return &Gate{
		submitter: submitter,
		recorder:  recorder,
	}
}

// Place submits one order for a record. The caller has acquired the record's
// in-flight flag; Place releases it on every exit path when the call returns.
// On success the order is appended to the record and the position state flips.
func (g *Gate) Place(ctx context.Context, record *storage.TradingRecord, pair string, candle model.Candle, index int,
	action enum.TradingAction, direction enum.OrderSide, volume decimal.Decimal, realPrice bool) (*model.Order, error) {
	defer record.Release()

	price := candle.Close
	req := SubmitRequest{
		Pair:      pair,
		Price:     price,
		Action:    action,
		Index:     index,
		RealPrice: realPrice,
	}
	switch action {
	case enum.TradingActionShouldEnter:
		req.Side = direction
		req.Amount = EntryAmount(volume, price, direction)
	case enum.TradingActionShouldExit:
		entry, ok := record.LastEntry()
		if !ok {
			return nil, ErrNoEntryOrder
		}
		req.Side = direction.Opposite()
		req.Amount = ExitAmount(entry, price)
	default:
		return nil, ErrUnplacedAction
	}

	order, err := g.submitter.Submit(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "submit order")
	}
	order.Action = action
	order.Index = index
	if order.RequestTime.IsZero() {
		order.RequestTime = time.Now()
	}

	record.Append(order)
	if g.recorder != nil {
		if err := g.recorder.Record(pair, record.Name(), order); err != nil {
			logs.Errorf("journal order %d for %s, err: %+v", order.ID, record.Name(), err)
		}
	}
	return &order, nil
}
