package model

import (
	"time"

	"github.com/shopspring/decimal"

	"polotrader/internal/model/enum"
)

// Candle is the OHLCV aggregate of trades over one half-open interval
// [Begin, End).
type Candle struct {
	Begin time.Time
	End   time.Time

	Open  decimal.Decimal
	Close decimal.Decimal
	Min   decimal.Decimal
	Max   decimal.Decimal

	// Amount is cumulative base-currency volume, Volume cumulative
	// quote-currency volume.
	Amount decimal.Decimal
	Volume decimal.Decimal
	Trades int
}

// NewCandle opens a candle for the interval containing the tick. The first
// tick fixes the open price.
func NewCandle(tf enum.TimeFrame, tick Tick) Candle {
	end := tf.CandleEndTime(tick.Time)
	return Candle{
		Begin:  end.Add(-tf.Duration()),
		End:    end,
		Open:   tick.Price,
		Close:  tick.Price,
		Min:    tick.Price,
		Max:    tick.Price,
		Amount: tick.Amount,
		Volume: tick.QuoteVolume(),
		Trades: 1,
	}
}

// Fold merges a tick into the open candle. The caller guarantees
// tick.Time < c.End; Begin, End and Open never change here.
func (c *Candle) Fold(tick Tick) {
	c.Close = tick.Price
	if tick.Price.LessThan(c.Min) {
		c.Min = tick.Price
	}
	if tick.Price.GreaterThan(c.Max) {
		c.Max = tick.Price
	}
	c.Amount = c.Amount.Add(tick.Amount)
	c.Volume = c.Volume.Add(tick.QuoteVolume())
	c.Trades++
}

// Covers reports whether t falls inside the candle's interval.
func (c Candle) Covers(t time.Time) bool {
	return !t.Before(c.Begin) && t.Before(c.End)
}
