package model

import (
	"time"

	"github.com/shopspring/decimal"

	"polotrader/internal/model/enum"
)

// MoneyScale is the fixed fractional precision of every monetary value.
// It matches the exchange's 8-digit (satoshi) precision.
const MoneyScale = 8

// Tick is a single exchange trade. Immutable once produced.
type Tick struct {
	Time   time.Time
	Price  decimal.Decimal
	Amount decimal.Decimal
	Side   enum.OrderSide
}

// QuoteVolume is the quote-currency value of the trade, rounded to the
// money scale.
func (t Tick) QuoteVolume() decimal.Decimal {
	return t.Price.Mul(t.Amount).RoundDown(MoneyScale)
}
