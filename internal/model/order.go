package model

import (
	"time"

	"github.com/shopspring/decimal"

	"polotrader/internal/model/enum"
)

// Order is a confirmed exchange order together with the candle index it was
// triggered from.
type Order struct {
	ID          int64
	RequestTime time.Time
	Price       decimal.Decimal
	Amount      decimal.Decimal
	Side        enum.OrderSide
	Action      enum.TradingAction
	Index       int
}

// ResultTrade holds rate, amount and total of one completed trade. Used only
// for aggregate reporting.
type ResultTrade struct {
	Rate   decimal.Decimal
	Amount decimal.Decimal
	Total  decimal.Decimal
}
