package trade

import (
	"github.com/shopspring/decimal"

	"polotrader/internal/model"
	"polotrader/internal/model/enum"
)

// FeeRate is the exchange maker/taker fee applied to every fill.
var FeeRate = decimal.RequireFromString("0.0025")

// Every multiplication and division truncates to the money scale before the
// result feeds the next step, matching the exchange's reported figures.

// Total is the quote-currency cost or proceeds of a fill.
func Total(price, amount decimal.Decimal) decimal.Decimal {
	return price.Mul(amount).RoundDown(model.MoneyScale)
}

// OrderTotal is Total over an order's price and amount.
func OrderTotal(order model.Order) decimal.Decimal {
	return Total(order.Price, order.Amount)
}

// Fee is the fee charged on the given amount, truncated to the money scale.
func Fee(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(FeeRate).RoundDown(model.MoneyScale)
}

// SubtractFee deducts the fee from a received amount. Amounts at the minimum
// unit stay intact because the fee truncates to zero.
func SubtractFee(amount decimal.Decimal) decimal.Decimal {
	return amount.Sub(Fee(amount))
}

// TotalWithFee is the quote-currency proceeds of an order after the fee.
func TotalWithFee(order model.Order) decimal.Decimal {
	return SubtractFee(OrderTotal(order))
}

// EntryAmount converts the configured trade volume into the base-currency
// amount of an entry order. Buys spend volume as quote currency, sells trade
// the volume as-is.
func EntryAmount(volume, price decimal.Decimal, side enum.OrderSide) decimal.Decimal {
	if side == enum.OrderSideBuy {
		return divTrunc(volume, price)
	}
	return volume
}

// EntrySpent is what the entry order consumed: quote currency for buys,
// base currency for sells.
func EntrySpent(entry model.Order) decimal.Decimal {
	if entry.Side == enum.OrderSideBuy {
		return OrderTotal(entry)
	}
	return entry.Amount
}

// ExitAmount is the base-currency amount the exit order can trade. After a
// buy the holdings are the entry amount less the fee taken in base currency;
// after a sell the fee-adjusted quote proceeds buy back base at the current
// price.
func ExitAmount(entry model.Order, currentPrice decimal.Decimal) decimal.Decimal {
	if entry.Side == enum.OrderSideBuy {
		return SubtractFee(entry.Amount)
	}
	return divTrunc(TotalWithFee(entry), currentPrice)
}

// NetExitGain is the realized exit proceeds after the exit fee.
func NetExitGain(entry, exit model.Order) decimal.Decimal {
	return SubtractFee(Total(exit.Price, exit.Amount))
}

// GrossExitGain is the exit proceeds over the full entry amount before fees.
func GrossExitGain(entry, exit model.Order) decimal.Decimal {
	return Total(exit.Price, entry.Amount)
}

// ResultRate is the volume-weighted average rate across completed trades, or
// fallback when there are none.
func ResultRate(trades []model.ResultTrade, fallback decimal.Decimal) decimal.Decimal {
	if len(trades) == 0 {
		return fallback
	}
	total := decimal.Zero
	amount := decimal.Zero
	for _, t := range trades {
		total = total.Add(t.Rate.Mul(t.Amount))
		amount = amount.Add(t.Amount)
	}
	return divTrunc(total, amount)
}

// ResultAmount is the summed amount across completed trades, or fallback when
// there are none.
func ResultAmount(trades []model.ResultTrade, fallback decimal.Decimal) decimal.Decimal {
	if len(trades) == 0 {
		return fallback
	}
	amount := decimal.Zero
	for _, t := range trades {
		amount = amount.Add(t.Amount)
	}
	return amount
}

func divTrunc(a, b decimal.Decimal) decimal.Decimal {
	q, _ := a.QuoRem(b, model.MoneyScale)
	return q
}
