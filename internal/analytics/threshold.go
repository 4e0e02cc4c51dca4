package analytics

import "github.com/shopspring/decimal"

// ThresholdSignal enters below a price floor and exits above a price ceiling.
// It is the simplest usable signal, kept for paper trading and tests.
type ThresholdSignal struct {
	EnterBelow decimal.Decimal
	ExitAbove  decimal.Decimal
}

func (s ThresholdSignal) ShouldEnter(ctx Context) bool {
	return ctx.Candle.Close.LessThan(s.EnterBelow)
}

func (s ThresholdSignal) ShouldExit(ctx Context) bool {
	return ctx.Candle.Close.GreaterThan(s.ExitAbove)
}
