package storage

import (
	"github.com/shopspring/decimal"

	"polotrader/internal/analytics"
	"polotrader/internal/model/enum"
)

// Strategy binds a signal source to a trade direction and volume, with one or
// more trading records executing the same logic independently.
type Strategy struct {
	Name      string
	Signal    analytics.Signal
	Direction enum.OrderSide
	Volume    decimal.Decimal

	records []*TradingRecord
}

// NewStrategy creates a strategy with recordCount independent trading records.
func NewStrategy(name string, signal analytics.Signal, direction enum.OrderSide, volume decimal.Decimal, recordCount int) *Strategy {
	if recordCount <= 0 {
		recordCount = 1
	}
	s := &Strategy{
		Name:      name,
		Signal:    signal,
		Direction: direction,
		Volume:    volume,
	}
	for i := 1; i <= recordCount; i++ {
		s.records = append(s.records, NewTradingRecord(name, i))
	}
	return s
}

// Records returns the trading records in registration order.
func (s *Strategy) Records() []*TradingRecord {
	return s.records
}
