package storage

import (
	"sync"

	"polotrader/internal/model"
)

// CandleCloseHandler receives a series and the index of a candle closed by
// live ingestion. It must return quickly; ingestion does not wait for the
// work it triggers.
type CandleCloseHandler func(series *TimeFrameStorage, index int)

// Market fans incoming ticks into every registered (pair, timeframe) series.
type Market struct {
	mu      sync.RWMutex
	series  map[string][]*TimeFrameStorage
	onClose CandleCloseHandler
}

func NewMarket(onClose CandleCloseHandler) *Market {
	return &Market{
		series:  make(map[string][]*TimeFrameStorage),
		onClose: onClose,
	}
}

// Register adds a series to the market.
func (m *Market) Register(s *TimeFrameStorage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.series[s.Pair()] = append(m.series[s.Pair()], s)
}

// Series returns the registered series for a pair.
func (m *Market) Series(pair string) []*TimeFrameStorage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.series[pair]
}

// All returns every registered series.
func (m *Market) All() []*TimeFrameStorage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*TimeFrameStorage
	for _, list := range m.series {
		out = append(out, list...)
	}
	return out
}

// Ingest folds one tick into every series of its pair and forwards
// closed-candle events to the handler.
func (m *Market) Ingest(pair string, tick model.Tick, isHistory bool) {
	for _, s := range m.Series(pair) {
		index, closed := s.Ingest(tick, isHistory)
		if closed && m.onClose != nil {
			m.onClose(s, index)
		}
	}
}
