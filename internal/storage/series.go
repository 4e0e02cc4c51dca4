package storage

import (
	"sync"

	"polotrader/internal/model"
	"polotrader/internal/model/enum"
)

// TimeFrameStorage owns the append-only candle sequence for one
// (currency pair, timeframe) series, the boundary between backfilled and live
// candles, and the strategies bound to the series. A candle index is a stable
// identifier once the candle is closed.
type TimeFrameStorage struct {
	pair      string
	timeFrame enum.TimeFrame

	mu           sync.RWMutex
	candles      []model.Candle
	historyIndex int
	strategies   []*Strategy
}

func NewTimeFrameStorage(pair string, timeFrame enum.TimeFrame) *TimeFrameStorage {
	return &TimeFrameStorage{
		pair:      pair,
		timeFrame: timeFrame,
	}
}

func (s *TimeFrameStorage) Pair() string {
	return s.pair
}

func (s *TimeFrameStorage) TimeFrame() enum.TimeFrame {
	return s.timeFrame
}

// Ingest folds a tick into the open candle, or rolls the series forward when
// the tick crosses the open candle's end boundary. A roll lazily opens the
// candle containing the tick, so a boundary with no trades never materializes
// an empty candle. History ticks only advance the history index; live rolls
// report the index of the candle that just closed.
func (s *TimeFrameStorage) Ingest(tick model.Tick, isHistory bool) (closedIndex int, closed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	last := len(s.candles) - 1
	if last >= 0 && tick.Time.Before(s.candles[last].End) {
		s.candles[last].Fold(tick)
		return 0, false
	}

	s.candles = append(s.candles, model.NewCandle(s.timeFrame, tick))
	if isHistory {
		s.historyIndex = last + 1
		return 0, false
	}
	if last < 0 {
		return 0, false
	}
	return last, true
}

// HistoryIndex is the index of the first candle built from live ticks.
func (s *TimeFrameStorage) HistoryIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.historyIndex
}

// Len is the number of candles, open candle included.
func (s *TimeFrameStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.candles)
}

// Candle returns the candle at the given index by value.
func (s *TimeFrameStorage) Candle(index int) (model.Candle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.candles) {
		return model.Candle{}, false
	}
	return s.candles[index], true
}

// Candles returns a copy of the whole sequence for reporting.
func (s *TimeFrameStorage) Candles() []model.Candle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Candle, len(s.candles))
	copy(out, s.candles)
	return out
}

// AddStrategy appends a strategy; evaluation follows registration order.
func (s *TimeFrameStorage) AddStrategy(strategy *Strategy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strategies = append(s.strategies, strategy)
}

// Strategies returns the active strategies in registration order.
func (s *TimeFrameStorage) Strategies() []*Strategy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Strategy, len(s.strategies))
	copy(out, s.strategies)
	return out
}
