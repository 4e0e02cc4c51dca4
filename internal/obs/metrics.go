package obs

import (
	"sync/atomic"
	"time"
)

// Metrics collects lightweight counters and latency stats for the ingestion
// and dispatch pipeline.
type Metrics struct {
	ticksIngested  uint64
	candlesClosed  uint64
	dispatchDrops  uint64
	ordersPlaced   uint64
	orderFailures  uint64
	historyRetries uint64

	dispatchLatency LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	TicksIngested   uint64
	CandlesClosed   uint64
	DispatchDrops   uint64
	OrdersPlaced    uint64
	OrderFailures   uint64
	HistoryRetries  uint64
	DispatchLatency LatencySnapshot
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// IncTick counts one ingested tick.
func (m *Metrics) IncTick() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.ticksIngested, 1)
}

// IncCandleClosed counts one closed candle.
func (m *Metrics) IncCandleClosed() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.candlesClosed, 1)
}

// IncDispatchDrop records a dispatch rejected by a full pool.
func (m *Metrics) IncDispatchDrop() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.dispatchDrops, 1)
}

// IncOrderPlaced counts one confirmed order.
func (m *Metrics) IncOrderPlaced() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.ordersPlaced, 1)
}

// IncOrderFailure counts one failed placement.
func (m *Metrics) IncOrderFailure() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.orderFailures, 1)
}

// IncHistoryRetry counts one retried history window.
func (m *Metrics) IncHistoryRetry() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.historyRetries, 1)
}

// ObserveDispatch measures one candle-close dispatch end to end.
func (m *Metrics) ObserveDispatch(d time.Duration) {
	if m == nil {
		return
	}
	m.dispatchLatency.Observe(d)
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		TicksIngested:   atomic.LoadUint64(&m.ticksIngested),
		CandlesClosed:   atomic.LoadUint64(&m.candlesClosed),
		DispatchDrops:   atomic.LoadUint64(&m.dispatchDrops),
		OrdersPlaced:    atomic.LoadUint64(&m.ordersPlaced),
		OrderFailures:   atomic.LoadUint64(&m.orderFailures),
		HistoryRetries:  atomic.LoadUint64(&m.historyRetries),
		DispatchLatency: m.dispatchLatency.Snapshot(),
	}
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		min := atomic.LoadUint64(&l.min)
		if min != 0 && nanos >= min {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, min, nanos) {
			break
		}
	}

	for {
		max := atomic.LoadUint64(&l.max)
		if nanos <= max {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, max, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	min := atomic.LoadUint64(&l.min)
	max := atomic.LoadUint64(&l.max)
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(min),
		Max:   time.Duration(max),
		Avg:   time.Duration(sum / count),
	}
}
