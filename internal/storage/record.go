package storage

import (
	"fmt"
	"sync"
	"sync/atomic"

	"polotrader/internal/model"
	"polotrader/internal/model/enum"
)

// TradingRecord is one independent run of a strategy's entry/exit logic with
// its own position state and submitted-order history.
type TradingRecord struct {
	id       int
	strategy string

	// inFlight guards against two concurrent order placements for the same
	// record. Acquired by the dispatcher, released by the execution gate on
	// every exit path.
	inFlight atomic.Bool

	mu       sync.Mutex
	position enum.PositionState
	orders   []model.Order
}

func NewTradingRecord(strategy string, id int) *TradingRecord {
	return &TradingRecord{
		id:       id,
		strategy: strategy,
		position: enum.PositionFlat,
	}
}

func (r *TradingRecord) ID() int {
	return r.id
}

// Name is the record's report identifier.
func (r *TradingRecord) Name() string {
	return fmt.Sprintf("%s-tr-%d", r.strategy, r.id)
}

// TryAcquire sets the in-flight flag if it is clear. A single compare-and-set
// is the only serialization point for placements on this record.
func (r *TradingRecord) TryAcquire() bool {
	return r.inFlight.CompareAndSwap(false, true)
}

// Release clears the in-flight flag.
func (r *TradingRecord) Release() {
	r.inFlight.Store(false)
}

// InFlight reports whether a placement currently holds the flag.
func (r *TradingRecord) InFlight() bool {
	return r.inFlight.Load()
}

func (r *TradingRecord) Position() enum.PositionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.position
}

// Append records a submitted order and flips the derived position state.
func (r *TradingRecord) Append(order model.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, order)
	switch order.Action {
	case enum.TradingActionShouldEnter:
		r.position = enum.PositionEntered
	case enum.TradingActionShouldExit:
		r.position = enum.PositionFlat
	}
}

// LastEntry returns the most recent entry order.
func (r *TradingRecord) LastEntry() (model.Order, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.orders) - 1; i >= 0; i-- {
		if r.orders[i].Action == enum.TradingActionShouldEnter {
			return r.orders[i], true
		}
	}
	return model.Order{}, false
}

// Orders returns a copy of the submitted orders in submission order.
func (r *TradingRecord) Orders() []model.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Order, len(r.orders))
	copy(out, r.orders)
	return out
}
