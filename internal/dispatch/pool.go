package dispatch

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/yanun0323/errors"
)

var ErrPoolFull = errors.New("dispatch pool full")

// Pool is a bounded worker pool for candle-close dispatches. Submission never
// blocks; a full queue rejects the task.
type Pool struct {
	tasks   chan func()
	workers int
	running atomic.Bool
	wg      sync.WaitGroup
}

// NewPool allocates a pool with the given worker count and queue capacity.
func NewPool(workers, capacity int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if capacity <= 0 {
		capacity = 1
	}
	return &Pool{
		tasks:   make(chan func(), capacity),
		workers: workers,
	}
}

// Run starts the workers. Subsequent calls are no-ops.
func (p *Pool) Run(ctx context.Context) {
	if p.running.Swap(true) {
		return
	}
	for range p.workers {
		p.wg.Add(1)
		go p.work(ctx)
	}
}

func (p *Pool) work(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case task := <-p.tasks:
			task()
		case <-ctx.Done():
			return
		}
	}
}

// TrySubmit enqueues a task without blocking.
func (p *Pool) TrySubmit(task func()) error {
	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrPoolFull
	}
}

// Wait blocks until every worker has exited after context cancellation.
func (p *Pool) Wait() {
	p.wg.Wait()
}
