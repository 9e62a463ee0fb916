package notify

import (
	"context"
	"log/slog"
)

// job is one queued send, dispatched to a worker goroutine.
type job func(ctx context.Context)

// Pool is a bounded worker pool with oldest-drop backpressure: when the
// queue is full, the oldest queued job is discarded to make room for the
// new one, so a slow SES endpoint can never block the Scheduler cycle
// that enqueues notifications.
type Pool struct {
	jobs   chan job
	logger *slog.Logger
	onDrop func()
}

// OnDrop registers a callback invoked once per dropped job, so a metrics
// recorder can count notify.dropped_total without the pool importing it.
func (p *Pool) OnDrop(f func()) {
	p.onDrop = f
}

// NewPool starts workerCount goroutines draining a queue of capacity
// queueCapacity.
func NewPool(workerCount, queueCapacity int, logger *slog.Logger) *Pool {
	p := &Pool{
		jobs:   make(chan job, queueCapacity),
		logger: logger,
	}
	for i := 0; i < workerCount; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for j := range p.jobs {
		j(context.Background())
	}
}

// Submit enqueues j, dropping the oldest queued job first if the queue is
// full.
func (p *Pool) Submit(j job) {
	select {
	case p.jobs <- j:
		return
	default:
	}

	select {
	case dropped := <-p.jobs:
		_ = dropped
		if p.logger != nil {
			p.logger.Warn("notifier queue full, dropped oldest job")
		}
		if p.onDrop != nil {
			p.onDrop()
		}
	default:
	}

	select {
	case p.jobs <- j:
	default:
		if p.logger != nil {
			p.logger.Warn("notifier queue still full after drop, dropping new job")
		}
	}
}
