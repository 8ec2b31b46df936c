package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/osse101/BrandishGacha_Go/internal/logger"
)

// ErrPoolStopped is returned when a job is enqueued after Stop.
var ErrPoolStopped = errors.New(ErrMsgPoolStopped)

// Job is one unit of work run by the pool.
type Job interface {
	Process(ctx context.Context) error
}

// JobFunc adapts a plain function to Job.
type JobFunc func(ctx context.Context) error

func (f JobFunc) Process(ctx context.Context) error { return f(ctx) }

// Pool runs jobs on a fixed number of goroutines fed from a bounded queue.
// A failing or panicking job is logged and counted; it never takes its
// worker down.
type Pool struct {
	workers int
	queue   chan Job
	wg      sync.WaitGroup
	failed  atomic.Int64

	mu      sync.RWMutex
	stopped bool
}

func NewPool(workers, queueSize int) *Pool {
	return &Pool{
		workers: max(workers, 1),
		queue:   make(chan Job, max(queueSize, 0)),
	}
}

// Start launches the workers. Every job is processed with ctx.
func (p *Pool) Start(ctx context.Context) {
	p.wg.Add(p.workers)
	for id := range p.workers {
		go p.run(ctx, id)
	}
}

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()
	for job := range p.queue {
		if err := p.process(ctx, job); err != nil {
			p.failed.Add(1)
			logger.FromContext(ctx).Error(LogMsgWorkerJobFailed, "worker", id, "error", err)
		}
	}
}

func (p *Pool) process(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %v", ErrMsgJobPanicked, r)
		}
	}()
	return job.Process(ctx)
}

// Enqueue hands job to the workers, blocking while the queue is full.
func (p *Pool) Enqueue(ctx context.Context, job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.queue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop closes the queue, waits for queued jobs to finish and returns how
// many of them failed. Calling it again only repeats the count.
func (p *Pool) Stop() int64 {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		close(p.queue)
	}
	p.mu.Unlock()
	p.wg.Wait()
	return p.failed.Load()
}
