// Package worker runs classification jobs on a bounded set of goroutines.
package worker

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/logger"
)

var (
	// ErrQueueFull is returned when Submit cannot enqueue without blocking.
	ErrQueueFull = errors.New("worker: queue full")
	// ErrStopped is returned by Submit after Stop.
	ErrStopped = errors.New("worker: pool stopped")
)

// Pool manages background workers for async jobs.
type Pool struct {
	workers int
	jobs    chan func()
	wg      sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// NewPool creates a pool with the given worker count and queue size.
func NewPool(workers int, queueSize int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{workers: workers, jobs: make(chan func(), queueSize)}
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.runJob(job)
			}
		}()
	}
}

// Stop closes the queue and waits for queued jobs to finish.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}

// Submit queues a job without blocking.
func (p *Pool) Submit(job func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}
	select {
	case p.jobs <- job:
		return nil
	default:
		logger.Warn("worker: dropping job, queue full", logger.Int("capacity", cap(p.jobs)))
		return ErrQueueFull
	}
}

func (p *Pool) runJob(job func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("worker: job panicked", logger.String("panic", fmt.Sprint(r)))
		}
	}()
	job()
}
