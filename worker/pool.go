// Package worker runs best-effort background tasks on a fixed set of
// goroutines fed by a bounded queue.
package worker

import (
	"context"
	"sync"
	"time"

	"foundersnexus/logging"
)

// Task is a function that represents a background job.
type Task func(ctx context.Context) error

type Pool struct {
	log       logging.Logger
	taskQueue chan namedTask
	timeout   time.Duration
	wg        sync.WaitGroup

	mu        sync.RWMutex
	isClosing bool
}

type namedTask struct {
	name string
	run  Task
}

// NewPool starts size workers. Each task gets its own timeout.
func NewPool(size, queue int, timeout time.Duration, log logging.Logger) *Pool {
	if size <= 0 {
		size = 1
	}
	if queue <= 0 {
		queue = 1000
	}
	p := &Pool{
		log:       log,
		taskQueue: make(chan namedTask, queue),
		timeout:   timeout,
	}
	for range size {
		p.wg.Add(1)
		go p.startWorker()
	}
	return p
}

func (p *Pool) startWorker() {
	defer p.wg.Done()
	for t := range p.taskQueue {
		p.run(t)
	}
}

func (p *Pool) run(t namedTask) {
	ctx := context.Background()
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			p.log.Error(ctx, "worker task panicked", "task", t.name, "panic", r)
		}
	}()
	if err := t.run(ctx); err != nil {
		p.log.Warn(ctx, "worker task failed", "task", t.name, "error", err)
	}
}

// Submit queues a task. It reports false when the task was dropped because
// the queue is full or the pool is shutting down.
func (p *Pool) Submit(name string, t Task) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.isClosing {
		p.log.Warn(context.Background(), "task submitted during shutdown, dropping", "task", name)
		return false
	}
	select {
	case p.taskQueue <- namedTask{name: name, run: t}:
		return true
	default:
		p.log.Warn(context.Background(), "task queue full, dropping task", "task", name)
		return false
	}
}

// Shutdown closes the queue and waits for queued tasks to finish.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.isClosing {
		p.mu.Unlock()
		return
	}
	p.isClosing = true
	close(p.taskQueue)
	p.mu.Unlock()

	p.wg.Wait()
}
