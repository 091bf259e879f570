// Package parallel provides bounded parallel execution for independent
// engine tasks such as canonicalizing many interpretations. A single
// search is never split across goroutines; only whole tasks are.
package parallel

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrPoolShutdown is returned when trying to submit tasks to a shutdown pool.
var ErrPoolShutdown = errors.New("worker pool has been shutdown")

// WorkerPool runs submitted tasks on at most maxWorkers goroutines. The
// first task error cancels the pool context; Shutdown reports it.
type WorkerPool struct {
	maxWorkers int
	group      *errgroup.Group
	ctx        context.Context

	mu     sync.RWMutex
	closed bool
	once   sync.Once
	err    error
}

// NewWorkerPool creates a new worker pool with the specified number of workers.
// If maxWorkers is 0 or negative, it defaults to the number of CPU cores.
func NewWorkerPool(ctx context.Context, maxWorkers int) *WorkerPool {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)
	return &WorkerPool{
		maxWorkers: maxWorkers,
		group:      g,
		ctx:        gctx,
	}
}

// Workers returns the concurrency limit.
func (wp *WorkerPool) Workers() int { return wp.maxWorkers }

// Submit schedules task. If every worker is busy, this call blocks until one
// becomes available. The task receives the pool context, which is cancelled
// once any task fails or the parent context ends.
func (wp *WorkerPool) Submit(task func(ctx context.Context) error) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.closed {
		return ErrPoolShutdown
	}
	if err := wp.ctx.Err(); err != nil {
		return err
	}
	wp.group.Go(func() error {
		if err := wp.ctx.Err(); err != nil {
			return err
		}
		return task(wp.ctx)
	})
	return nil
}

// Shutdown stops accepting tasks, waits for the running ones and returns
// the first task error. It is safe to call more than once.
func (wp *WorkerPool) Shutdown() error {
	wp.once.Do(func() {
		wp.mu.Lock()
		wp.closed = true
		wp.mu.Unlock()
		wp.err = wp.group.Wait()
	})
	return wp.err
}

// ForEach calls fn for every item with at most workers concurrent calls and
// returns the first error. Results should be written by index into a slice
// owned by the caller.
func ForEach[T any](ctx context.Context, workers int, items []T, fn func(ctx context.Context, i int, item T) error) error {
	pool := NewWorkerPool(ctx, workers)
	for i, item := range items {
		i, item := i, item
		if err := pool.Submit(func(ctx context.Context) error {
			return fn(ctx, i, item)
		}); err != nil {
			if werr := pool.Shutdown(); werr != nil {
				return werr
			}
			return err
		}
	}
	return pool.Shutdown()
}
