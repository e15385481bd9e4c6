// Package worker runs independent evaluation tasks on a bounded set of
// goroutines.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/okian/kpieval/pkg/logger"
	"github.com/okian/kpieval/pkg/metrics"
)

// ErrTaskPanicked wraps a panic recovered from a task.
var ErrTaskPanicked = errors.New("task panicked")

// Task processes the item at index i.
type Task func(ctx context.Context, i int) error

// Pool executes tasks with at most Size goroutines at a time.
type Pool struct {
	size   int
	logger logger.Logger

	active atomic.Int64
}

// NewPool creates a pool. A size below 1 means runtime.NumCPU().
func NewPool(size int, opts ...Option) *Pool {
	if size < 1 {
		size = runtime.NumCPU()
	}
	p := &Pool{size: size}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named("worker-pool")
	}
	return p
}

// Size returns the maximum number of concurrent workers.
func (p *Pool) Size() int {
	return p.size
}

// Run calls task for every index in [0, n) and returns the task errors
// indexed like the input. Once ctx is done, indices that have not started
// get ctx.Err().
func (p *Pool) Run(ctx context.Context, n int, task Task) []error {
	errs := make([]error, n)
	if n == 0 {
		return errs
	}

	workers := min(p.size, n)
	jobs := make(chan int, workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for id := range workers {
		go func() {
			defer wg.Done()
			p.work(ctx, "worker-"+strconv.Itoa(id), jobs, errs, task)
		}()
	}

	next := 0
feed:
	for ; next < n; next++ {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- next:
		}
	}
	close(jobs)
	for i := next; i < n; i++ {
		errs[i] = ctx.Err()
	}

	wg.Wait()
	return errs
}

// work drains jobs. Each index is written by exactly one worker.
func (p *Pool) work(ctx context.Context, name string, jobs <-chan int, errs []error, task Task) {
	log := p.logger.Named(name)
	log.Debug(ctx, "worker started")
	defer log.Debug(ctx, "worker stopped")

	for i := range jobs {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			continue
		}
		metrics.UpdateWorkerActiveCount(int(p.active.Add(1)))
		errs[i] = p.call(ctx, task, i)
		metrics.UpdateWorkerActiveCount(int(p.active.Add(-1)))
		if errs[i] != nil {
			log.Warn(ctx, "task failed", logger.Int("index", i), logger.Error(errs[i]))
		}
	}
}

func (p *Pool) call(ctx context.Context, task Task, i int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()
	return task(ctx, i)
}
