package utils

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// WorkerPool runs fetch jobs on a bounded number of goroutines. Job starts
// are spaced by the rate limit, and the first job error cancels the context
// every other job receives.
type WorkerPool struct {
	ctx     context.Context
	group   *errgroup.Group
	limiter *rate.Limiter
}

// NewWorkerPool creates a pool bound to ctx. A rateLimitMs of zero or less
// starts jobs as fast as workers free up.
func NewWorkerPool(ctx context.Context, maxWorkers, rateLimitMs int) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(maxWorkers)

	limit := rate.Inf
	if rateLimitMs > 0 {
		limit = rate.Every(time.Duration(rateLimitMs) * time.Millisecond)
	}
	return &WorkerPool{
		ctx:     gctx,
		group:   group,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Submit blocks while all workers are busy. Once the pool is cancelled,
// submitted jobs are skipped.
func (p *WorkerPool) Submit(job func(ctx context.Context) error) {
	p.group.Go(func() error {
		if err := p.limiter.Wait(p.ctx); err != nil {
			return err
		}
		return job(p.ctx)
	})
}

// Wait blocks until every submitted job has returned and reports the first
// error any of them produced.
func (p *WorkerPool) Wait() error {
	return p.group.Wait()
}
