package pipeline

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/pool"
)

// BatchOptions configures RunBatch.
type BatchOptions struct {
	// Concurrency caps simultaneous runs. Zero or less means one per request.
	Concurrency int
	// Timeout applies to each run individually. Zero disables it.
	Timeout time.Duration
}

// RunBatch runs each request as an independent run with its own signal and
// returns the outcomes in request order. Runs still waiting for a slot when
// ctx is cancelled settle as Cancelled without starting a stage.
func (p *Pipeline) RunBatch(ctx context.Context, reqs []any, opts BatchOptions) []Outcome {
	outcomes := make([]Outcome, len(reqs))
	if len(reqs) == 0 {
		return outcomes
	}

	limit := opts.Concurrency
	if limit <= 0 || limit > len(reqs) {
		limit = len(reqs)
	}

	wp := pool.New().WithMaxGoroutines(limit)
	for i, req := range reqs {
		wp.Go(func() {
			outcomes[i] = p.RunWithTimeout(ctx, req, NewSignal(), opts.Timeout)
		})
	}
	wp.Wait()
	return outcomes
}
