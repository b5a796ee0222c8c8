// Package resilience retries operations with exponential backoff.
//
// Pipeline runs that time out report a retryable application error, so a
// caller can wrap a run and try again:
//
//	out, err := resilience.Retry(ctx, cfg, func(ctx context.Context, attempt int) (pipeline.Outcome, error) {
//	    o := p.RunWithTimeout(ctx, req, pipeline.NewSignal(), timeout)
//	    return o, o.Err()
//	})
package resilience
