package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Handle controls a run started with Start.
type Handle struct {
	r *run
}

// StartOption configures a run started with Start.
type StartOption func(*startOptions)

type startOptions struct {
	timeout time.Duration
	sig     *Signal
	id      string
}

// WithTimeout races the run against a timer, as RunWithTimeout does.
func WithTimeout(d time.Duration) StartOption {
	return func(o *startOptions) { o.timeout = d }
}

// WithSignal shares an existing signal with the run.
func WithSignal(sig *Signal) StartOption {
	return func(o *startOptions) { o.sig = sig }
}

// WithRunID overrides the generated run ID.
func WithRunID(id string) StartOption {
	return func(o *startOptions) { o.id = id }
}

// Start launches a run in the background and returns immediately.
func (p *Pipeline) Start(ctx context.Context, req any, opts ...StartOption) *Handle {
	o := startOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == "" {
		o.id = uuid.NewString()
	}

	r := p.newRun(ctx, o.id, o.sig)
	go p.await(ctx, r, req, o.timeout)
	return &Handle{r: r}
}

// ID returns the run ID.
func (h *Handle) ID() string { return h.r.id }

// Cancel sets the run's signal. The next stage will not start.
func (h *Handle) Cancel() { h.r.sig.Cancel() }

// State returns the current state without waiting.
func (h *Handle) State() State { return h.r.state.load() }

// Done is closed once the outcome is available.
func (h *Handle) Done() <-chan struct{} { return h.r.done }

// Wait blocks until the run settles or ctx is done.
func (h *Handle) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-h.r.done:
		return h.r.outcome, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// Outcome returns the outcome if the run has settled.
func (h *Handle) Outcome() (Outcome, bool) {
	select {
	case <-h.r.done:
		return h.r.outcome, true
	default:
		return Outcome{}, false
	}
}

func (h *Handle) settledAt() (time.Time, bool) {
	out, ok := h.Outcome()
	if !ok {
		return time.Time{}, false
	}
	return h.r.started.Add(out.Duration), true
}
