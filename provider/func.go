package provider

import (
	"context"
	"time"
)

// Func adapts a plain function into a RequestResponse provider.
type Func[I, O any] struct {
	name    string
	fn      func(ctx context.Context, input I) (O, error)
	latency time.Duration
}

// FuncOption configures a Func provider.
type FuncOption func(*funcOptions)

type funcOptions struct {
	latency time.Duration
}

// WithLatency delays every call by d before fn runs. The delay honors
// context cancellation.
func WithLatency(d time.Duration) FuncOption {
	return func(o *funcOptions) { o.latency = d }
}

// NewFunc wraps fn as a named provider.
func NewFunc[I, O any](name string, fn func(ctx context.Context, input I) (O, error), opts ...FuncOption) *Func[I, O] {
	var o funcOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Func[I, O]{name: name, fn: fn, latency: o.latency}
}

func (f *Func[I, O]) Name() string                       { return f.name }
func (f *Func[I, O]) IsAvailable(_ context.Context) bool { return f.fn != nil }

// Execute waits out the configured latency, then calls fn.
func (f *Func[I, O]) Execute(ctx context.Context, input I) (O, error) {
	if f.latency > 0 {
		timer := time.NewTimer(f.latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			var zero O
			return zero, context.Cause(ctx)
		case <-timer.C:
		}
	}
	return f.fn(ctx, input)
}
