package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
)

// Signal is a cancellation flag shared between a caller and a run.
// Any number of goroutines may read it; Cancel may be called any number
// of times. Stages are never interrupted by it: the run checks the flag
// before each stage starts.
type Signal struct {
	flag atomic.Bool
	once sync.Once
	done chan struct{}
}

// NewSignal returns an unset signal.
func NewSignal() *Signal {
	return &Signal{done: make(chan struct{})}
}

// Cancel sets the flag. Calls after the first have no effect.
func (s *Signal) Cancel() {
	s.once.Do(func() {
		s.flag.Store(true)
		close(s.done)
	})
}

// Cancelled reports whether Cancel has been called.
func (s *Signal) Cancelled() bool {
	return s.flag.Load()
}

// Done returns a channel that is closed by the first Cancel.
func (s *Signal) Done() <-chan struct{} {
	return s.done
}

type signalKey struct{}

func contextWithSignal(ctx context.Context, s *Signal) context.Context {
	return context.WithValue(ctx, signalKey{}, s)
}

// SignalFromContext returns the signal of the run executing the stage,
// so long-running stages can stop early if they choose to.
func SignalFromContext(ctx context.Context) (*Signal, bool) {
	s, ok := ctx.Value(signalKey{}).(*Signal)
	return s, ok
}
