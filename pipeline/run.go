package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/sourcegraph/conc/panics"
	"go.opentelemetry.io/otel/trace"
)

// run is the mutable state of one execution. The state cell only leaves
// Pending once; mu serializes that transition with stage starts so no
// stage begins after the run has settled.
type run struct {
	p      *Pipeline
	id     string
	sig    *Signal
	parent context.Context
	ctx    context.Context
	cancel context.CancelCauseFunc
	span   trace.Span

	state   stateCell
	started time.Time

	mu      sync.Mutex
	reports []StageReport

	// outcome is written once by the settling call, before done is closed.
	outcome Outcome
	done    chan struct{}
}

func (r *run) execute(req any) {
	in := req
	for i, st := range r.p.stages {
		if !r.begin(i, st.Name) {
			return
		}

		var out any
		var err error
		if recovered := panics.Try(func() { out, err = st.Run(r.ctx, in) }); recovered != nil {
			err = fmt.Errorf("%w: %w", ErrStagePanic, recovered.AsError())
		}
		r.end(i, err)

		if r.state.load().IsTerminal() {
			// Settled while the stage was running; its result is discarded.
			return
		}
		if err != nil {
			if r.ctx.Err() != nil {
				state, cause := classify(r.ctx)
				r.settle(state, nil, cause)
				return
			}
			r.settle(Failed, nil, &StageError{Stage: st.Name, Index: i, Cause: err})
			return
		}
		in = out
	}
	r.settle(Completed, in, nil)
}

// begin records stage idx as started unless the run has settled or must
// stop here.
func (r *run) begin(idx int, name string) bool {
	r.mu.Lock()
	if r.state.load().IsTerminal() {
		r.mu.Unlock()
		return false
	}
	if state, err := r.interrupted(); state != Pending {
		won := r.settleLocked(state, nil, err)
		r.mu.Unlock()
		if won {
			r.finish(err)
		}
		return false
	}
	r.reports = append(r.reports, StageReport{
		Index:   idx,
		Name:    name,
		Status:  StageRunning,
		started: time.Now(),
	})
	r.mu.Unlock()
	return true
}

func (r *run) end(idx int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep := &r.reports[idx]
	rep.Duration = time.Since(rep.started)
	rep.Err = err
	if err != nil {
		rep.Status = StageFailed
	} else {
		rep.Status = StageCompleted
	}
}

// interrupted reports whether the signal or the parent context forbids
// starting another stage.
func (r *run) interrupted() (State, error) {
	if r.sig.Cancelled() {
		return Cancelled, ErrCancelled
	}
	if r.ctx.Err() != nil {
		return classify(r.ctx)
	}
	return Pending, nil
}

// classify maps a done context to a terminal state.
func classify(ctx context.Context) (State, error) {
	cause := context.Cause(ctx)
	if errors.Is(cause, ErrTimedOut) || errors.Is(cause, context.DeadlineExceeded) {
		return TimedOut, ErrTimedOut
	}
	return Cancelled, ErrCancelled
}

// settle moves the run to a terminal state. Only the first call wins.
func (r *run) settle(state State, value any, err error) bool {
	r.mu.Lock()
	won := r.settleLocked(state, value, err)
	r.mu.Unlock()
	if won {
		r.finish(err)
	}
	return won
}

func (r *run) settleLocked(state State, value any, err error) bool {
	if !r.state.settle(state) {
		return false
	}

	now := time.Now()
	reports := slices.Clone(r.reports)
	for i := range reports {
		if reports[i].Status == StageRunning {
			reports[i].Status = StageAbandoned
			reports[i].Duration = now.Sub(reports[i].started)
		}
	}

	r.outcome = Outcome{
		RunID:     r.id,
		Pipeline:  r.p.name,
		State:     state,
		Value:     value,
		Err:       err,
		StagesRun: len(reports),
		Duration:  now.Sub(r.started),
		Reports:   reports,
	}
	return true
}

// finish releases the stage context, records telemetry and publishes the
// outcome.
func (r *run) finish(cause error) {
	r.cancel(cause)
	r.p.finish(r)
	close(r.done)
}
