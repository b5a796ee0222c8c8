package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/kbukum/stagekit/errors"
	"github.com/kbukum/stagekit/logger"
	"github.com/kbukum/stagekit/observability"
)

// Pipeline is an ordered list of stages. Each stage receives the previous
// stage's result; the first receives the request. A Pipeline is immutable
// and safe for concurrent runs.
type Pipeline struct {
	name    string
	stages  []Stage
	log     *logger.Logger
	metrics *observability.Metrics
}

// Option configures a Pipeline.
type Option func(*options)

type options struct {
	log        *logger.Logger
	metrics    *observability.Metrics
	middleware []Middleware
}

// WithRunLogger sets the logger used for run outcomes.
func WithRunLogger(log *logger.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithRunMetrics records run counts and durations.
func WithRunMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithStageMiddleware wraps every stage. The first middleware is outermost.
func WithStageMiddleware(mws ...Middleware) Option {
	return func(o *options) { o.middleware = append(o.middleware, mws...) }
}

// New creates a pipeline from at least one stage.
func New(name string, stages []Stage, opts ...Option) (*Pipeline, error) {
	if len(stages) == 0 {
		return nil, apperrors.InvalidInput("stages", "a pipeline needs at least one stage")
	}
	for i, st := range stages {
		if st.Run == nil {
			return nil, apperrors.InvalidInput("stages", "stage "+st.Name+" has no function").
				WithDetail("index", i)
		}
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Get("pipeline")
	}

	wrap := Chain(o.middleware...)
	wrapped := make([]Stage, len(stages))
	for i, st := range stages {
		wrapped[i] = wrap(st)
	}

	return &Pipeline{
		name:    name,
		stages:  wrapped,
		log:     o.log.WithFields(map[string]interface{}{logger.FieldPipeline: name}),
		metrics: o.metrics,
	}, nil
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string { return p.name }

// Len returns the number of stages.
func (p *Pipeline) Len() int { return len(p.stages) }

// Run executes the stages in order on the calling goroutine. The signal is
// checked before every stage, including the first; once it is set no
// further stage starts and the outcome is Cancelled.
func (p *Pipeline) Run(ctx context.Context, req any, sig *Signal) Outcome {
	r := p.newRun(ctx, uuid.NewString(), sig)
	r.execute(req)
	return r.outcome
}

// RunWithTimeout races Run against a timer started with the first stage.
// If the timer wins the outcome is TimedOut, the in-flight stage's context
// is cancelled with ErrTimedOut and its eventual result is discarded.
// A non-positive timeout behaves like Run.
func (p *Pipeline) RunWithTimeout(ctx context.Context, req any, sig *Signal, timeout time.Duration) Outcome {
	r := p.newRun(ctx, uuid.NewString(), sig)
	return p.await(ctx, r, req, timeout)
}

func (p *Pipeline) await(ctx context.Context, r *run, req any, timeout time.Duration) Outcome {
	if timeout <= 0 {
		r.execute(req)
		return r.outcome
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	go r.execute(req)

	select {
	case <-r.done:
	case <-timer.C:
		r.settle(TimedOut, nil, ErrTimedOut)
	case <-ctx.Done():
		state, err := classify(ctx)
		r.settle(state, nil, err)
	}
	<-r.done
	return r.outcome
}

func (p *Pipeline) newRun(ctx context.Context, id string, sig *Signal) *run {
	if sig == nil {
		sig = NewSignal()
	}

	spanCtx, span := observability.StartSpan(ctx, "pipeline."+p.name)
	observability.SetSpanAttribute(spanCtx, observability.AttrPipeline, p.name)
	observability.SetSpanAttribute(spanCtx, observability.AttrRunID, id)

	runCtx, cancel := context.WithCancelCause(contextWithSignal(logger.ContextWithRunID(spanCtx, id), sig))

	if p.metrics != nil {
		p.metrics.RecordRunStart(ctx, p.name)
	}

	return &run{
		p:       p,
		id:      id,
		sig:     sig,
		parent:  ctx,
		ctx:     runCtx,
		cancel:  cancel,
		span:    span,
		started: time.Now(),
		done:    make(chan struct{}),
	}
}

// finish records the settled outcome.
func (p *Pipeline) finish(r *run) {
	out := r.outcome
	log := p.log.WithFields(map[string]interface{}{
		logger.FieldRunID:    out.RunID,
		logger.FieldOutcome:  out.State.String(),
		"stages_run":         out.StagesRun,
		logger.FieldDuration: out.Duration.Milliseconds(),
	})

	switch out.State {
	case Completed:
		log.Info("pipeline run completed")
	case Cancelled:
		log.Warn("pipeline run cancelled")
	case TimedOut:
		log.Warn("pipeline run timed out")
	case Failed:
		log.WithError(out.Err).Error("pipeline run failed")
	}

	if p.metrics != nil {
		p.metrics.RecordRunEnd(r.parent, p.name, out.State.String(), out.Duration)
	}

	spanCtx := r.ctx
	observability.SetSpanAttribute(spanCtx, observability.AttrRunState, out.State.String())
	observability.SetSpanAttribute(spanCtx, observability.AttrStagesRun, out.StagesRun)
	if out.State == Failed {
		observability.SetSpanError(spanCtx, out.Err)
	}
	r.span.End()
}
