package pipeline

import (
	"context"
	"time"

	"github.com/kbukum/stagekit/logger"
	"github.com/kbukum/stagekit/observability"
)

// Middleware wraps a stage with cross-cutting behavior.
type Middleware func(Stage) Stage

// Chain composes middlewares. The first one is the outermost.
func Chain(mws ...Middleware) Middleware {
	return func(st Stage) Stage {
		for i := len(mws) - 1; i >= 0; i-- {
			st = mws[i](st)
		}
		return st
	}
}

// WithTracing opens a span named "{prefix}.{stage}" around each stage.
func WithTracing(prefix string) Middleware {
	return func(st Stage) Stage {
		spanName := prefix + "." + st.Name
		inner := st.Run
		return Stage{
			Name: st.Name,
			Run: func(ctx context.Context, in any) (any, error) {
				ctx, span := observability.StartSpan(ctx, spanName)
				defer span.End()

				observability.SetSpanAttribute(ctx, observability.AttrStage, st.Name)

				out, err := inner(ctx, in)
				if err != nil && !abandoned(ctx) {
					observability.SetSpanError(ctx, err)
				}
				return out, err
			},
		}
	}
}

// WithMetrics records the count and duration of each stage execution.
func WithMetrics(m *observability.Metrics) Middleware {
	return func(st Stage) Stage {
		inner := st.Run
		return Stage{
			Name: st.Name,
			Run: func(ctx context.Context, in any) (any, error) {
				start := time.Now()
				out, err := inner(ctx, in)

				status := "ok"
				switch {
				case abandoned(ctx):
					status = StageAbandoned
				case err != nil:
					status = "error"
				}
				m.RecordStage(ctx, st.Name, status, time.Since(start))
				return out, err
			},
		}
	}
}

// WithLogging logs each stage's duration and error, tagged with the run ID.
// A stage cut short by a timeout or cancellation is logged at debug level.
func WithLogging(log *logger.Logger) Middleware {
	return func(st Stage) Stage {
		inner := st.Run
		return Stage{
			Name: st.Name,
			Run: func(ctx context.Context, in any) (any, error) {
				start := time.Now()
				out, err := inner(ctx, in)

				fields := logger.DurationFields(st.Name, time.Since(start))
				l := log.WithContext(ctx)
				switch {
				case abandoned(ctx):
					l.Debug("stage abandoned", logger.MergeWithError(fields, context.Cause(ctx)))
				case err != nil:
					l.Error("stage failed", logger.MergeWithError(fields, err))
				default:
					l.Debug("stage completed", fields)
				}
				return out, err
			},
		}
	}
}

// abandoned reports whether the run gave up on the stage before it returned.
func abandoned(ctx context.Context) bool {
	return ctx.Err() != nil
}
