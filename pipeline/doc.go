// Package pipeline runs an ordered list of stages as one cancellable unit.
//
// Each stage receives the previous stage's result and the first receives
// the request. A run ends in exactly one terminal state: Completed, Failed,
// Cancelled or TimedOut.
//
//	p, err := pipeline.New("orders", []pipeline.Stage{
//	    pipeline.NewStage("user", users.GetUserData),
//	    pipeline.NewStage("items", items.GetItemsFromCart),
//	    pipeline.NewStage("order", orders.CreateOrder),
//	})
//
//	sig := pipeline.NewSignal()
//	out := p.RunWithTimeout(ctx, 1, sig, 2*time.Second)
//
// # Cancellation
//
// A Signal is cooperative. Cancel sets a flag that the run checks before
// every stage; a stage already running is not interrupted and its result
// is simply not passed on. Stages that want to stop early can look the
// signal up with SignalFromContext.
//
// A timeout is stricter. When the timer fires the run settles as TimedOut
// at once and the running stage's context is cancelled with ErrTimedOut.
// Whatever the stage returns afterwards is discarded.
//
// # Observability
//
// Every run opens a span and logs its terminal state. Stage-level logging,
// tracing and metrics are added with WithStageMiddleware:
//
//	p, _ := pipeline.New("orders", stages,
//	    pipeline.WithRunMetrics(metrics),
//	    pipeline.WithStageMiddleware(
//	        pipeline.WithLogging(log),
//	        pipeline.WithTracing("orders"),
//	        pipeline.WithMetrics(metrics),
//	    ),
//	)
package pipeline
