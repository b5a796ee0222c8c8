package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/kbukum/stagekit/provider"
)

var (
	// ErrInputType is returned by a typed stage that receives a value of
	// the wrong type from the stage before it.
	ErrInputType = errors.New("unexpected stage input type")
	// ErrStagePanic wraps a panic recovered from a stage.
	ErrStagePanic = errors.New("stage panicked")
)

// StageFunc transforms the previous stage's result into the next one.
type StageFunc func(ctx context.Context, in any) (any, error)

// Stage is one named step of a pipeline.
type Stage struct {
	Name string
	Run  StageFunc
}

// NewStage builds a stage from a typed function.
func NewStage[I, O any](name string, fn func(ctx context.Context, in I) (O, error)) Stage {
	return Stage{
		Name: name,
		Run: func(ctx context.Context, in any) (any, error) {
			typed, ok := in.(I)
			if !ok {
				var want I
				return nil, fmt.Errorf("%w: want %T, got %T", ErrInputType, want, in)
			}
			return fn(ctx, typed)
		},
	}
}

// FromProvider bridges a provider.RequestResponse into a stage named after
// the provider.
func FromProvider[I, O any](p provider.RequestResponse[I, O]) Stage {
	return NewStage(p.Name(), p.Execute)
}

// StageError reports which stage failed a run.
type StageError struct {
	Stage string
	Index int
	Cause error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %d (%s): %v", e.Index, e.Stage, e.Cause)
}

func (e *StageError) Unwrap() error { return e.Cause }
