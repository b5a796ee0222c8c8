package pipeline

import (
	"errors"
	"time"

	apperrors "github.com/kbukum/stagekit/errors"
)

var (
	// ErrCancelled is the Err of a cancelled run.
	ErrCancelled = errors.New("pipeline cancelled")
	// ErrTimedOut is the Err of a run that exceeded its timeout. It is also
	// the cancellation cause seen by the stage that was in flight.
	ErrTimedOut = errors.New("pipeline timed out")
)

// Stage report statuses.
const (
	StageRunning   = "running"
	StageCompleted = "completed"
	StageFailed    = "failed"
	// StageAbandoned marks a stage still in flight when the run settled.
	StageAbandoned = "abandoned"
)

// StageReport describes one stage that started.
type StageReport struct {
	Index    int           `json:"index"`
	Name     string        `json:"name"`
	Status   string        `json:"status"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`

	started time.Time
}

// Outcome is the single result of a run.
type Outcome struct {
	RunID    string `json:"run_id"`
	Pipeline string `json:"pipeline"`
	State    State  `json:"state"`
	// Value is the last stage's output. Set only when State is Completed.
	Value any   `json:"value,omitempty"`
	Err   error `json:"-"`
	// StagesRun counts the stages that started.
	StagesRun int           `json:"stages_run"`
	Duration  time.Duration `json:"duration"`
	Reports   []StageReport `json:"reports"`
}

// AppError maps the outcome onto the application error taxonomy.
// It returns nil for a completed run.
func (o Outcome) AppError() *apperrors.AppError {
	switch o.State {
	case Completed, Pending:
		return nil
	case Cancelled:
		return apperrors.Cancelled(o.Pipeline).WithCause(o.Err).WithDetail("run_id", o.RunID)
	case TimedOut:
		return apperrors.Timeout(o.Pipeline).WithCause(o.Err).WithDetail("run_id", o.RunID)
	}

	var se *StageError
	if errors.As(o.Err, &se) {
		// Errors the stage already classified (not found, invalid input)
		// keep their own code.
		if appErr, ok := apperrors.AsAppError(se.Cause); ok {
			return appErr
		}
		return apperrors.StageFailed(se.Stage, se.Cause).WithDetail("run_id", o.RunID)
	}
	return apperrors.Internal(o.Err)
}

// IsTimedOut reports whether err came from a timed-out run.
func IsTimedOut(err error) bool {
	if errors.Is(err, ErrTimedOut) {
		return true
	}
	appErr, ok := apperrors.AsAppError(err)
	return ok && appErr.Code == apperrors.ErrCodeTimeout
}

// IsCancelled reports whether err came from a cancelled run.
func IsCancelled(err error) bool {
	if errors.Is(err, ErrCancelled) {
		return true
	}
	appErr, ok := apperrors.AsAppError(err)
	return ok && appErr.Code == apperrors.ErrCodeCancelled
}
