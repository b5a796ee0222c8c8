package pipeline

import (
	"context"
	"testing"
	"time"
)

// blockingStage waits until release is closed or the context is done.
func blockingStage(release <-chan struct{}) Stage {
	return NewStage("block", func(ctx context.Context, n int) (int, error) {
		select {
		case <-release:
			return n, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	})
}

func TestHandle_Lifecycle(t *testing.T) {
	release := make(chan struct{})
	p := mustNew(t, blockingStage(release), NewStage("double", double))

	h := p.Start(context.Background(), 5, WithRunID("run-1"))
	if h.ID() != "run-1" {
		t.Errorf("expected ID run-1, got %s", h.ID())
	}
	if h.State() != Pending {
		t.Errorf("expected pending, got %s", h.State())
	}
	if _, ok := h.Outcome(); ok {
		t.Error("outcome should not be available yet")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	if _, err := h.Wait(ctx); err == nil {
		t.Error("expected Wait to give up with its context")
	}
	cancel()

	close(release)
	out, err := h.Wait(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if out.State != Completed || out.Value != 10 || out.RunID != "run-1" {
		t.Errorf("unexpected outcome %+v", out)
	}
	select {
	case <-h.Done():
	default:
		t.Error("done should be closed")
	}
}

func TestHandle_StartWithTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	p := mustNew(t, blockingStage(release))

	h := p.Start(context.Background(), 1, WithTimeout(10*time.Millisecond))
	out, err := h.Wait(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if out.State != TimedOut {
		t.Errorf("expected timed out, got %s", out.State)
	}
}

func TestTracker_GetAndCancel(t *testing.T) {
	release := make(chan struct{})
	p := mustNew(t, blockingStage(release), NewStage("double", double))
	tr := NewTracker(time.Minute)

	h := p.Start(context.Background(), 1)
	tr.Track(h)

	got, ok := tr.Get(h.ID())
	if !ok || got != h {
		t.Fatal("expected tracked handle")
	}
	if tr.Cancel("missing") {
		t.Error("cancel of unknown run should report false")
	}
	if !tr.Cancel(h.ID()) {
		t.Error("expected cancel to find the run")
	}
	close(release)

	out, _ := h.Wait(context.Background())
	if out.State != Cancelled {
		t.Errorf("expected cancelled, got %s", out.State)
	}
	if _, ok := tr.Get(h.ID()); !ok {
		t.Error("settled run should remain visible during retention")
	}
}

func TestTracker_EvictsSettledRuns(t *testing.T) {
	p := mustNew(t, NewStage("double", double))
	tr := NewTracker(time.Minute)

	h := p.Start(context.Background(), 1)
	if _, err := h.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	tr.Track(h)
	if tr.Len() != 1 {
		t.Fatalf("expected 1 tracked run, got %d", tr.Len())
	}

	tr.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if tr.Len() != 0 {
		t.Errorf("expected settled run to be evicted, got %d", tr.Len())
	}
	if _, ok := tr.Get(h.ID()); ok {
		t.Error("evicted run should not be found")
	}
}

func TestTracker_KeepsPendingRuns(t *testing.T) {
	release := make(chan struct{})
	p := mustNew(t, blockingStage(release))
	tr := NewTracker(0)

	h := p.Start(context.Background(), 1)
	tr.Track(h)
	tr.now = func() time.Time { return time.Now().Add(time.Hour) }

	if _, ok := tr.Get(h.ID()); !ok {
		t.Error("pending runs are never evicted")
	}
	close(release)
	_, _ = h.Wait(context.Background())
}

func TestTracker_CancelAll(t *testing.T) {
	release := make(chan struct{})
	p := mustNew(t, blockingStage(release), NewStage("double", double))
	tr := NewTracker(time.Minute)

	settled := p.Start(context.Background(), 1, WithTimeout(time.Millisecond))
	if _, err := settled.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	live := p.Start(context.Background(), 2)
	tr.Track(settled)
	tr.Track(live)

	if n := tr.CancelAll(); n != 1 {
		t.Errorf("expected 1 live run signalled, got %d", n)
	}
	close(release)

	out, _ := live.Wait(context.Background())
	if out.State != Cancelled {
		t.Errorf("expected cancelled, got %s", out.State)
	}
}
