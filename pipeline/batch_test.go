package pipeline

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunBatch_PreservesOrder(t *testing.T) {
	p := mustNew(t, NewStage("double", func(_ context.Context, n int) (int, error) {
		time.Sleep(time.Duration(5-n) * time.Millisecond)
		return n * 2, nil
	}))

	reqs := []any{1, 2, 3, 4}
	outs := p.RunBatch(context.Background(), reqs, BatchOptions{Concurrency: 4})

	if len(outs) != len(reqs) {
		t.Fatalf("expected %d outcomes, got %d", len(reqs), len(outs))
	}
	for i, out := range outs {
		want := reqs[i].(int) * 2
		if out.State != Completed || out.Value != want {
			t.Errorf("outcome %d: expected %d, got %s %v", i, want, out.State, out.Value)
		}
	}
	if outs[0].RunID == outs[1].RunID {
		t.Error("each run needs its own ID")
	}
}

func TestRunBatch_LimitsConcurrency(t *testing.T) {
	var active, peak atomic.Int32
	p := mustNew(t, NewStage("work", func(_ context.Context, n int) (int, error) {
		cur := active.Add(1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		active.Add(-1)
		return n, nil
	}))

	reqs := make([]any, 8)
	for i := range reqs {
		reqs[i] = i
	}
	p.RunBatch(context.Background(), reqs, BatchOptions{Concurrency: 2})

	if peak.Load() > 2 {
		t.Errorf("expected at most 2 concurrent runs, saw %d", peak.Load())
	}
}

func TestRunBatch_CancelledContext(t *testing.T) {
	var ran atomic.Int32
	p := mustNew(t, NewStage("count", func(_ context.Context, n int) (int, error) {
		ran.Add(1)
		return n, nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	outs := p.RunBatch(ctx, []any{1, 2, 3}, BatchOptions{Concurrency: 1})

	for i, out := range outs {
		if out.State != Cancelled || out.StagesRun != 0 {
			t.Errorf("outcome %d: expected cancelled before any stage, got %s", i, out.State)
		}
	}
	if ran.Load() != 0 {
		t.Errorf("no stage should run, got %d", ran.Load())
	}
}

func TestRunBatch_PerRunTimeout(t *testing.T) {
	p := mustNew(t, sleepStage("slow", time.Second, nil))

	outs := p.RunBatch(context.Background(), []any{1, 2}, BatchOptions{Timeout: 10 * time.Millisecond})

	for i, out := range outs {
		if out.State != TimedOut {
			t.Errorf("outcome %d: expected timed out, got %s", i, out.State)
		}
	}
}

func TestRunBatch_Empty(t *testing.T) {
	p := mustNew(t, NewStage("double", double))
	if outs := p.RunBatch(context.Background(), nil, BatchOptions{}); len(outs) != 0 {
		t.Errorf("expected no outcomes, got %d", len(outs))
	}
}
