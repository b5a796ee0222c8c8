package provider

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"
)

func TestFunc_Execute(t *testing.T) {
	p := NewFunc("double", func(_ context.Context, n int) (int, error) {
		return n * 2, nil
	})

	if p.Name() != "double" {
		t.Errorf("expected name 'double', got %q", p.Name())
	}
	if !p.IsAvailable(context.Background()) {
		t.Error("expected provider to be available")
	}
	got, err := p.Execute(context.Background(), 21)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
}

func TestFunc_NilFuncUnavailable(t *testing.T) {
	p := NewFunc[int, int]("empty", nil)
	if p.IsAvailable(context.Background()) {
		t.Error("expected provider without func to be unavailable")
	}
}

func TestFunc_Latency(t *testing.T) {
	p := NewFunc("slow", func(_ context.Context, s string) (string, error) {
		return s, nil
	}, WithLatency(20*time.Millisecond))

	start := time.Now()
	if _, err := p.Execute(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("expected at least 20ms latency, got %v", elapsed)
	}
}

func TestFunc_LatencyHonorsCancellation(t *testing.T) {
	called := false
	p := NewFunc("slow", func(_ context.Context, s string) (string, error) {
		called = true
		return s, nil
	}, WithLatency(time.Second))

	cause := errors.New("gave up")
	ctx, cancel := context.WithCancelCause(context.Background())
	cancel(cause)

	_, err := p.Execute(ctx, "x")
	if !errors.Is(err, cause) {
		t.Errorf("expected cancel cause, got %v", err)
	}
	if called {
		t.Error("fn should not run after cancellation")
	}
}

type pair struct {
	ID    string
	Value int
}

func TestAdapt(t *testing.T) {
	backend := NewFunc("parse", func(_ context.Context, s string) (int, error) {
		return strconv.Atoi(s)
	})
	adapted := Adapt(backend, "pair",
		func(_ context.Context, p pair) (string, error) { return p.ID, nil },
		func(in pair, n int) (pair, error) { return pair{ID: in.ID, Value: n}, nil },
	)

	if adapted.Name() != "pair" {
		t.Errorf("expected name 'pair', got %q", adapted.Name())
	}
	if !adapted.IsAvailable(context.Background()) {
		t.Error("expected adapted provider to be available")
	}

	got, err := adapted.Execute(context.Background(), pair{ID: "17"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "17" || got.Value != 17 {
		t.Errorf("unexpected result %+v", got)
	}
}

func TestAdapt_Errors(t *testing.T) {
	backendErr := errors.New("backend down")
	mapErr := errors.New("bad input")

	failing := NewFunc("fail", func(_ context.Context, _ string) (int, error) {
		return 0, backendErr
	})

	t.Run("backend error", func(t *testing.T) {
		a := Adapt(failing, "a",
			func(_ context.Context, p pair) (string, error) { return p.ID, nil },
			func(in pair, n int) (pair, error) { return in, nil },
		)
		if _, err := a.Execute(context.Background(), pair{}); !errors.Is(err, backendErr) {
			t.Errorf("expected backend error, got %v", err)
		}
	})

	t.Run("mapIn error", func(t *testing.T) {
		a := Adapt(failing, "a",
			func(_ context.Context, p pair) (string, error) { return "", mapErr },
			func(in pair, n int) (pair, error) { return in, nil },
		)
		if _, err := a.Execute(context.Background(), pair{}); !errors.Is(err, mapErr) {
			t.Errorf("expected map error, got %v", err)
		}
	})
}
