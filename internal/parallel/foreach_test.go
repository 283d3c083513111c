package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestForEach(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	for _, p := range []*WorkerPool{pool, nil} {
		out := make([]int, 20)
		err := ForEach(context.Background(), p, len(out), func(_ context.Context, i int) error {
			out[i] = i + 1
			return nil
		})
		if err != nil {
			t.Fatalf("ForEach: %v", err)
		}
		for i, v := range out {
			if v != i+1 {
				t.Fatalf("out[%d] = %d", i, v)
			}
		}
	}
}

func TestForEach_FailFast(t *testing.T) {
	errBoom := errors.New("boom")

	// Sequential execution makes the skip count deterministic.
	var calls atomic.Int32
	err := ForEach(context.Background(), nil, 10, func(ctx context.Context, i int) error {
		calls.Add(1)
		if i == 3 {
			return errBoom
		}
		return nil
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("ForEach error = %v, want boom", err)
	}
	if calls.Load() != 4 {
		t.Errorf("calls = %d, want 4 (items after the failure skipped)", calls.Load())
	}
}

func TestForEach_CancelsSiblings(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	errBoom := errors.New("boom")
	var cancelled atomic.Int32
	err := ForEach(context.Background(), pool, 2, func(ctx context.Context, i int) error {
		if i == 0 {
			return errBoom
		}
		<-ctx.Done()
		cancelled.Add(1)
		return ctx.Err()
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("ForEach error = %v, want boom", err)
	}
	if cancelled.Load() > 1 {
		t.Errorf("cancelled = %d", cancelled.Load())
	}
}

func TestForEach_ParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	err := ForEach(ctx, nil, 5, func(context.Context, int) error {
		calls.Add(1)
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ForEach error = %v, want context.Canceled", err)
	}
	if calls.Load() != 0 {
		t.Errorf("calls = %d, want 0", calls.Load())
	}
}
