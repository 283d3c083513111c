package parallel

import (
	"context"
	"sync"
)

// ForEach calls fn for every index in [0, n) on the pool and waits for all
// calls to return. The first error cancels the context passed to the other
// calls; items not yet started are skipped. ForEach returns that first error,
// or the parent context's error if it was cancelled.
//
// A nil pool runs the items sequentially on the calling goroutine.
func ForEach(ctx context.Context, p *WorkerPool, n int, fn func(ctx context.Context, i int) error) error {
	if n <= 0 {
		return ctx.Err()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	run := func(i int) {
		if ctx.Err() != nil {
			return
		}
		if err := fn(ctx, i); err != nil {
			fail(err)
		}
	}

	if p == nil {
		for i := range n {
			run(i)
		}
	} else {
		work := make([]func(), n)
		for i := range work {
			work[i] = func() { run(i) }
		}
		if err := p.ExecuteAll(work); err != nil {
			return err
		}
	}

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
