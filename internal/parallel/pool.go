// Package parallel provides the bounded worker pool that fans out per-frame
// work in the animation pipeline.
//
// Per-frame transforms are independent of their siblings, so a batch of N
// frames is submitted as N work items and joined with a completion barrier
// before anything depending on the whole batch (bounding box union, commit)
// runs.
package parallel

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned when work is submitted to a closed pool.
var ErrClosed = errors.New("parallel: pool closed")

// WorkerPool is a fixed set of goroutines executing batches of work.
//
// Each worker has its own queue and steals from the others when its queue
// is empty, which balances load when some frames are slower than others
// (background matting time varies a lot with image content).
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers    int
	workQueues []chan func()
	done       chan struct{}
	wg         sync.WaitGroup
	running    atomic.Bool

	// submit is held shared while a batch is queued and exclusively by
	// Close, so a batch is either fully queued before shutdown or rejected.
	submit sync.RWMutex
}

// NewWorkerPool creates a new worker pool with the specified number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
// The pool starts immediately and workers begin waiting for work.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := workers * 4
	if queueSize < 8 {
		queueSize = 8
	}

	p := &WorkerPool{
		workers:    workers,
		workQueues: make([]chan func(), workers),
		done:       make(chan struct{}),
	}
	for i := range workers {
		p.workQueues[i] = make(chan func(), queueSize)
	}

	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}

	return p
}

// worker is the main loop for each worker goroutine.
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	myQueue := p.workQueues[id]

	for {
		select {
		case <-p.done:
			p.drainQueue(myQueue)
			return

		case work := <-myQueue:
			work()

		default:
			if stolen := p.steal(id); stolen != nil {
				stolen()
				continue
			}
			// No work available anywhere, block on own queue
			select {
			case <-p.done:
				p.drainQueue(myQueue)
				return
			case work := <-myQueue:
				work()
			}
		}
	}
}

// drainQueue executes all remaining work in a queue.
func (p *WorkerPool) drainQueue(queue chan func()) {
	for {
		select {
		case work := <-queue:
			work()
		default:
			return
		}
	}
}

// steal attempts to take work from another worker's queue.
// Returns nil if no work is available.
func (p *WorkerPool) steal(myID int) func() {
	for i := range p.workers {
		if i == myID {
			continue
		}
		select {
		case work := <-p.workQueues[i]:
			return work
		default:
		}
	}
	return nil
}

// ExecuteAll distributes work across workers and waits for all of it to
// complete. Returns ErrClosed without running anything if the pool is closed.
//
// ExecuteAll must not be called from inside a work item.
func (p *WorkerPool) ExecuteAll(work []func()) error {
	p.submit.RLock()
	if !p.running.Load() {
		p.submit.RUnlock()
		return ErrClosed
	}
	if len(work) == 0 {
		p.submit.RUnlock()
		return nil
	}

	var completionWG sync.WaitGroup
	completionWG.Add(len(work))
	for i, fn := range work {
		p.workQueues[i%p.workers] <- func() {
			defer completionWG.Done()
			fn()
		}
	}
	p.submit.RUnlock()

	// Items queued before Close are drained by their workers.
	completionWG.Wait()
	return nil
}

// Close gracefully shuts down the pool.
// It stops accepting new work, waits for all queued work to complete,
// and then stops all workers.
// Close is safe to call multiple times.
func (p *WorkerPool) Close() {
	p.submit.Lock()
	if !p.running.CompareAndSwap(true, false) {
		p.submit.Unlock()
		return
	}
	close(p.done)
	p.submit.Unlock()
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning returns true if the pool is still accepting work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}
