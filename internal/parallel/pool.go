// Package parallel provides the work-stealing goroutine pool used by the
// data-parallel engine.
package parallel

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned when work is submitted to a closed pool.
var ErrClosed = errors.New("parallel: pool closed")

// Pool runs batches of tasks on a fixed set of goroutines. Each worker
// has its own queue and steals from the others when it runs dry, which
// balances batches whose tasks take uneven time.
//
// Pool is safe for concurrent use.
type Pool struct {
	workers int
	queues  []chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool

	// submit is held for reading while a batch is queued and for writing
	// while Close stops the pool, so no task lands in a queue whose worker
	// has already exited.
	submit sync.RWMutex
}

// NewPool starts a pool of n workers. If n is 0 or negative, GOMAXPROCS
// is used.
func NewPool(n int) *Pool {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	queueSize := max(n*4, 8)

	p := &Pool{
		workers: n,
		queues:  make([]chan func(), n),
		done:    make(chan struct{}),
	}
	for i := range p.queues {
		p.queues[i] = make(chan func(), queueSize)
	}
	p.running.Store(true)

	p.wg.Add(n)
	for i := range n {
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	own := p.queues[id]

	for {
		select {
		case <-p.done:
			drain(own)
			return
		case task := <-own:
			task()
			continue
		default:
		}

		if task := p.steal(id); task != nil {
			task()
			continue
		}

		select {
		case <-p.done:
			drain(own)
			return
		case task := <-own:
			task()
		}
	}
}

func drain(q chan func()) {
	for {
		select {
		case task := <-q:
			task()
		default:
			return
		}
	}
}

// steal takes one task from another worker's queue, or returns nil.
func (p *Pool) steal(id int) func() {
	for i := 1; i < p.workers; i++ {
		select {
		case task := <-p.queues[(id+i)%p.workers]:
			return task
		default:
		}
	}
	return nil
}

// ExecuteAll runs every task and waits for all of them. Tasks are dealt
// round-robin to the worker queues.
func (p *Pool) ExecuteAll(tasks []func()) error {
	p.submit.RLock()
	if !p.running.Load() {
		p.submit.RUnlock()
		return ErrClosed
	}
	if len(tasks) == 0 {
		p.submit.RUnlock()
		return nil
	}

	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for i, task := range tasks {
		p.queues[i%p.workers] <- func() {
			defer wg.Done()
			task()
		}
	}
	p.submit.RUnlock()

	wg.Wait()
	return nil
}

// Close stops the workers after the queued tasks ran. A batch being
// submitted concurrently either completes or gets ErrClosed. Calling Close
// again returns ErrClosed.
func (p *Pool) Close() error {
	p.submit.Lock()
	if !p.running.CompareAndSwap(true, false) {
		p.submit.Unlock()
		return ErrClosed
	}
	close(p.done)
	p.submit.Unlock()
	p.wg.Wait()
	return nil
}

// Workers returns the number of workers.
func (p *Pool) Workers() int {
	return p.workers
}

// Running reports whether the pool accepts work.
func (p *Pool) Running() bool {
	return p.running.Load()
}
