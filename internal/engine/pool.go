package engine

import (
	"runtime"
	"sync"
)

// Pool is a fixed-size worker pool executing batches of tasks with barrier
// semantics: a batch is complete only once every task has finished and
// every worker has handed its result back. Workers are spawned once and
// reused across batches.
type Pool struct {
	workers   int
	workC     chan job
	closeOnce sync.Once
}

type job struct {
	fn      func()
	barrier *sync.WaitGroup
}

// NewPool creates a pool with the given number of workers.
// workers <= 0 defaults to GOMAXPROCS.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		workers: workers,
		workC:   make(chan job, workers),
	}
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for j := range p.workC {
		j.fn()
		j.barrier.Done()
	}
}

// Workers returns the pool's worker count.
func (p *Pool) Workers() int { return p.workers }

// Run executes every task and blocks until all have completed. Tasks in one
// batch must touch disjoint output regions; the pool provides no locking.
func (p *Pool) Run(tasks []func()) {
	if len(tasks) == 0 {
		return
	}
	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for _, fn := range tasks {
		p.workC <- job{fn: fn, barrier: &wg}
	}
	wg.Wait()
}

// Close shuts the pool down after pending tasks complete.
// Calling Close more than once is safe.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.workC)
	})
}
