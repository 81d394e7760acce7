// Package worker provides a small bounded goroutine pool for
// fire-and-forget work that should not block a request, such as audit
// writes and removal of replaced photo objects.
package worker

import (
	"sync"

	"github.com/dyilmaz/community-backend/internal/metrics"
)

type task func()

type Pool struct {
	wg   sync.WaitGroup
	jobs chan task
}

func NewPool(n int) *Pool {
	p := &Pool{jobs: make(chan task, 1024)}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				job()
			}
		}()
	}
	return p
}

// Submit enqueues f. The gauge counts tasks from enqueue until they
// finish running, so it reads as outstanding background work.
func (p *Pool) Submit(f task) {
	metrics.WorkerQueueDepth.Inc()
	p.jobs <- func() {
		defer metrics.WorkerQueueDepth.Dec()
		f()
	}
}

func (p *Pool) Stop() { close(p.jobs); p.wg.Wait() }
