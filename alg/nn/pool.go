package nn

import (
	"runtime/debug"
	"sync"

	"github.com/pkg/errors"
)

var ErrPoolClosed = errors.New("nn: worker pool closed")

// Pool is a fixed set of workers reading tasks from a bounded channel.
type Pool struct {
	mu     sync.RWMutex
	closed bool
	jobs   chan func()
	wg     sync.WaitGroup
}

func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{jobs: make(chan func(), workers)}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				job()
			}
		}()
	}
	return p
}

// Run executes every task on the pool and waits for all of them. It
// returns the first error in task order; a panicking task is reported as
// an error.
func (p *Pool) Run(tasks []func() error) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrPoolClosed
	}
	errs := make([]error, len(tasks))
	var done sync.WaitGroup
	done.Add(len(tasks))
	for i, task := range tasks {
		i, task := i, task
		p.jobs <- func() {
			defer done.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = errors.Errorf("nn: task %d panicked: %v\n%s", i, r, debug.Stack())
				}
			}()
			errs[i] = task()
		}
	}
	p.mu.RUnlock()
	done.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Close stops the workers. Subsequent Run calls return ErrPoolClosed.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
