package pool

import (
	"context"
	"sync"
)

// Pool runs fire-and-forget jobs on background goroutines with a bound
// on how many execute at once. Submit never blocks the caller, and a
// submitted job always runs to completion: jobs receive a fresh
// background context instead of the caller's, so a finished request or
// a shutdown signal does not cancel work already launched.
type Pool struct {
	sem chan struct{}
	wg  sync.WaitGroup
}

// New creates a Pool executing at most maxWorkers jobs concurrently.
func New(maxWorkers int) *Pool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	return &Pool{sem: make(chan struct{}, maxWorkers)}
}

// Submit schedules job and returns immediately.
func (p *Pool) Submit(job func(ctx context.Context)) {
	p.wg.Add(1)

	go func() {
		defer p.wg.Done()

		p.sem <- struct{}{}
		defer func() { <-p.sem }()

		job(context.Background())
	}()
}

// Wait blocks until every submitted job has finished. Called on
// shutdown so in-flight tasks reach a terminal state.
func (p *Pool) Wait() {
	p.wg.Wait()
}
