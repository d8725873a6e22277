package worker

import (
	"context"
	"sync"
)

// Job is a unit of work executed by the pool
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is what a Job produces
type Result interface {
	GetError() error
}

// Pool runs submitted jobs on a fixed number of goroutines.
//
// Every submitted job is executed, even after ctx is cancelled; jobs see the
// cancelled context and are expected to return quickly.
type Pool struct {
	workers   int
	jobs      chan Job
	collector *ResultCollector
	wg        sync.WaitGroup
	closeOnce sync.Once
	started   bool
}

// NewPool creates a pool with the given number of workers (minimum 1)
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}

	return &Pool{
		workers:   workers,
		jobs:      make(chan Job, workers*2),
		collector: NewResultCollector(),
	}
}

// Workers returns the concurrency limit
func (p *Pool) Workers() int {
	return p.workers
}

// Start launches the workers. Jobs run with ctx.
func (p *Pool) Start(ctx context.Context) {
	if p.started {
		return
	}
	p.started = true

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()

	for job := range p.jobs {
		p.collector.Add(job.Execute(ctx))
	}
}

// Submit queues a job, blocking while the queue is full.
// It must not be called after Wait.
func (p *Pool) Submit(job Job) {
	p.jobs <- job
}

// Wait closes the queue, waits for every queued job and returns all results
// in completion order.
func (p *Pool) Wait() []Result {
	p.closeOnce.Do(func() { close(p.jobs) })
	p.wg.Wait()
	return p.collector.Results()
}

// ResultCollector accumulates results from concurrent workers
type ResultCollector struct {
	results []Result
	mu      sync.Mutex
}

// NewResultCollector creates a new result collector
func NewResultCollector() *ResultCollector {
	return &ResultCollector{
		results: make([]Result, 0),
	}
}

// Add appends a result
func (c *ResultCollector) Add(result Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, result)
}

// Results returns a copy of the collected results
func (c *ResultCollector) Results() []Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	results := make([]Result, len(c.results))
	copy(results, c.results)
	return results
}

// Len returns the number of collected results
func (c *ResultCollector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}
