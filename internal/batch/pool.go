package batch

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/yangzhihuimee/difybatch/internal/logging"
)

// DefaultWorkers is the default worker-pool size.
const DefaultWorkers = 10

// Pool fans queries out to a fixed set of workers, each running the
// Executor, and streams outcomes back in completion order.
type Pool struct {
	executor *Executor
	workers  int
	observer Observer
	logger   zerolog.Logger
}

// PoolOption customizes a Pool.
type PoolOption func(*Pool)

// WithWorkers sets the worker count (default: 10).
func WithWorkers(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithObserver sets the progress observer.
func WithObserver(o Observer) PoolOption {
	return func(p *Pool) {
		if o != nil {
			p.observer = o
		}
	}
}

// NewPool creates a Pool around a shared Executor.
func NewPool(executor *Executor, opts ...PoolOption) *Pool {
	p := &Pool{
		executor: executor,
		workers:  DefaultWorkers,
		observer: NopObserver{},
		logger:   logging.Component("pool"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Dispatch submits every query to the worker pool and returns a channel
// that yields exactly one Outcome per query, in the order queries finish.
// The channel is closed once all outcomes have been delivered. A panic
// inside a worker task is converted into a failed Outcome for that query
// so sibling tasks keep running.
func (p *Pool) Dispatch(ctx context.Context, queries []string) <-chan Outcome {
	jobs := make(chan string)
	results := make(chan Outcome)
	out := make(chan Outcome)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for query := range jobs {
				results <- p.runTask(ctx, query)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, query := range queries {
			jobs <- query
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	total := len(queries)
	go func() {
		defer close(out)
		completed := 0
		for outcome := range results {
			completed++
			p.notify(Progress{Completed: completed, Total: total, Outcome: outcome})
			out <- outcome
		}
	}()

	return out
}

// runTask executes one query, turning a panicking task into a failed
// Outcome rather than letting it take down the pool.
func (p *Pool) runTask(ctx context.Context, query string) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().
				Str("query", truncate(query, 80)).
				Str("panic", fmt.Sprint(r)).
				Msg("worker task panicked")
			outcome = Outcome{Query: query, Answer: "", Success: false}
		}
	}()
	return p.executor.Execute(ctx, query)
}

// notify delivers a progress update; observers are advisory, so a panic
// in one is swallowed.
func (p *Pool) notify(progress Progress) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn().Str("panic", fmt.Sprint(r)).Msg("progress observer panicked")
		}
	}()
	p.observer.Completed(progress)
}
