package batch

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yangzhihuimee/difybatch/internal/logging"
)

// DefaultMaxRetries is the default number of attempts per query.
const DefaultMaxRetries = 3

// Executor runs a single query against the client with bounded retry and
// exponential backoff. An Executor holds no per-query state; every
// Execute call starts fresh at attempt zero.
type Executor struct {
	client      ChatClient
	user        string
	maxRetries  int
	backoffUnit time.Duration
	sleep       func(context.Context, time.Duration)
	logger      zerolog.Logger
}

// ExecutorOption customizes an Executor.
type ExecutorOption func(*Executor)

// WithMaxRetries sets the attempt limit (default: 3).
func WithMaxRetries(n int) ExecutorOption {
	return func(e *Executor) {
		if n > 0 {
			e.maxRetries = n
		}
	}
}

// WithBackoffUnit sets the base backoff delay; attempt i waits
// unit * 2^i before attempt i+1 (default: 1s).
func WithBackoffUnit(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		if d > 0 {
			e.backoffUnit = d
		}
	}
}

// WithSleep replaces the backoff sleep, letting tests record delays
// instead of waiting them out.
func WithSleep(fn func(context.Context, time.Duration)) ExecutorOption {
	return func(e *Executor) {
		if fn != nil {
			e.sleep = fn
		}
	}
}

// NewExecutor creates an Executor bound to a shared client and user id.
func NewExecutor(client ChatClient, user string, opts ...ExecutorOption) *Executor {
	e := &Executor{
		client:      client,
		user:        user,
		maxRetries:  DefaultMaxRetries,
		backoffUnit: time.Second,
		sleep:       sleepContext,
		logger:      logging.Component("executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute processes one query to a definitive Outcome. A non-empty answer
// ends the loop immediately; transport errors, non-2xx responses and
// empty answers all count as failed attempts. Between attempts the worker
// sleeps unit * 2^attempt — uncapped and without jitter, so the delay
// progression stays predictable.
func (e *Executor) Execute(ctx context.Context, query string) Outcome {
	for attempt := 0; attempt < e.maxRetries; attempt++ {
		answer, err := e.client.Chat(ctx, query, e.user)

		switch {
		case err != nil:
			e.logger.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("query", truncate(query, 80)).
				Msg("attempt failed")
		case strings.TrimSpace(answer) == "":
			e.logger.Warn().
				Int("attempt", attempt+1).
				Str("query", truncate(query, 80)).
				Msg("attempt returned empty answer")
		default:
			return Outcome{Query: query, Answer: answer, Success: true}
		}

		if attempt < e.maxRetries-1 {
			delay := e.backoffUnit << attempt
			e.logger.Debug().
				Dur("backoff", delay).
				Int("attempt", attempt+1).
				Msg("backing off before retry")
			e.sleep(ctx, delay)

			if ctx.Err() != nil {
				break
			}
		}
	}

	e.logger.Error().
		Int("max_retries", e.maxRetries).
		Str("query", truncate(query, 80)).
		Msg("all attempts failed")

	return Outcome{Query: query, Answer: "", Success: false}
}

// sleepContext sleeps for d, returning early if the context ends.
func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
