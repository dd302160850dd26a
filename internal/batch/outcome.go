// Package batch implements the concurrent query pipeline: per-query
// retry, a fixed-size worker pool streaming outcomes in completion order,
// and the single-threaded aggregator that persists them.
package batch

import "context"

// ChatClient is the remote call the pipeline depends on. One instance is
// shared across all workers, so implementations must be safe for
// concurrent use.
type ChatClient interface {
	Chat(ctx context.Context, query, user string) (string, error)
}

// Outcome is the final result of processing one query. Exactly one
// Outcome is produced per input query.
type Outcome struct {
	Query   string
	Answer  string
	Success bool
}

// Failure records a query that produced no usable answer, with a
// human-readable reason.
type Failure struct {
	Query  string
	Reason string
}

// Summary holds the final counts of a run.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
}
