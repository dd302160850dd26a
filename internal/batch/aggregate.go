package batch

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/yangzhihuimee/difybatch/internal/logging"
)

// ResultSink receives one record per successful query.
type ResultSink interface {
	WriteResult(query, answer string) error
}

// FailureSink persists the failure ledger at the end of a run.
type FailureSink interface {
	WriteFailures(failures []Failure) error
}

// Aggregator drains the outcome stream on a single goroutine, persisting
// successes as they arrive and collecting failures. It is the only writer
// of both sinks, so no locking is involved.
type Aggregator struct {
	results  ResultSink
	failures FailureSink
	logger   zerolog.Logger
}

// NewAggregator creates an Aggregator over the two sinks.
func NewAggregator(results ResultSink, failures FailureSink) *Aggregator {
	return &Aggregator{
		results:  results,
		failures: failures,
		logger:   logging.Component("aggregate"),
	}
}

// Consume drains outcomes until the channel closes, then persists the
// failure ledger (only when non-empty) and returns the run summary. A
// failed result write reclassifies the query as failed; per-query
// failures never abort the drain.
func (a *Aggregator) Consume(outcomes <-chan Outcome) (Summary, error) {
	var summary Summary
	var ledger []Failure

	for outcome := range outcomes {
		summary.Total++

		if !outcome.Success || outcome.Answer == "" {
			ledger = append(ledger, Failure{
				Query:  outcome.Query,
				Reason: "all retry attempts failed",
			})
			continue
		}

		if err := a.results.WriteResult(outcome.Query, outcome.Answer); err != nil {
			a.logger.Error().
				Err(err).
				Str("query", truncate(outcome.Query, 80)).
				Msg("failed to persist result")
			ledger = append(ledger, Failure{
				Query:  outcome.Query,
				Reason: fmt.Sprintf("failed to write result: %v", err),
			})
			continue
		}

		summary.Succeeded++
	}

	summary.Failed = len(ledger)

	if len(ledger) > 0 {
		a.logger.Warn().Int("failed", len(ledger)).Msg("run finished with failures")
		if err := a.failures.WriteFailures(ledger); err != nil {
			return summary, fmt.Errorf("persist failure ledger: %w", err)
		}
	}

	return summary, nil
}
