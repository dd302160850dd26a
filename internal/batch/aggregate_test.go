package batch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// memorySinks collect writes in memory for assertions.
type memoryResultSink struct {
	mu      sync.Mutex
	records map[string]string
	failOn  map[string]bool
}

func newMemoryResultSink() *memoryResultSink {
	return &memoryResultSink{
		records: make(map[string]string),
		failOn:  make(map[string]bool),
	}
}

func (s *memoryResultSink) WriteResult(query, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn[query] {
		return errors.New("disk full")
	}
	s.records[query] = answer
	return nil
}

type memoryFailureSink struct {
	failures []Failure
	writes   int
	err      error
}

func (s *memoryFailureSink) WriteFailures(failures []Failure) error {
	s.writes++
	if s.err != nil {
		return s.err
	}
	s.failures = failures
	return nil
}

func outcomeChan(outcomes ...Outcome) <-chan Outcome {
	ch := make(chan Outcome, len(outcomes))
	for _, o := range outcomes {
		ch <- o
	}
	close(ch)
	return ch
}

func TestConsumeSummaryCounts(t *testing.T) {
	results := newMemoryResultSink()
	failures := &memoryFailureSink{}
	agg := NewAggregator(results, failures)

	summary, err := agg.Consume(outcomeChan(
		Outcome{Query: "a", Answer: "ans-a", Success: true},
		Outcome{Query: "b", Answer: "", Success: false},
		Outcome{Query: "c", Answer: "ans-c", Success: true},
	))
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}

	if summary.Total != 3 || summary.Succeeded != 2 || summary.Failed != 1 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if results.records["a"] != "ans-a" || results.records["c"] != "ans-c" {
		t.Errorf("expected successful records persisted, got %v", results.records)
	}
	if len(failures.failures) != 1 || failures.failures[0].Query != "b" {
		t.Errorf("expected ledger entry for b, got %v", failures.failures)
	}
	// records + ledger entries account for every query
	if len(results.records)+len(failures.failures) != summary.Total {
		t.Error("records plus ledger entries do not sum to total")
	}
}

func TestConsumeWriteFailureReclassifies(t *testing.T) {
	results := newMemoryResultSink()
	results.failOn["a"] = true
	failures := &memoryFailureSink{}
	agg := NewAggregator(results, failures)

	summary, err := agg.Consume(outcomeChan(
		Outcome{Query: "a", Answer: "ans-a", Success: true},
		Outcome{Query: "b", Answer: "ans-b", Success: true},
	))
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}

	if summary.Succeeded != 1 || summary.Failed != 1 {
		t.Errorf("expected write failure to reclassify query, got %+v", summary)
	}
	if len(failures.failures) != 1 || failures.failures[0].Query != "a" {
		t.Errorf("expected ledger entry for a, got %v", failures.failures)
	}
}

func TestConsumeSuccessWithEmptyAnswerFails(t *testing.T) {
	results := newMemoryResultSink()
	failures := &memoryFailureSink{}
	agg := NewAggregator(results, failures)

	summary, err := agg.Consume(outcomeChan(
		Outcome{Query: "a", Answer: "", Success: true},
	))
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}

	if summary.Failed != 1 || summary.Succeeded != 0 {
		t.Errorf("expected empty answer to count as failed, got %+v", summary)
	}
}

func TestConsumeSkipsFailureSinkWhenClean(t *testing.T) {
	results := newMemoryResultSink()
	failures := &memoryFailureSink{}
	agg := NewAggregator(results, failures)

	_, err := agg.Consume(outcomeChan(
		Outcome{Query: "a", Answer: "ans", Success: true},
	))
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}

	if failures.writes != 0 {
		t.Errorf("expected failure sink untouched on a clean run, got %d writes", failures.writes)
	}
}

func TestConsumeReportsFailureSinkError(t *testing.T) {
	results := newMemoryResultSink()
	failures := &memoryFailureSink{err: errors.New("disk full")}
	agg := NewAggregator(results, failures)

	summary, err := agg.Consume(outcomeChan(
		Outcome{Query: "a", Answer: "", Success: false},
	))
	if err == nil {
		t.Fatal("expected error when failure ledger cannot be persisted")
	}
	// The summary is still complete even when the ledger write fails.
	if summary.Total != 1 || summary.Failed != 1 {
		t.Errorf("unexpected summary %+v", summary)
	}
}

// End-to-end: stub client through pool and aggregator.
func TestPipelineEndToEnd(t *testing.T) {
	client := newStubClient(func(query string, _ int) (string, error) {
		if query == "b" {
			return "", errors.New("remote down")
		}
		return "answer to " + query, nil
	})

	executor := NewExecutor(client, "dify-user",
		WithSleep(func(context.Context, time.Duration) {}),
	)
	pool := NewPool(executor, WithWorkers(2))

	results := newMemoryResultSink()
	failures := &memoryFailureSink{}
	agg := NewAggregator(results, failures)

	summary, err := agg.Consume(pool.Dispatch(context.Background(), []string{"a", "b", "c"}))
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	if summary.Total != 3 || summary.Succeeded != 2 || summary.Failed != 1 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if len(results.records) != 2 {
		t.Errorf("expected 2 records, got %v", results.records)
	}
	if len(failures.failures) != 1 || failures.failures[0].Query != "b" {
		t.Errorf("expected only b in the ledger, got %v", failures.failures)
	}
	if got := client.attempts("b"); got != 3 {
		t.Errorf("expected b to exhaust 3 attempts, got %d", got)
	}
}
