// Package report writes the result and failure files of a run.
package report

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/yangzhihuimee/difybatch/internal/batch"
)

const separatorWidth = 50

var answerFlattener = strings.NewReplacer("\n", "", "\r", "", " ", "")

// FlattenAnswer strips all newlines and spaces from an answer so each
// record stays a single line. Applying it twice is a no-op.
func FlattenAnswer(answer string) string {
	return answerFlattener.Replace(answer)
}

// ResultWriter appends one 3-line block per successful query to the
// result file. Each record is synced to disk immediately so a crash
// mid-run loses at most the record being written.
type ResultWriter struct {
	f   *os.File
	now func() time.Time
}

// NewResultWriter creates the result file and writes the run header.
func NewResultWriter(path string, total int) (*ResultWriter, error) {
	return newResultWriterAt(path, total, time.Now)
}

func newResultWriterAt(path string, total int, now func() time.Time) (*ResultWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create result file %s: %w", path, err)
	}

	header := fmt.Sprintf("run started: %s\ntotal queries: %d\n%s\n",
		now().Format("2006-01-02 15:04:05"),
		total,
		strings.Repeat("=", separatorWidth),
	)
	if _, err := f.WriteString(header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write result header: %w", err)
	}

	return &ResultWriter{f: f, now: now}, nil
}

// WriteResult implements batch.ResultSink.
func (w *ResultWriter) WriteResult(query, answer string) error {
	record := fmt.Sprintf("query: %s\nanswer: %s\n%s\n",
		query,
		FlattenAnswer(answer),
		strings.Repeat("-", separatorWidth),
	)
	if _, err := w.f.WriteString(record); err != nil {
		return fmt.Errorf("write result record: %w", err)
	}
	if err := w.f.Sync(); err != nil {
		return fmt.Errorf("sync result file: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (w *ResultWriter) Close() error {
	return w.f.Close()
}

// FailureWriter persists the failure ledger. The file is only created
// when WriteFailures is called, so clean runs leave no failures file.
type FailureWriter struct {
	path string
}

// NewFailureWriter creates a FailureWriter targeting path.
func NewFailureWriter(path string) *FailureWriter {
	return &FailureWriter{path: path}
}

// WriteFailures implements batch.FailureSink.
func (w *FailureWriter) WriteFailures(failures []batch.Failure) error {
	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("create failures file %s: %w", w.path, err)
	}
	defer func() { _ = f.Close() }()

	header := fmt.Sprintf("failed queries: %d\n%s\n", len(failures), strings.Repeat("=", separatorWidth))
	if _, err := f.WriteString(header); err != nil {
		return fmt.Errorf("write failures header: %w", err)
	}
	for _, failure := range failures {
		if _, err := f.WriteString(failure.Query + "\n"); err != nil {
			return fmt.Errorf("write failed query: %w", err)
		}
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync failures file: %w", err)
	}
	return nil
}
