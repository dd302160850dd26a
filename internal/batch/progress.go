package batch

import (
	"github.com/rs/zerolog"

	"github.com/yangzhihuimee/difybatch/internal/logging"
)

// Progress describes one completed query within a run.
type Progress struct {
	Completed int // outcomes delivered so far, including this one
	Total     int
	Outcome   Outcome
}

// Observer receives advisory progress updates as outcomes arrive. Calls
// happen on the pool's collector goroutine; implementations should return
// quickly, and a panicking observer is contained without disturbing the
// pipeline.
type Observer interface {
	Completed(p Progress)
}

// LogObserver reports progress through zerolog.
type LogObserver struct {
	logger zerolog.Logger
}

// NewLogObserver creates an Observer logging one line per outcome.
func NewLogObserver() *LogObserver {
	return &LogObserver{logger: logging.Component("progress")}
}

// Completed implements Observer.
func (o *LogObserver) Completed(p Progress) {
	status := "ok"
	if !p.Outcome.Success {
		status = "failed"
	}
	o.logger.Info().
		Int("completed", p.Completed).
		Int("total", p.Total).
		Str("status", status).
		Str("query", truncate(p.Outcome.Query, 20)).
		Msg("query processed")
}

// NopObserver ignores all updates.
type NopObserver struct{}

// Completed implements Observer.
func (NopObserver) Completed(Progress) {}
