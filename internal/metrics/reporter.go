package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/harrison/foresight/internal/models"
)

// Logger is the subset of the application logger used here.
type Logger interface {
	LogDebug(message string)
	LogWarn(message string)
}

// Recorder persists summaries. *Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, sum *SessionSummary) error
}

// Reporter turns finished sessions into stored summaries. Its Report method
// matches session.ExitHook. Failures are logged and never surface to the
// caller, so reporting cannot change a turn's outcome.
type Reporter struct {
	recorder Recorder
	logger   Logger
	timeout  time.Duration
	now      func() time.Time
}

// NewReporter creates a reporter over recorder.
func NewReporter(recorder Recorder, logger Logger) *Reporter {
	return &Reporter{
		recorder: recorder,
		logger:   logger,
		timeout:  5 * time.Second,
		now:      time.Now,
	}
}

// Report records the summary of a session that left the active state.
func (r *Reporter) Report(s *models.Session) {
	if s == nil || s.Status == models.StatusActive {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	sum := NewSummary(s, r.now())
	if err := r.recorder.Record(ctx, sum); err != nil {
		if r.logger != nil {
			r.logger.LogWarn(fmt.Sprintf("metrics: failed to record session %s: %v", s.ID, err))
		}
		return
	}
	if r.logger != nil {
		r.logger.LogDebug(fmt.Sprintf("metrics: recorded session %s (%s, %d turns)", s.ID, s.Status, s.CurrentTurn))
	}
}
