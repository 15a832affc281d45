package remix

import (
	"context"
	"fmt"
	"time"

	"remixcanvas/internal/llm"
)

// ProgressFunc receives human-readable status lines during slow operations.
// A nil ProgressFunc is always safe to call through report.
type ProgressFunc func(message string)

func report(fn ProgressFunc, message string) {
	if fn != nil {
		fn(message)
	}
}

// pollMessages is the fixed rotation shown while a long operation has no real
// percentage to report. Cycled in order, not random, so the UI reads as
// continuous progress.
var pollMessages = []string{
	"Warming up the projector...",
	"Compositing frames...",
	"Color grading the scene...",
	"Rendering motion...",
	"Polishing the final cut...",
}

// DefaultPollInterval matches the service's operation refresh cadence.
const DefaultPollInterval = 10 * time.Second

// Poller drives a long-running operation to completion, emitting one rotating
// status line per non-terminal poll.
type Poller struct {
	Interval time.Duration // defaults to DefaultPollInterval
	Progress ProgressFunc
}

func (p *Poller) interval() time.Duration {
	if p == nil || p.Interval <= 0 {
		return DefaultPollInterval
	}
	return p.Interval
}

// Wait polls op until it reports done, the poll itself errors, or ctx is
// canceled. A done operation carrying an error message becomes a typed
// failure; otherwise the result payload is returned.
func (p *Poller) Wait(ctx context.Context, op llm.VideoOperation) (*llm.Blob, error) {
	if op == nil {
		return nil, fmt.Errorf("remix: nil operation")
	}
	var progress ProgressFunc
	if p != nil {
		progress = p.Progress
	}
	report(progress, "Starting generation...")

	ticker := time.NewTicker(p.interval())
	defer ticker.Stop()
	for i := 0; ; i++ {
		status, err := op.Poll(ctx)
		if err != nil {
			return nil, ClassifyModelError(err)
		}
		if status.Done {
			if status.Error != "" {
				return nil, ClassifyModelError(fmt.Errorf("remix: generation failed: %s", status.Error))
			}
			if status.Video == nil {
				return nil, &AssemblyError{TaskID: "video"}
			}
			report(progress, "Done.")
			return status.Video, nil
		}
		report(progress, pollMessages[i%len(pollMessages)])
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
