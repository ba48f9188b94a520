// Package cli implements the stackplan command-line interface.
//
// The commands read a project file (TOML or JSON), schedule it with the
// critical path method and print the result as tables. Schedules can be
// saved as snapshots to a file, Redis or MongoDB store and shown again
// later without the project file.
//
// # Commands
//
// The main commands are:
//   - schedule: Compute and print a project's schedule, optionally saving it
//   - critical: Print the critical path
//   - load: Print the daily load of the booked resources
//   - check: Validate a project and report redundant dependencies
//   - show: Print a stored snapshot
//   - store: Manage stored snapshots
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// surfaces the scheduler's per-operation debug records.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Scheduled 12 tasks (3ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
