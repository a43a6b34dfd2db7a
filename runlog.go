package docpub

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// LogFileName is the run log appended in the target directory after every
// job, successful or not, so CI runs leave an audit trail next to the
// artifacts they produced.
const LogFileName = "markdown-conversion.log"

// logTimeFormat matches the timestamp layout of the published run logs.
const logTimeFormat = "2006-01-02 15:04:05"

// RunLog collects timestamped log lines for one job and optionally mirrors
// them to a writer as they are emitted. Not safe for concurrent use; the
// pipeline is strictly sequential.
type RunLog struct {
	now   func() time.Time
	sink  io.Writer
	debug bool
	lines []string
}

// NewRunLog creates a RunLog. sink may be nil; debug enables Debugf output.
func NewRunLog(now func() time.Time, sink io.Writer, debug bool) *RunLog {
	if now == nil {
		now = time.Now
	}
	return &RunLog{now: now, sink: sink, debug: debug}
}

func (l *RunLog) emit(level, format string, args ...any) {
	line := fmt.Sprintf("%s - %s - %s", l.now().Format(logTimeFormat), level, fmt.Sprintf(format, args...))
	l.lines = append(l.lines, line)
	if l.sink != nil {
		fmt.Fprintln(l.sink, line)
	}
}

func (l *RunLog) Infof(format string, args ...any)  { l.emit("INFO", format, args...) }
func (l *RunLog) Warnf(format string, args ...any)  { l.emit("WARNING", format, args...) }
func (l *RunLog) Errorf(format string, args ...any) { l.emit("ERROR", format, args...) }

// Debugf logs only when debug output is enabled.
func (l *RunLog) Debugf(format string, args ...any) {
	if l.debug {
		l.emit("DEBUG", format, args...)
	}
}

// Lines returns the collected log lines.
func (l *RunLog) Lines() []string {
	return l.lines
}

// Append writes the collected lines to the run log file in dir, creating or
// appending as needed. Logging failures are reported but never fail a job
// that otherwise succeeded.
func (l *RunLog) Append(dir string) error {
	if len(l.lines) == 0 {
		return nil
	}
	path := filepath.Join(dir, LogFileName)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) // #nosec G304 -- target dir validated upstream
	if err != nil {
		return fmt.Errorf("opening run log %s: %w", path, err)
	}
	defer f.Close()

	for _, line := range l.lines {
		if _, err := fmt.Fprintln(f, line); err != nil {
			return fmt.Errorf("writing run log %s: %w", path, err)
		}
	}
	return nil
}
