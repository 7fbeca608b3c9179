package syncer

import "fmt"

// RunLog accumulates the ordered, human-readable outcome lines of a single
// engine run. It is rebuilt per run and returned to the caller; nothing here
// is persisted.
type RunLog struct {
	lines []string
}

// Addf appends a formatted line.
func (l *RunLog) Addf(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

// Lines returns a copy of the accumulated lines.
func (l *RunLog) Lines() []string {
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}
