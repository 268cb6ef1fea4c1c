package progress

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// LogManager implements Manager with line-based output for non-TTY
// environments (CI, cron, containers). Prints one line per document when it
// finishes and stage lines only for documents that run long.
type LogManager struct {
	mu  sync.Mutex
	out io.Writer
	now func() time.Time
}

// NewLogManager creates a log-based progress manager writing to out.
func NewLogManager(out io.Writer) *LogManager {
	return &LogManager{out: out, now: time.Now}
}

func (m *LogManager) NewTracker(index, total int, name string) Tracker {
	return &logTracker{
		mgr:   m,
		index: index,
		total: total,
		name:  name,
		start: m.now(),
	}
}

func (m *LogManager) SetOverallStats(processed, reconciled, flagged int) {
	m.log(fmt.Sprintf("%d processed, %d reconciled, %d flagged", processed, reconciled, flagged))
}

func (m *LogManager) Wait() {}

func (m *LogManager) log(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ts := m.now().Format("15:04:05")
	fmt.Fprintf(m.out, "%s %s\n", ts, msg)
}

// logTracker implements Tracker with throttled log output.
type logTracker struct {
	mgr     *LogManager
	index   int
	total   int
	name    string
	start   time.Time
	lastLog time.Time
}

const logInterval = 5 * time.Second

func (t *logTracker) log(msg string) {
	t.mgr.log(fmt.Sprintf("[%d/%d] %s  %s", t.index+1, t.total, t.name, msg))
}

func (t *logTracker) SetStage(stage string) {
	now := t.mgr.now()
	if now.Sub(t.start) < logInterval || now.Sub(t.lastLog) < logInterval {
		return
	}
	t.lastLog = now
	t.log(stage)
}

func (t *logTracker) Done(outcome string) {
	elapsed := t.mgr.now().Sub(t.start).Truncate(time.Millisecond)
	t.log(fmt.Sprintf("%s in %s", outcome, elapsed))
}
