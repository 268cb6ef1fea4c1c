// Package progress reports per-document stage progress.
package progress

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Stages a document passes through, in order.
var Stages = []string{"Opening", "Decoding", "Extracting", "Matching", "Reconciling"}

// Tracker tracks progress for a single document.
type Tracker interface {
	SetStage(stage string)
	Done(outcome string)
}

// Manager creates trackers for individual documents.
type Manager interface {
	NewTracker(index, total int, name string) Tracker
	SetOverallStats(processed, reconciled, flagged int)
	Wait()
}

// MPBManager implements Manager using the mpb multi-progress-bar library.
type MPBManager struct {
	container *mpb.Progress
	mu        sync.Mutex
	stats     string
}

// NewMPBManager creates a new mpb-based progress manager. Bars are drawn on
// stderr so a report written to stdout stays clean.
func NewMPBManager() *MPBManager {
	p := mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
	return &MPBManager{container: p}
}

// NewTracker adds a bar for one document. The bar advances once per stage.
func (m *MPBManager) NewTracker(index, total int, name string) Tracker {
	stageVal := &atomic.Value{}
	stageVal.Store("")
	bar := m.container.AddBar(int64(len(Stages)),
		mpb.PrependDecorators(
			decor.Name(fmt.Sprintf("[%d/%d] %s ", index+1, total, name), decor.WCSyncSpaceR),
		),
		mpb.AppendDecorators(
			decor.Any(func(s decor.Statistics) string {
				return stageVal.Load().(string)
			}),
		),
	)

	return &mpbTracker{bar: bar, stagePtr: stageVal}
}

// SetOverallStats records running totals, shown once all bars complete.
func (m *MPBManager) SetOverallStats(processed, reconciled, flagged int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = fmt.Sprintf("%d processed, %d reconciled, %d flagged", processed, reconciled, flagged)
}

// Wait waits for all progress bars to finish and prints the totals.
func (m *MPBManager) Wait() {
	m.container.Wait()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stats != "" {
		fmt.Fprintln(os.Stderr, m.stats)
	}
}

type mpbTracker struct {
	bar      *mpb.Bar
	stagePtr *atomic.Value
}

func (t *mpbTracker) SetStage(stage string) {
	t.stagePtr.Store(stage)
	for i, s := range Stages {
		if s == stage {
			t.bar.SetCurrent(int64(i))
			return
		}
	}
}

func (t *mpbTracker) Done(outcome string) {
	t.stagePtr.Store(outcome)
	t.bar.SetCurrent(int64(len(Stages)))
	t.bar.Abort(false) // complete without removing
}

// NoopManager is a silent progress manager that keeps the latest totals.
type NoopManager struct {
	Processed  int32
	Reconciled int32
	Flagged    int32
}

func (m *NoopManager) NewTracker(index, total int, name string) Tracker {
	return noopTracker{}
}

func (m *NoopManager) SetOverallStats(processed, reconciled, flagged int) {
	atomic.StoreInt32(&m.Processed, int32(processed))
	atomic.StoreInt32(&m.Reconciled, int32(reconciled))
	atomic.StoreInt32(&m.Flagged, int32(flagged))
}

func (m *NoopManager) Wait() {}

type noopTracker struct{}

func (noopTracker) SetStage(string) {}
func (noopTracker) Done(string)     {}
