package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogManager(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogManager(&buf)
	clock := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	tr := m.NewTracker(1, 3, "jane.pdf")
	tr.SetStage("Decoding")
	assert.Empty(t, buf.String(), "fast stages are not logged")

	clock = clock.Add(6 * time.Second)
	tr.SetStage("Extracting")
	tr.SetStage("Matching")
	tr.Done("reconciled")
	m.SetOverallStats(2, 1, 0)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "09:30:06 [2/3] jane.pdf  Extracting", lines[0])
	assert.Equal(t, "09:30:06 [2/3] jane.pdf  reconciled in 6s", lines[1])
	assert.Equal(t, "09:30:06 2 processed, 1 reconciled, 0 flagged", lines[2])
}

func TestNoopManager(t *testing.T) {
	m := &NoopManager{}
	tr := m.NewTracker(0, 1, "a.pdf")
	tr.SetStage("Opening")
	tr.Done("no_match")
	m.SetOverallStats(4, 3, 1)
	m.Wait()

	assert.EqualValues(t, 4, m.Processed)
	assert.EqualValues(t, 3, m.Reconciled)
	assert.EqualValues(t, 1, m.Flagged)
}
