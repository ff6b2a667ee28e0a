package churn

import (
	"strings"
	"sync"
)

// Tracker accumulates a coarse edit-magnitude metric for the active file:
// the absolute line-count delta between successive content snapshots. This
// is an engagement signal, not an edit distance; same-line edits count as
// zero and reformatting may overcount. The counter only ever grows between
// ResetAll calls.
type Tracker struct {
	baseline string
	total    int
	mu       sync.Mutex
}

// NewTracker creates a tracker with an empty baseline and a zero counter.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Reset replaces the baseline without touching the accumulated counter.
// Called on every file switch so cross-file jumps don't register as churn.
func (t *Tracker) Reset(baseline string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.baseline = baseline
}

// ResetAll zeroes the counter and replaces the baseline. Called exactly
// once per lesson-load cycle.
func (t *Tracker) ResetAll(baseline string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.baseline = baseline
	t.total = 0
}

// Observe accumulates the line-count delta between the baseline and the
// new content, rebaselines, and returns the increment.
func (t *Tracker) Observe(content string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	delta := lineCount(content) - lineCount(t.baseline)
	if delta < 0 {
		delta = -delta
	}
	t.total += delta
	t.baseline = content
	return delta
}

// Total returns the accumulated counter for inclusion in submit payloads.
func (t *Tracker) Total() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

func lineCount(s string) int {
	return len(strings.Split(s, "\n"))
}
