package churn

import "testing"

func TestTracker_ObserveAccumulatesLineDelta(t *testing.T) {
	tr := NewTracker()
	tr.ResetAll("one\ntwo")

	if inc := tr.Observe("one\ntwo\nthree\nfour"); inc != 2 {
		t.Errorf("increment = %d, want 2", inc)
	}
	if inc := tr.Observe("one"); inc != 3 {
		t.Errorf("shrink increment = %d, want 3", inc)
	}
	if tr.Total() != 5 {
		t.Errorf("total = %d, want 5", tr.Total())
	}
}

func TestTracker_StepwiseEqualsSingleStepSum(t *testing.T) {
	// Observing A->B then B->C accumulates the same total as the sum of the
	// individual line-count deltas, for any A, B, C.
	cases := []struct{ a, b, c string }{
		{"", "x\ny", "x"},
		{"1\n2\n3", "1", "1\n2\n3\n4\n5"},
		{"same", "same", "same"},
		{"a\nb", "a\nb\nc", "a"},
	}

	for _, tc := range cases {
		tr := NewTracker()
		tr.ResetAll(tc.a)
		inc1 := tr.Observe(tc.b)
		inc2 := tr.Observe(tc.c)

		if tr.Total() != inc1+inc2 {
			t.Errorf("total %d != sum of increments %d+%d", tr.Total(), inc1, inc2)
		}

		want := abs(lineCount(tc.b)-lineCount(tc.a)) + abs(lineCount(tc.c)-lineCount(tc.b))
		if tr.Total() != want {
			t.Errorf("total %d, want delta sum %d for %+v", tr.Total(), want, tc)
		}
	}
}

func TestTracker_ResetThenObserveSameContentIsZero(t *testing.T) {
	tr := NewTracker()
	tr.ResetAll("a\nb\nc")
	tr.Observe("a\nb\nc\nd")

	before := tr.Total()
	tr.Reset("x\ny\nz")
	if inc := tr.Observe("x\ny\nz"); inc != 0 {
		t.Errorf("observe(same) after reset = %d, want 0", inc)
	}
	if tr.Total() != before {
		t.Errorf("reset changed the counter: %d -> %d", before, tr.Total())
	}
}

func TestTracker_SameLineEditCountsZero(t *testing.T) {
	tr := NewTracker()
	tr.ResetAll("let x = 1")

	if inc := tr.Observe("let x = 2"); inc != 0 {
		t.Errorf("same-line edit increment = %d, want 0", inc)
	}
}

func TestTracker_ResetAllZeroesCounter(t *testing.T) {
	tr := NewTracker()
	tr.ResetAll("")
	tr.Observe("a\nb\nc")
	if tr.Total() == 0 {
		t.Fatal("expected nonzero total before reset")
	}

	tr.ResetAll("fresh")
	if tr.Total() != 0 {
		t.Errorf("total after ResetAll = %d, want 0", tr.Total())
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
