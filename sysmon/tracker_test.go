package sysmon

import (
	"math"
	"testing"
)

func TestTracker_Empty(t *testing.T) {
	tr := NewTracker(5)
	if tr.Average() != 0 || tr.Trend() != 0 || tr.Peak() != 0 || tr.Quantile(0.5) != 0 {
		t.Error("empty tracker should report zeros")
	}
}

func TestTracker_Stats(t *testing.T) {
	tr := NewTracker(10)
	for _, used := range []int{100, 200, 300, 400} {
		tr.Record(Snapshot{UsedMB: used})
	}

	if math.Abs(tr.Average()-250) > 1e-9 {
		t.Errorf("expected average 250, got %f", tr.Average())
	}
	if tr.Trend() != 300 {
		t.Errorf("expected trend 300, got %f", tr.Trend())
	}
	if tr.Peak() != 400 {
		t.Errorf("expected peak 400, got %f", tr.Peak())
	}
	if tr.Quantile(1) != 400 || tr.Quantile(0) != 100 {
		t.Errorf("unexpected extremes %f %f", tr.Quantile(0), tr.Quantile(1))
	}
}

func TestTracker_DropsOldest(t *testing.T) {
	tr := NewTracker(3)
	for _, used := range []int{1000, 10, 20, 30} {
		tr.Record(Snapshot{UsedMB: used})
	}

	if tr.Len() != 3 {
		t.Fatalf("expected 3 samples, got %d", tr.Len())
	}
	if tr.Peak() != 30 {
		t.Errorf("oldest sample should be evicted, peak=%f", tr.Peak())
	}
	if tr.Trend() != 20 {
		t.Errorf("expected trend 20, got %f", tr.Trend())
	}
}
