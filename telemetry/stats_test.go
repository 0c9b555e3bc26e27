package telemetry

import (
	"math"
	"testing"
	"time"
)

func TestComputeFreeStats_Empty(t *testing.T) {
	mean, p10, p50, p90 := ComputeFreeStats(nil)
	if mean != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Errorf("expected zeros, got %v %v %v %v", mean, p10, p50, p90)
	}
}

func TestComputeFreeStats_Constant(t *testing.T) {
	mean, p10, p50, p90 := ComputeFreeStats([]float64{2048, 2048, 2048})
	for _, v := range []float64{mean, p10, p50, p90} {
		if v != 2048 {
			t.Errorf("expected 2048, got %v", v)
		}
	}
}

func TestComputeFreeStats_Ordering(t *testing.T) {
	values := []float64{900, 100, 500, 300, 700, 200, 800, 400, 600, 1000}
	mean, p10, p50, p90 := ComputeFreeStats(values)

	if math.Abs(mean-550) > 1e-9 {
		t.Errorf("expected mean 550, got %v", mean)
	}
	if !(p10 <= p50 && p50 <= p90) {
		t.Errorf("percentiles out of order: %v %v %v", p10, p50, p90)
	}
	if p10 < 100 || p90 > 1000 {
		t.Errorf("percentiles outside sample range: %v %v", p10, p90)
	}
	if values[0] != 900 {
		t.Error("input slice should not be reordered")
	}
}

func TestCollector_FlushResetsWindow(t *testing.T) {
	start := time.Unix(1000, 0)
	c := NewCollector(10, start)

	if c.ShouldFlush(start.Add(9 * time.Second)) {
		t.Error("should not flush before the window elapses")
	}

	c.RecordFeed(50)
	c.RecordFeed(100)
	c.RecordFeedDeclined()
	c.RecordDigest(7)
	c.RecordWarning()
	c.RecordFreeMB(4000)
	c.RecordFreeMB(2000)

	now := start.Add(10 * time.Second)
	if !c.ShouldFlush(now) {
		t.Fatal("should flush once the window elapses")
	}

	stats := c.Flush(now, 50, PetSample{SizeMB: 193, AllocatedMB: 193, Tier: "Teen", Alive: true})
	if stats.Feeds != 2 || stats.MBEaten != 150 || stats.FeedsDeclined != 1 {
		t.Errorf("unexpected feed counters: %+v", stats)
	}
	if stats.MBDigested != 7 || stats.Warnings != 1 {
		t.Errorf("unexpected digest/warning counters: %+v", stats)
	}
	if stats.FreeMBMean != 3000 {
		t.Errorf("expected free mean 3000, got %v", stats.FreeMBMean)
	}
	if stats.WindowEndTick != 50 || stats.SimTimeSec != 10 {
		t.Errorf("unexpected window bounds: end=%d time=%v", stats.WindowEndTick, stats.SimTimeSec)
	}
	if stats.SizeMB != 193 || stats.Tier != "Teen" {
		t.Errorf("pet sample not copied: %+v", stats)
	}

	next := c.Flush(now.Add(10*time.Second), 100, PetSample{})
	if next.Feeds != 0 || next.MBEaten != 0 || next.FreeMBMean != 0 {
		t.Errorf("counters should reset between windows: %+v", next)
	}
	if next.WindowStartTick != 50 {
		t.Errorf("expected window start 50, got %d", next.WindowStartTick)
	}
}

func TestCollector_DefaultWindow(t *testing.T) {
	c := NewCollector(0, time.Now())
	if c.Window() != 10*time.Second {
		t.Errorf("expected 10s default window, got %v", c.Window())
	}
}
