package telemetry

import "testing"

var testTiers = []string{"Baby", "Child", "Teen", "Adult"}

func hasMilestone(ms []Milestone, typ MilestoneType) bool {
	for _, m := range ms {
		if m.Type == typ {
			return true
		}
	}
	return false
}

func TestMilestoneDetector_TierUp(t *testing.T) {
	md := NewMilestoneDetector(10, testTiers)
	md.Check(WindowStats{Tier: "Baby", SizeMB: 50, Alive: true})

	got := md.Check(WindowStats{WindowEndTick: 10, Tier: "Child", SizeMB: 100, Alive: true})
	if !hasMilestone(got, MilestoneTierUp) {
		t.Errorf("expected tier_up, got %+v", got)
	}

	got = md.Check(WindowStats{WindowEndTick: 20, Tier: "Baby", SizeMB: 40, Alive: true})
	if !hasMilestone(got, MilestoneTierDown) {
		t.Errorf("expected tier_down, got %+v", got)
	}
}

func TestMilestoneDetector_RecordSize(t *testing.T) {
	md := NewMilestoneDetector(10, testTiers)

	if got := md.Check(WindowStats{Tier: "Baby", SizeMB: 50, Alive: true}); hasMilestone(got, MilestoneRecordSize) {
		t.Error("first window should only set the baseline")
	}
	if got := md.Check(WindowStats{Tier: "Baby", SizeMB: 45, Alive: true}); hasMilestone(got, MilestoneRecordSize) {
		t.Error("smaller size is not a record")
	}
	if got := md.Check(WindowStats{Tier: "Baby", SizeMB: 51, Alive: true}); !hasMilestone(got, MilestoneRecordSize) {
		t.Error("expected record_size")
	}
}

func TestMilestoneDetector_FeedingFrenzy(t *testing.T) {
	md := NewMilestoneDetector(10, testTiers)
	for i := 0; i < 5; i++ {
		md.Check(WindowStats{Tier: "Teen", SizeMB: 200, MBEaten: 20, Alive: true})
	}

	got := md.Check(WindowStats{Tier: "Teen", SizeMB: 200, MBEaten: 300, Alive: true})
	if !hasMilestone(got, MilestoneFeedingFrenzy) {
		t.Errorf("expected feeding_frenzy, got %+v", got)
	}
}

func TestMilestoneDetector_RAMSqueeze(t *testing.T) {
	md := NewMilestoneDetector(10, testTiers)
	for i := 0; i < 3; i++ {
		md.Check(WindowStats{Tier: "Teen", FreeMBMean: 8000, Alive: true})
	}

	got := md.Check(WindowStats{Tier: "Teen", FreeMBMean: 4000, Alive: true})
	if !hasMilestone(got, MilestoneRAMSqueeze) {
		t.Errorf("expected ram_squeeze, got %+v", got)
	}

	// Peak resets after triggering
	got = md.Check(WindowStats{Tier: "Teen", FreeMBMean: 3900, Alive: true})
	if hasMilestone(got, MilestoneRAMSqueeze) {
		t.Error("squeeze should not retrigger without a new drop")
	}
}

func TestMilestoneDetector_DeathOnce(t *testing.T) {
	md := NewMilestoneDetector(10, testTiers)
	md.Check(WindowStats{Tier: "Teen", Alive: true})

	if got := md.Check(WindowStats{Tier: "Teen", Alive: false}); !hasMilestone(got, MilestoneDeath) {
		t.Error("expected death milestone")
	}
	if got := md.Check(WindowStats{Tier: "Teen", Alive: false}); len(got) != 0 {
		t.Errorf("death should be reported once, got %+v", got)
	}
}
