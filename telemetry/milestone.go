package telemetry

import (
	"fmt"
	"log/slog"
)

// MilestoneType identifies the type of milestone.
type MilestoneType string

const (
	MilestoneTierUp        MilestoneType = "tier_up"
	MilestoneTierDown      MilestoneType = "tier_down"
	MilestoneRecordSize    MilestoneType = "record_size"
	MilestoneFeedingFrenzy MilestoneType = "feeding_frenzy"
	MilestoneRAMSqueeze    MilestoneType = "ram_squeeze"
	MilestoneDeath         MilestoneType = "death"
)

// Milestone is a notable moment in the pet's life.
type Milestone struct {
	Type        MilestoneType `csv:"type"`
	Tick        int64         `csv:"tick"`
	Description string        `csv:"description"`
}

// LogMilestone logs the milestone using slog.
func (m Milestone) LogMilestone() {
	slog.Info("milestone",
		"type", string(m.Type),
		"tick", m.Tick,
		"description", m.Description,
	)
}

// MilestoneDetector spots notable changes between windows.
type MilestoneDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	tierOrder  map[string]int
	recordSize int
	peakFreeMB float64
	deathSeen  bool
}

// NewMilestoneDetector creates a detector with the given history size.
// tiers lists tier names smallest first.
func NewMilestoneDetector(historySize int, tiers []string) *MilestoneDetector {
	if historySize < 3 {
		historySize = 3
	}
	order := make(map[string]int, len(tiers))
	for i, t := range tiers {
		order[t] = i
	}
	return &MilestoneDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
		tierOrder:   order,
	}
}

// Check analyzes the latest stats and returns any triggered milestones.
func (md *MilestoneDetector) Check(stats WindowStats) []Milestone {
	var milestones []Milestone

	if !stats.Alive {
		if !md.deathSeen {
			md.deathSeen = true
			milestones = append(milestones, Milestone{
				Type:        MilestoneDeath,
				Tick:        stats.WindowEndTick,
				Description: fmt.Sprintf("Pet died at %d MB", stats.SizeMB),
			})
		}
		md.addToHistory(stats)
		return milestones
	}

	if md.historyFull || md.historyIdx > 0 {
		if m := md.checkTierChange(stats); m != nil {
			milestones = append(milestones, *m)
		}
		if m := md.checkFeedingFrenzy(stats); m != nil {
			milestones = append(milestones, *m)
		}
		if m := md.checkRAMSqueeze(stats); m != nil {
			milestones = append(milestones, *m)
		}
	}

	if m := md.checkRecordSize(stats); m != nil {
		milestones = append(milestones, *m)
	}

	md.addToHistory(stats)
	if stats.FreeMBMean > md.peakFreeMB {
		md.peakFreeMB = stats.FreeMBMean
	}

	return milestones
}

func (md *MilestoneDetector) addToHistory(stats WindowStats) {
	md.history[md.historyIdx] = stats
	md.historyIdx = (md.historyIdx + 1) % md.historySize
	if md.historyIdx == 0 {
		md.historyFull = true
	}
}

func (md *MilestoneDetector) getHistory() []WindowStats {
	if md.historyFull {
		return md.history
	}
	return md.history[:md.historyIdx]
}

func (md *MilestoneDetector) last() WindowStats {
	idx := (md.historyIdx - 1 + md.historySize) % md.historySize
	return md.history[idx]
}

func (md *MilestoneDetector) checkTierChange(stats WindowStats) *Milestone {
	prev := md.last()
	before, okPrev := md.tierOrder[prev.Tier]
	after, okCur := md.tierOrder[stats.Tier]
	if !okPrev || !okCur || before == after {
		return nil
	}

	typ, verb := MilestoneTierUp, "Grew"
	if after < before {
		typ, verb = MilestoneTierDown, "Shrank"
	}
	return &Milestone{
		Type:        typ,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%s from %s to %s at %d MB", verb, prev.Tier, stats.Tier, stats.SizeMB),
	}
}

func (md *MilestoneDetector) checkRecordSize(stats WindowStats) *Milestone {
	if stats.SizeMB <= md.recordSize {
		return nil
	}
	old := md.recordSize
	md.recordSize = stats.SizeMB
	// The first window only sets the baseline.
	if old == 0 {
		return nil
	}
	return &Milestone{
		Type:        MilestoneRecordSize,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("New record size %d MB (was %d MB)", stats.SizeMB, old),
	}
}

func (md *MilestoneDetector) checkFeedingFrenzy(stats WindowStats) *Milestone {
	history := md.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.MBEaten
	}
	avg := float64(total) / float64(len(history))

	if stats.MBEaten >= 100 && float64(stats.MBEaten) > avg*2.0 {
		return &Milestone{
			Type:        MilestoneFeedingFrenzy,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Ate %d MB, %.1fx the recent average", stats.MBEaten, float64(stats.MBEaten)/max(avg, 1)),
		}
	}
	return nil
}

func (md *MilestoneDetector) checkRAMSqueeze(stats WindowStats) *Milestone {
	if md.peakFreeMB == 0 || stats.FreeMBMean == 0 {
		return nil
	}

	drop := 1.0 - stats.FreeMBMean/md.peakFreeMB
	if drop > 0.30 {
		oldPeak := md.peakFreeMB
		md.peakFreeMB = stats.FreeMBMean
		return &Milestone{
			Type:        MilestoneRAMSqueeze,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Free RAM fell %.0f%% from %.0f MB to %.0f MB", drop*100, oldPeak, stats.FreeMBMean),
		}
	}
	return nil
}
