package game

import (
	"time"

	"github.com/pthm-cable/rampet/sysmon"
	"github.com/pthm-cable/rampet/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles milestones.
func (g *Game) flushTelemetry(now time.Time, snap sysmon.Snapshot) {
	if !g.collector.ShouldFlush(now) {
		return
	}

	stats := g.collector.Flush(now, g.tick, g.sampleLocked(snap))
	perfStats := g.perf.Stats()

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.output.WriteTelemetry(stats); err != nil {
		g.logger.Error("failed to write telemetry", "error", err)
	}
	if err := g.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		g.logger.Error("failed to write perf", "error", err)
	}

	for _, m := range g.milestones.Check(stats) {
		if g.logStats {
			m.LogMilestone()
		}
		if err := g.output.WriteMilestone(m); err != nil {
			g.logger.Error("failed to write milestone", "error", err)
		}
		if m.Type == telemetry.MilestoneTierUp || m.Type == telemetry.MilestoneTierDown {
			g.addMessage(now, LevelInfo, m.Description)
		}
	}
}

// sampleLocked reads the pet and host state for a stats window.
func (g *Game) sampleLocked(snap sysmon.Snapshot) telemetry.PetSample {
	return telemetry.PetSample{
		SizeMB:        g.pet.SizeMB,
		AllocatedMB:   g.mem.AllocatedMB(),
		Hunger:        g.pet.Hunger,
		Happiness:     g.pet.Happiness,
		Tier:          g.pet.Tier().String(),
		Mood:          g.pet.Mood().String(),
		Alive:         g.pet.Alive,
		UsagePercent:  snap.UsagePercent(),
		ProcessRSSMB:  snap.ProcessRSSMB,
		UnderPressure: snap.UnderPressure(),
	}
}

// observeMetrics pushes the current state to Prometheus gauges.
func (g *Game) observeMetrics(snap sysmon.Snapshot) {
	if g.metrics == nil {
		return
	}
	g.metrics.Observe(telemetry.Gauges{
		SizeMB:        g.pet.SizeMB,
		AllocatedMB:   g.mem.AllocatedMB(),
		Hunger:        g.pet.Hunger,
		Happiness:     g.pet.Happiness,
		Alive:         g.pet.Alive,
		FreeMB:        snap.FreeMB,
		TotalMB:       snap.TotalMB,
		UsagePercent:  snap.UsagePercent(),
		UnderPressure: snap.UnderPressure(),
	})
}
