package game

import (
	"fmt"
	"time"

	"github.com/pthm-cable/rampet/sysmon"
	"github.com/pthm-cable/rampet/telemetry"
)

// Level is a message severity.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarn
	LevelCritical
)

// Message is a short-lived line shown to the player.
type Message struct {
	Text  string
	Level Level
	At    time.Time
}

// Tick advances the simulation to now.
func (g *Game) Tick(now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tickLocked(now)
}

func (g *Game) tickLocked(now time.Time) {
	dt := now.Sub(g.lastUpdate).Seconds()
	if dt < 0 {
		dt = 0
	}
	g.lastUpdate = now

	// The help overlay pauses the pet.
	if g.helpShown {
		g.expireMessages(now)
		return
	}

	g.tick++
	g.perf.StartTick()
	tickStart := time.Now()

	g.perf.StartPhase(telemetry.PhaseMetabolize)
	wasAlive := g.pet.Alive
	digested := g.pet.Metabolize(dt)

	g.perf.StartPhase(telemetry.PhaseDigest)
	if digested > 0 {
		released := g.mem.Digest(digested)
		if released != digested {
			g.logger.Warn("digest mismatch", "digested_mb", digested, "released_mb", released)
		}
		g.collector.RecordDigest(released)
		g.metrics.RecordDigest(released)
	}
	if wasAlive && !g.pet.Alive {
		g.addMessage(now, LevelCritical, fmt.Sprintf("%s starved to death!", g.pet.Name))
		g.logger.Info("pet starved", "pet", g.pet)
	}

	g.stats.PlayTime += time.Duration(dt * float64(time.Second))
	g.stats.MaxSizeReached = max(g.stats.MaxSizeReached, g.pet.SizeMB)

	g.perf.StartPhase(telemetry.PhaseMonitor)
	snap := g.monitor.Snapshot()
	g.tracker.Record(snap)
	g.collector.RecordFreeMB(snap.FreeMB)
	g.updateCondition(now, snap)

	g.perf.StartPhase(telemetry.PhaseWarnings)
	g.checkRAMLevels(now, snap)

	g.perf.StartPhase(telemetry.PhaseMessages)
	g.expireMessages(now)

	g.perf.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry(now, snap)

	g.perf.EndTick()
	g.metrics.ObserveTick(time.Since(tickStart).Seconds())
	g.observeMetrics(snap)
}

// checkRAMLevels queues a warning when host free RAM is low, at most once
// per cooldown. The cooldown restarts whenever free RAM is below the
// warning threshold, even if no message was queued.
func (g *Game) checkRAMLevels(now time.Time, snap sysmon.Snapshot) {
	cfg := g.config()
	if !g.lastWarning.IsZero() && now.Sub(g.lastWarning) < cfg.Derived.WarningCooldown {
		return
	}

	free := snap.FreeMB
	if free >= cfg.System.WarningThresholdMB {
		return
	}

	switch {
	case free < cfg.System.MinFreeRAMMB:
		g.addMessage(now, LevelCritical, "CRITICAL: RAM dangerously low!")
		g.collector.RecordWarning()
		g.logger.Warn("ram critical", "free_mb", free)
	case free < cfg.System.WarningThresholdMB/2:
		g.addMessage(now, LevelWarn, fmt.Sprintf("Warning: only %d MB RAM free", free))
		g.collector.RecordWarning()
		g.logger.Warn("ram low", "free_mb", free)
	}
	g.lastWarning = now
}

// addMessage queues a message, keeping only the newest few.
func (g *Game) addMessage(now time.Time, level Level, text string) {
	g.messages = append(g.messages, Message{Text: text, Level: level, At: now})
	if over := len(g.messages) - g.config().Game.MaxMessages; over > 0 {
		g.messages = append(g.messages[:0], g.messages[over:]...)
	}
}

func (g *Game) expireMessages(now time.Time) {
	ttl := g.config().Derived.MessageTTL
	kept := g.messages[:0]
	for _, m := range g.messages {
		if now.Sub(m.At) < ttl {
			kept = append(kept, m)
		}
	}
	clear(g.messages[len(kept):])
	g.messages = kept
}
