package game

import (
	"slices"
	"time"

	"github.com/pthm-cable/rampet/pet"
	"github.com/pthm-cable/rampet/sysmon"
)

// Health is the host memory advisory shown alongside the pet.
type Health struct {
	AllocatedMB   int
	FreeMB        int
	TotalMB       int
	ProcessRSSMB  int
	UsagePercent  float64
	UnderPressure bool
	Estimated     bool
	Warning       string
}

// View is a read-only copy of everything the renderer needs.
type View struct {
	Name       string
	SizeMB     int
	Hunger     float64
	Happiness  float64
	Alive      bool
	Tier       pet.SizeTier
	Mood       pet.Mood
	Preference pet.FoodPreference
	Modifier   float64
	DigestRate float64 // MB/s at the current size
	Condition  pet.Condition

	MaxSizeMB  int // 0 when uncapped
	Stats      SessionStats
	Messages   []Message
	Health     Health
	RAM        RAMHistory
	HelpShown  bool
	Difficulty string
	FPS        float64 // zero until frames are recorded
}

// RAMHistory summarizes recent host used RAM, in MB.
type RAMHistory struct {
	Samples int
	Average float64
	Peak    float64
	P90     float64
	Trend   float64 // last minus first sample
}

// Health returns the current advisory. It does not refresh the monitor.
func (g *Game) Health() Health {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.healthLocked()
}

func (g *Game) healthLocked() Health {
	snap := g.monitor.Snapshot()
	return Health{
		AllocatedMB:   g.mem.AllocatedMB(),
		FreeMB:        snap.FreeMB,
		TotalMB:       snap.TotalMB,
		ProcessRSSMB:  snap.ProcessRSSMB,
		UsagePercent:  snap.UsagePercent(),
		UnderPressure: snap.UnderPressure(),
		Estimated:     snap.Estimated,
		Warning:       sysmon.CheckHealth(snap).Warning(),
	}
}

// View returns a consistent copy of the session state.
func (g *Game) View() View {
	g.mu.Lock()
	defer g.mu.Unlock()

	p := g.pet
	return View{
		Name:       p.Name,
		SizeMB:     p.SizeMB,
		Hunger:     p.Hunger,
		Happiness:  p.Happiness,
		Alive:      p.Alive,
		Tier:       p.Tier(),
		Mood:       p.Mood(),
		Preference: p.Preference,
		Modifier:   p.Metabolism.Modifier,
		DigestRate: p.Metabolism.Rate(p.SizeMB),
		Condition:  g.condition,
		MaxSizeMB:  g.mem.LimitMB(),
		Stats:      g.stats,
		Messages:   slices.Clone(g.messages),
		Health:     g.healthLocked(),
		RAM: RAMHistory{
			Samples: g.tracker.Len(),
			Average: g.tracker.Average(),
			Peak:    g.tracker.Peak(),
			P90:     g.tracker.Quantile(0.9),
			Trend:   g.tracker.Trend(),
		},
		HelpShown:  g.helpShown,
		Difficulty: string(g.cfg.Game.Difficulty),
		FPS:        g.perf.Stats().FPS,
	}
}

// RecordFrame notes that the front end drew a frame at now.
func (g *Game) RecordFrame(now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.perf.RecordFrame(now)
}

// Stats returns the session totals.
func (g *Game) Stats() SessionStats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stats
}

// Alive reports whether the pet is alive.
func (g *Game) Alive() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pet.Alive
}

// Ticks returns the number of simulation ticks run.
func (g *Game) Ticks() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.tick
}

func secondsToDuration(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}
