// Package telemetry provides windowed session stats, milestones, perf timing and metrics.
package telemetry

import "time"

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	window time.Duration

	// Current window tracking
	windowStart     time.Time
	windowStartTick int64
	sessionStart    time.Time

	// Event counters for current window
	feeds         int
	feedsDeclined int
	mbEaten       int
	mbDigested    int
	warnings      int

	freeSamples []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in wall seconds.
func NewCollector(windowDurationSec float64, start time.Time) *Collector {
	window := time.Duration(windowDurationSec * float64(time.Second))
	if window <= 0 {
		window = 10 * time.Second
	}
	return &Collector{
		window:       window,
		windowStart:  start,
		sessionStart: start,
	}
}

// RecordFeed records a successful feeding.
func (c *Collector) RecordFeed(amountMB int) {
	c.feeds++
	c.mbEaten += amountMB
}

// RecordFeedDeclined records a feeding the memory manager refused.
func (c *Collector) RecordFeedDeclined() {
	c.feedsDeclined++
}

// RecordDigest records memory released by metabolism.
func (c *Collector) RecordDigest(amountMB int) {
	c.mbDigested += amountMB
}

// RecordWarning records a host memory warning shown to the player.
func (c *Collector) RecordWarning() {
	c.warnings++
}

// RecordFreeMB samples host free RAM.
func (c *Collector) RecordFreeMB(freeMB int) {
	c.freeSamples = append(c.freeSamples, float64(freeMB))
}

// ShouldFlush returns true once the window has elapsed.
func (c *Collector) ShouldFlush(now time.Time) bool {
	return now.Sub(c.windowStart) >= c.window
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(now time.Time, currentTick int64, sample PetSample) WindowStats {
	freeMean, freeP10, freeP50, freeP90 := ComputeFreeStats(c.freeSamples)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      now.Sub(c.sessionStart).Seconds(),

		SizeMB:      sample.SizeMB,
		AllocatedMB: sample.AllocatedMB,
		Hunger:      sample.Hunger,
		Happiness:   sample.Happiness,
		Tier:        sample.Tier,
		Mood:        sample.Mood,
		Alive:       sample.Alive,

		Feeds:         c.feeds,
		FeedsDeclined: c.feedsDeclined,
		MBEaten:       c.mbEaten,
		MBDigested:    c.mbDigested,
		Warnings:      c.warnings,

		FreeMBMean: freeMean,
		FreeMBP10:  freeP10,
		FreeMBP50:  freeP50,
		FreeMBP90:  freeP90,

		UsagePercent:  sample.UsagePercent,
		ProcessRSSMB:  sample.ProcessRSSMB,
		UnderPressure: sample.UnderPressure,
	}

	// Reset for next window
	c.windowStart = now
	c.windowStartTick = currentTick
	c.feeds = 0
	c.feedsDeclined = 0
	c.mbEaten = 0
	c.mbDigested = 0
	c.warnings = 0
	c.freeSamples = c.freeSamples[:0]

	return stats
}

// Window returns the window duration.
func (c *Collector) Window() time.Duration {
	return c.window
}
