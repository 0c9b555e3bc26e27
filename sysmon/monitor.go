// Package sysmon samples host memory statistics.
//
// Readings are advisory. A failed query never surfaces as an error: the
// monitor falls back to a secondary sampler and then to a configured
// "healthy but unknown" snapshot, and callers decide how stale a reading
// they can tolerate by choosing when to call Refresh.
package sysmon

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Pressure thresholds.
const (
	PressureFreeMB     = 500
	PressureUsageRatio = 0.9
)

// Snapshot is the last sampled state of host memory.
type Snapshot struct {
	TotalMB      int
	UsedMB       int
	FreeMB       int
	ProcessRSSMB int
	Estimated    bool // true when built from fallback defaults
	SampledAt    time.Time
}

// UsagePercent returns used/total as a percentage, 0 when total is unknown.
func (s Snapshot) UsagePercent() float64 {
	if s.TotalMB <= 0 {
		return 0
	}
	return float64(s.UsedMB) / float64(s.TotalMB) * 100
}

// UnderPressure reports whether free memory is low relative to fixed thresholds.
func (s Snapshot) UnderPressure() bool {
	if s.FreeMB < PressureFreeMB {
		return true
	}
	return s.TotalMB > 0 && float64(s.UsedMB)/float64(s.TotalMB) > PressureUsageRatio
}

// LogValue implements slog.LogValuer for structured logging.
func (s Snapshot) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("total_mb", s.TotalMB),
		slog.Int("used_mb", s.UsedMB),
		slog.Int("free_mb", s.FreeMB),
		slog.Int("rss_mb", s.ProcessRSSMB),
		slog.Bool("estimated", s.Estimated),
	)
}

// Monitor caches the most recent host memory sample.
type Monitor struct {
	mu       sync.RWMutex
	primary  Sampler
	fallback Sampler
	defaults Reading
	snap     Snapshot
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithSampler replaces the primary sampler.
func WithSampler(s Sampler) Option {
	return func(m *Monitor) { m.primary = s }
}

// WithFallback replaces the secondary sampler. Nil disables it.
func WithFallback(s Sampler) Option {
	return func(m *Monitor) { m.fallback = s }
}

// WithDefaults sets the reading used when every sampler fails.
func WithDefaults(totalMB, freeMB int) Option {
	return func(m *Monitor) {
		if freeMB > totalMB {
			freeMB = totalMB
		}
		m.defaults = Reading{TotalMB: totalMB, UsedMB: totalMB - freeMB, FreeMB: freeMB}
	}
}

// WithLogger sets the logger used for sampling failures.
func WithLogger(l *slog.Logger) Option {
	return func(m *Monitor) { m.logger = l }
}

// WithClock overrides time.Now for sample timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// New creates a monitor and takes an initial sample.
func New(opts ...Option) *Monitor {
	m := &Monitor{
		primary:  NewGopsutilSampler(),
		fallback: FallbackSampler{},
		defaults: Reading{TotalMB: 4096, UsedMB: 2048, FreeMB: 2048},
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.Refresh()
	return m
}

// Refresh re-samples host memory counters.
func (m *Monitor) Refresh() {
	reading, estimated := m.sampleMemory()

	m.mu.RLock()
	rss := m.snap.ProcessRSSMB
	m.mu.RUnlock()

	if v, err := m.primary.ProcessRSS(); err == nil {
		rss = v
	} else {
		m.logger.Debug("process rss unavailable", "error", err)
	}

	m.mu.Lock()
	m.snap = Snapshot{
		TotalMB:      reading.TotalMB,
		UsedMB:       reading.UsedMB,
		FreeMB:       reading.FreeMB,
		ProcessRSSMB: rss,
		Estimated:    estimated,
		SampledAt:    m.now(),
	}
	m.mu.Unlock()
}

func (m *Monitor) sampleMemory() (Reading, bool) {
	r, err := m.primary.Memory()
	if err == nil && r.TotalMB > 0 {
		return r, false
	}
	m.logger.Warn("host memory query failed", "error", err)

	if m.fallback != nil {
		r, ferr := m.fallback.Memory()
		if ferr == nil && r.TotalMB > 0 {
			return r, false
		}
		m.logger.Warn("fallback memory query failed", "error", ferr)
	}
	return m.defaults, true
}

// Start refreshes in the background until ctx is done.
func (m *Monitor) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Refresh()
			}
		}
	}()
}

// Snapshot returns the last sample.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

// TotalMB returns total RAM from the last sample.
func (m *Monitor) TotalMB() int { return m.Snapshot().TotalMB }

// UsedMB returns used RAM from the last sample.
func (m *Monitor) UsedMB() int { return m.Snapshot().UsedMB }

// FreeMB returns available RAM from the last sample.
func (m *Monitor) FreeMB() int { return m.Snapshot().FreeMB }

// ProcessRSSMB returns this process's resident size from the last sample.
func (m *Monitor) ProcessRSSMB() int { return m.Snapshot().ProcessRSSMB }

// UsagePercent returns used/total from the last sample.
func (m *Monitor) UsagePercent() float64 { return m.Snapshot().UsagePercent() }

// IsUnderPressure reports pressure on the last sample.
func (m *Monitor) IsUnderPressure() bool { return m.Snapshot().UnderPressure() }
