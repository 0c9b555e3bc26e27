package telemetry

import (
	"log/slog"
	"time"
)

// Phase is one timed step of a simulation tick.
type Phase int

const (
	PhaseMetabolize Phase = iota
	PhaseDigest
	PhaseMonitor
	PhaseWarnings
	PhaseMessages
	PhaseTelemetry
	numPhases
)

var phaseNames = [numPhases]string{"metabolize", "digest", "monitor", "warnings", "messages", "telemetry"}

func (p Phase) String() string {
	if p < 0 || p >= numPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// tickTiming is the cost of one tick split by phase.
type tickTiming struct {
	total  time.Duration
	phases [numPhases]time.Duration
}

// PerfCollector keeps rolling windows of tick cost and of the interval
// between rendered frames. Ticks and frames are windowed separately: a
// headless session never records a frame.
type PerfCollector struct {
	ticks *ring[tickTiming]

	cur        tickTiming
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool

	frames    *ring[time.Duration]
	lastFrame time.Time
}

// NewPerfCollector creates a collector averaging over window ticks and
// window frames.
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 50
	}
	return &PerfCollector{
		ticks:  newRing[tickTiming](window),
		frames: newRing[time.Duration](window),
	}
}

// StartTick begins timing a tick.
func (p *PerfCollector) StartTick() {
	p.cur = tickTiming{}
	p.tickStart = time.Now()
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and starts phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phase = phase
	p.phaseStart = now
	p.inPhase = true
}

// EndTick closes the last phase and records the tick.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.inPhase = false
	p.cur.total = now.Sub(p.tickStart)
	p.ticks.push(p.cur)
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase && p.phase >= 0 && p.phase < numPhases {
		p.cur.phases[p.phase] += now.Sub(p.phaseStart)
	}
}

// RecordFrame notes that a frame was drawn at now.
func (p *PerfCollector) RecordFrame(now time.Time) {
	if !p.lastFrame.IsZero() && now.After(p.lastFrame) {
		p.frames.push(now.Sub(p.lastFrame))
	}
	p.lastFrame = now
}

// PerfStats summarizes the current windows.
type PerfStats struct {
	Ticks           int
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	TicksPerSecond  float64

	// PhaseShare is each phase's percentage of the average tick.
	PhaseShare [numPhases]float64

	// FPS is zero until two frames have been drawn.
	FPS float64
}

// Share returns the percentage of tick time spent in phase.
func (s PerfStats) Share(phase Phase) float64 {
	if phase < 0 || phase >= numPhases {
		return 0
	}
	return s.PhaseShare[phase]
}

// Stats computes the window summary.
func (p *PerfCollector) Stats() PerfStats {
	var s PerfStats
	if n := p.frames.count(); n > 0 {
		var sum time.Duration
		p.frames.each(func(d time.Duration) { sum += d })
		s.FPS = float64(time.Second) * float64(n) / float64(sum)
	}

	n := p.ticks.count()
	if n == 0 {
		return s
	}
	s.Ticks = n

	var total time.Duration
	var phaseTotal [numPhases]time.Duration
	first := true
	p.ticks.each(func(t tickTiming) {
		total += t.total
		if first || t.total < s.MinTickDuration {
			s.MinTickDuration = t.total
		}
		s.MaxTickDuration = max(s.MaxTickDuration, t.total)
		first = false
		for i, d := range t.phases {
			phaseTotal[i] += d
		}
	})

	s.AvgTickDuration = total / time.Duration(n)
	if total > 0 {
		s.TicksPerSecond = float64(time.Second) * float64(n) / float64(total)
		for i, d := range phaseTotal {
			s.PhaseShare[i] = float64(d) / float64(total) * 100
		}
	}
	return s
}

// LogStats logs the summary at info level.
func (s PerfStats) LogStats() {
	slog.Info("perf", "perf", s)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("ticks", s.Ticks),
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for i, pct := range s.PhaseShare {
		if pct > 0.1 {
			attrs = append(attrs, slog.Float64(Phase(i).String()+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one row of perf.csv.
type PerfStatsCSV struct {
	WindowEnd     int64   `csv:"window_end"`
	Ticks         int     `csv:"ticks"`
	AvgTickUS     int64   `csv:"avg_tick_us"`
	MinTickUS     int64   `csv:"min_tick_us"`
	MaxTickUS     int64   `csv:"max_tick_us"`
	FPS           float64 `csv:"fps"`
	MetabolizePct float64 `csv:"metabolize_pct"`
	DigestPct     float64 `csv:"digest_pct"`
	MonitorPct    float64 `csv:"monitor_pct"`
	WarningsPct   float64 `csv:"warnings_pct"`
	MessagesPct   float64 `csv:"messages_pct"`
	TelemetryPct  float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the summary. FPS stays zero in headless sessions.
func (s PerfStats) ToCSV(windowEnd int64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:     windowEnd,
		Ticks:         s.Ticks,
		AvgTickUS:     s.AvgTickDuration.Microseconds(),
		MinTickUS:     s.MinTickDuration.Microseconds(),
		MaxTickUS:     s.MaxTickDuration.Microseconds(),
		FPS:           s.FPS,
		MetabolizePct: s.Share(PhaseMetabolize),
		DigestPct:     s.Share(PhaseDigest),
		MonitorPct:    s.Share(PhaseMonitor),
		WarningsPct:   s.Share(PhaseWarnings),
		MessagesPct:   s.Share(PhaseMessages),
		TelemetryPct:  s.Share(PhaseTelemetry),
	}
}

// ring is a fixed-capacity buffer that overwrites its oldest entry.
type ring[T any] struct {
	buf    []T
	next   int
	filled int
}

func newRing[T any](capacity int) *ring[T] {
	return &ring[T]{buf: make([]T, capacity)}
}

func (r *ring[T]) push(v T) {
	r.buf[r.next] = v
	r.next = (r.next + 1) % len(r.buf)
	r.filled = min(r.filled+1, len(r.buf))
}

func (r *ring[T]) count() int { return r.filled }

func (r *ring[T]) each(fn func(T)) {
	for i := 0; i < r.filled; i++ {
		fn(r.buf[i])
	}
}
