// Package game drives the pet: it couples the pet's vitals to the memory the
// process really holds and advances both on a fixed tick.
package game

import (
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/pthm-cable/rampet/config"
	"github.com/pthm-cable/rampet/memory"
	"github.com/pthm-cable/rampet/pet"
	"github.com/pthm-cable/rampet/sysmon"
	"github.com/pthm-cable/rampet/telemetry"
)

// ErrPetDead is returned when feeding a dead pet.
var ErrPetDead = errors.New("game: pet is dead")

// Monitor is what the driver needs from the system monitor.
type Monitor interface {
	memory.Monitor
	Snapshot() sysmon.Snapshot
}

// SessionStats are cumulative totals for the current session.
type SessionStats struct {
	TotalMBEaten   int
	FeedingCount   int
	MaxSizeReached int
	PlayTime       time.Duration
}

// Game holds the complete session state. A single mutex guards the pet and
// the memory pool as one resource, so readers never see them disagree.
type Game struct {
	mu sync.Mutex

	cfg     *config.Config
	monitor Monitor
	mem     *memory.Manager
	pet     *pet.Pet
	rng     *rand.Rand
	logger  *slog.Logger
	now     func() time.Time
	bell    func()

	stats       SessionStats
	messages    []Message
	lastUpdate  time.Time
	lastWarning time.Time
	tick        int64
	helpShown   bool
	condition   pet.Condition
	effectUntil time.Time

	tracker    *sysmon.Tracker
	collector  *telemetry.Collector
	perf       *telemetry.PerfCollector
	milestones *telemetry.MilestoneDetector
	output     *telemetry.OutputManager
	metrics    *telemetry.Metrics
	logStats   bool

	maxTicks    int64
	stopOnDeath bool
}

// Option configures a Game.
type Option func(*Game)

// WithSeed seeds the random source used for names and favorite food.
func WithSeed(seed int64) Option {
	return func(g *Game) { g.rng = rand.New(rand.NewSource(seed)) }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Game) { g.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Game) { g.logger = l }
}

// WithBell sets the sound played after a successful feeding.
func WithBell(bell func()) Option {
	return func(g *Game) { g.bell = bell }
}

// WithOutput enables CSV output.
func WithOutput(om *telemetry.OutputManager) Option {
	return func(g *Game) { g.output = om }
}

// WithMetrics enables Prometheus gauges.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(g *Game) { g.metrics = m }
}

// WithLogStats logs window stats and milestones as they are produced.
func WithLogStats(enabled bool) Option {
	return func(g *Game) { g.logStats = enabled }
}

// WithMaxTicks stops Run after n ticks. Zero means unlimited.
func WithMaxTicks(n int64) Option {
	return func(g *Game) { g.maxTicks = n }
}

// WithStopOnDeath stops Run once the pet has died.
func WithStopOnDeath(stop bool) Option {
	return func(g *Game) { g.stopOnDeath = stop }
}

// New creates a session with a fresh pet and commits its starting size.
// If the starting allocation is declined the pet starts at whatever
// memory was committed.
func New(cfg *config.Config, monitor Monitor, mem *memory.Manager, opts ...Option) *Game {
	g := &Game{
		cfg:     cfg,
		monitor: monitor,
		mem:     mem,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}

	start := g.now()
	g.lastUpdate = start
	g.tracker = sysmon.NewTracker(cfg.System.HistorySize)
	g.collector = telemetry.NewCollector(cfg.Telemetry.StatsWindow, start)
	g.perf = telemetry.NewPerfCollector(g.perfWindow())
	g.milestones = telemetry.NewMilestoneDetector(10, tierNames())

	g.pet = pet.New(pet.Params{
		StartingSizeMB: cfg.Pet.StartingSizeMB,
		Hunger:         cfg.Pet.StartingHunger,
		Happiness:      cfg.Pet.StartingHappiness,
		MetabolismRate: cfg.Derived.MetabolismRate,
		Rates:          g.rates(),
	}, g.rng)

	if size := g.pet.SizeMB; size > 0 {
		if err := g.mem.Allocate(size); err != nil {
			g.logger.Warn("starting allocation declined", "size_mb", size, "error", err)
			g.addMessage(start, LevelWarn, "Could not allocate starting size, starting small")
		}
	}
	g.pet.SyncSize(g.mem.AllocatedMB())
	g.stats.MaxSizeReached = g.pet.SizeMB

	g.logger.Info("new pet", "pet", g.pet, "difficulty", string(cfg.Game.Difficulty))
	return g
}

func (g *Game) config() *config.Config { return g.cfg }

func (g *Game) rates() pet.Rates {
	return pet.Rates{
		Hunger:         g.cfg.Derived.HungerRate,
		HappinessDecay: g.cfg.Pet.HappinessDecay,
	}
}

// perfWindow is the number of ticks in one stats window.
func (g *Game) perfWindow() int {
	tick := g.cfg.Derived.TickInterval.Seconds()
	if tick <= 0 {
		return 50
	}
	return max(int(g.cfg.Telemetry.StatsWindow/tick), 1)
}

func tierNames() []string {
	names := make([]string, 0, int(pet.TierGigantic)+1)
	for t := pet.TierBaby; t <= pet.TierGigantic; t++ {
		names = append(names, t.String())
	}
	return names
}

// Close releases every block the pet holds.
func (g *Game) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mem.Close()
}
