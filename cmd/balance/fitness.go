package main

import (
	"log/slog"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/rampet/config"
	"github.com/pthm-cable/rampet/game"
	"github.com/pthm-cable/rampet/memory"
	"github.com/pthm-cable/rampet/sysmon"
)

// fixedMonitor reports a constant host so runs are reproducible.
type fixedMonitor struct {
	snap sysmon.Snapshot
}

func (m *fixedMonitor) Refresh()                  {}
func (m *fixedMonitor) FreeMB() int               { return m.snap.FreeMB }
func (m *fixedMonitor) Snapshot() sysmon.Snapshot { return m.snap }

// ledgerAllocator only counts. Simulated sessions never hold real memory.
type ledgerAllocator struct{}

func (ledgerAllocator) Alloc(int) ([]byte, error) { return nil, nil }
func (ledgerAllocator) Free([]byte) error         { return nil }

// runResult holds the outcome of one simulated session.
type runResult struct {
	SurvivedSec float64
	MeanSizeMB  float64
	PeakSizeMB  int
	Declined    int
}

// EvalRecord is one row of evals.csv.
type EvalRecord struct {
	Eval        int     `csv:"eval"`
	Fitness     float64 `csv:"fitness"`
	IntervalSec float64 `csv:"interval_sec"`
	PortionMB   int     `csv:"portion_mb"`
	SurvivedSec float64 `csv:"survived_sec"`
	MeanSizeMB  float64 `csv:"mean_size_mb"`
	PeakSizeMB  int     `csv:"peak_size_mb"`
	Declined    float64 `csv:"declined"`
}

// FitnessEvaluator runs simulated sessions with a virtual clock.
type FitnessEvaluator struct {
	cfg        *config.Config
	seeds      []int64
	horizon    time.Duration
	freeMB     int
	sizeWeight float64
	logger     *slog.Logger
}

// NewFitnessEvaluator creates an evaluator. cfg is shared read-only by
// every run.
func NewFitnessEvaluator(cfg *config.Config, seeds []int64, horizon time.Duration, freeMB int, sizeWeight float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		cfg:        cfg,
		seeds:      seeds,
		horizon:    horizon,
		freeMB:     freeMB,
		sizeWeight: sizeWeight,
		logger:     slog.New(slog.DiscardHandler),
	}
}

// Evaluate scores a schedule across all seeds (lower = better). Every
// second the pet dies early costs one point; each MB held on average costs
// sizeWeight.
func (fe *FitnessEvaluator) Evaluate(s Schedule) (float64, EvalRecord) {
	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, seed int64) {
			defer wg.Done()
			results[idx] = fe.runSession(s, seed)
		}(i, seed)
	}
	wg.Wait()

	survived := make([]float64, len(results))
	sizes := make([]float64, len(results))
	declined := make([]float64, len(results))
	peak := 0
	for i, r := range results {
		survived[i] = r.SurvivedSec
		sizes[i] = r.MeanSizeMB
		declined[i] = float64(r.Declined)
		peak = max(peak, r.PeakSizeMB)
	}

	rec := EvalRecord{
		IntervalSec: s.IntervalSec,
		PortionMB:   s.PortionMB,
		SurvivedSec: stat.Mean(survived, nil),
		MeanSizeMB:  stat.Mean(sizes, nil),
		PeakSizeMB:  peak,
		Declined:    stat.Mean(declined, nil),
	}
	rec.Fitness = (fe.horizon.Seconds() - rec.SurvivedSec) + fe.sizeWeight*rec.MeanSizeMB
	return rec.Fitness, rec
}

// runSession plays one session to death or the horizon.
func (fe *FitnessEvaluator) runSession(s Schedule, seed int64) runResult {
	cfg := fe.cfg
	mon := &fixedMonitor{snap: sysmon.Snapshot{
		TotalMB: fe.freeMB * 2,
		UsedMB:  fe.freeMB,
		FreeMB:  fe.freeMB,
	}}
	mem := memory.New(mon, cfg.System.MinFreeRAMMB,
		memory.WithAllocator(ledgerAllocator{}),
		memory.WithLimit(cfg.Pet.MaxSizeMB),
		memory.WithLogger(fe.logger),
	)

	clock := time.Unix(0, 0)
	g := game.New(cfg, mon, mem,
		game.WithSeed(seed),
		game.WithClock(func() time.Time { return clock }),
		game.WithLogger(fe.logger),
	)
	defer g.Close()

	step := cfg.Derived.TickInterval
	interval := time.Duration(s.IntervalSec * float64(time.Second))

	var res runResult
	var sizeSum float64
	var samples int
	var sinceFeed time.Duration

	for elapsed := time.Duration(0); elapsed < fe.horizon; {
		elapsed += step
		clock = clock.Add(step)
		g.Tick(clock)
		if !g.Alive() {
			res.SurvivedSec = elapsed.Seconds()
			break
		}

		sinceFeed += step
		if sinceFeed >= interval {
			sinceFeed = 0
			if err := g.Feed(s.PortionMB); err != nil {
				res.Declined++
			}
		}

		size := g.View().SizeMB
		sizeSum += float64(size)
		samples++
		res.PeakSizeMB = max(res.PeakSizeMB, size)
	}
	if g.Alive() {
		res.SurvivedSec = fe.horizon.Seconds()
	}
	if samples > 0 {
		res.MeanSizeMB = sizeSum / float64(samples)
	}
	return res
}
