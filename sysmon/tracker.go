package sysmon

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Tracker keeps a bounded history of used RAM samples.
type Tracker struct {
	history    []float64
	maxHistory int
}

// NewTracker creates a tracker holding at most maxHistory samples.
func NewTracker(maxHistory int) *Tracker {
	if maxHistory < 2 {
		maxHistory = 2
	}
	return &Tracker{
		history:    make([]float64, 0, maxHistory),
		maxHistory: maxHistory,
	}
}

// Record appends the used RAM of a snapshot, dropping the oldest sample when full.
func (t *Tracker) Record(s Snapshot) {
	if len(t.history) == t.maxHistory {
		copy(t.history, t.history[1:])
		t.history = t.history[:len(t.history)-1]
	}
	t.history = append(t.history, float64(s.UsedMB))
}

// Len returns the number of samples held.
func (t *Tracker) Len() int { return len(t.history) }

// Average returns the mean used RAM, 0 when empty.
func (t *Tracker) Average() float64 {
	if len(t.history) == 0 {
		return 0
	}
	return stat.Mean(t.history, nil)
}

// Trend returns last minus first sample; positive means usage is rising.
func (t *Tracker) Trend() float64 {
	if len(t.history) < 2 {
		return 0
	}
	return t.history[len(t.history)-1] - t.history[0]
}

// Peak returns the highest sample, 0 when empty.
func (t *Tracker) Peak() float64 {
	if len(t.history) == 0 {
		return 0
	}
	return floats.Max(t.history)
}

// Quantile returns the p-th empirical quantile (p in [0,1]), 0 when empty.
func (t *Tracker) Quantile(p float64) float64 {
	if len(t.history) == 0 {
		return 0
	}
	sorted := make([]float64, len(t.history))
	copy(sorted, t.history)
	sort.Float64s(sorted)
	return stat.Quantile(clamp01(p), stat.Empirical, sorted, nil)
}

func clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
