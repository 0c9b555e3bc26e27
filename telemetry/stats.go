package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Pet at window end
	SizeMB      int     `csv:"size_mb"`
	AllocatedMB int     `csv:"allocated_mb"`
	Hunger      float64 `csv:"hunger"`
	Happiness   float64 `csv:"happiness"`
	Tier        string  `csv:"tier"`
	Mood        string  `csv:"mood"`
	Alive       bool    `csv:"alive"`

	// Events during window
	Feeds         int `csv:"feeds"`
	FeedsDeclined int `csv:"feeds_declined"`
	MBEaten       int `csv:"mb_eaten"`
	MBDigested    int `csv:"mb_digested"`
	Warnings      int `csv:"warnings"`

	// Host free RAM distribution (sampled each tick)
	FreeMBMean float64 `csv:"free_mb_mean"`
	FreeMBP10  float64 `csv:"free_mb_p10"`
	FreeMBP50  float64 `csv:"free_mb_p50"`
	FreeMBP90  float64 `csv:"free_mb_p90"`

	UsagePercent  float64 `csv:"usage_pct"`
	ProcessRSSMB  int     `csv:"rss_mb"`
	UnderPressure bool    `csv:"under_pressure"`
}

// PetSample is the pet and host state read at flush time.
type PetSample struct {
	SizeMB        int
	AllocatedMB   int
	Hunger        float64
	Happiness     float64
	Tier          string
	Mood          string
	Alive         bool
	UsagePercent  float64
	ProcessRSSMB  int
	UnderPressure bool
}

// ComputeFreeStats calculates mean and percentiles of free RAM samples.
func ComputeFreeStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	mean = stat.Mean(sorted, nil)
	p10 = stat.Quantile(0.10, stat.LinInterp, sorted, nil)
	p50 = stat.Quantile(0.50, stat.LinInterp, sorted, nil)
	p90 = stat.Quantile(0.90, stat.LinInterp, sorted, nil)
	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("size_mb", s.SizeMB),
		slog.Int("allocated_mb", s.AllocatedMB),
		slog.Float64("hunger", s.Hunger),
		slog.Float64("happiness", s.Happiness),
		slog.String("tier", s.Tier),
		slog.String("mood", s.Mood),
		slog.Bool("alive", s.Alive),
		slog.Int("feeds", s.Feeds),
		slog.Int("feeds_declined", s.FeedsDeclined),
		slog.Int("mb_eaten", s.MBEaten),
		slog.Int("mb_digested", s.MBDigested),
		slog.Int("warnings", s.Warnings),
		slog.Float64("free_mb_mean", s.FreeMBMean),
		slog.Float64("free_mb_p10", s.FreeMBP10),
		slog.Float64("free_mb_p50", s.FreeMBP50),
		slog.Float64("free_mb_p90", s.FreeMBP90),
		slog.Float64("usage_pct", s.UsagePercent),
		slog.Int("rss_mb", s.ProcessRSSMB),
		slog.Bool("under_pressure", s.UnderPressure),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
