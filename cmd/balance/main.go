// Command balance searches for the most frugal fixed feeding schedule that
// keeps a pet alive at a given difficulty. Sessions run on a virtual clock
// against a simulated host, so no real memory is held.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/optimize"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/rampet/config"
)

type options struct {
	configPath string
	difficulty string
	seeds      int
	horizon    time.Duration
	freeMB     int
	maxEvals   int
	sizeWeight float64
	outputDir  string
}

// bestResult is written to best_schedule.yaml.
type bestResult struct {
	Difficulty  string   `yaml:"difficulty"`
	Schedule    Schedule `yaml:"schedule"`
	Fitness     float64  `yaml:"fitness"`
	SurvivedSec float64  `yaml:"survived_sec"`
	MeanSizeMB  float64  `yaml:"mean_size_mb"`
	PeakSizeMB  int      `yaml:"peak_size_mb"`
}

func main() {
	var opts options
	cmd := &cobra.Command{
		Use:          "balance",
		Short:        "Find a feeding schedule that keeps the pet alive on the least RAM",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "Base config YAML file (empty = use defaults)")
	f.StringVar(&opts.difficulty, "difficulty", "", "Difficulty to balance (empty = use config)")
	f.IntVar(&opts.seeds, "seeds", 3, "Number of seeds per evaluation")
	f.DurationVar(&opts.horizon, "horizon", 10*time.Minute, "Simulated session length")
	f.IntVar(&opts.freeMB, "free-mb", 8192, "Free RAM reported by the simulated host")
	f.IntVar(&opts.maxEvals, "max-evals", 200, "Maximum number of evaluations")
	f.Float64Var(&opts.sizeWeight, "size-weight", 0.01, "Fitness cost per MB held on average")
	f.StringVar(&opts.outputDir, "output", "", "Output directory for results")
	cmd.MarkFlagRequired("output")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(opts options) error {
	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.difficulty != "" {
		if err := cfg.SetDifficulty(config.Difficulty(opts.difficulty)); err != nil {
			return err
		}
	}

	seeds := make([]int64, opts.seeds)
	for i := range seeds {
		seeds[i] = int64(i*1000 + 42)
	}

	params := NewParamVector()
	evaluator := NewFitnessEvaluator(cfg, seeds, opts.horizon, opts.freeMB, opts.sizeWeight)

	var records []*EvalRecord
	best := EvalRecord{Fitness: 1e18}
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			s := params.Schedule(params.Denormalize(x))
			fitness, rec := evaluator.Evaluate(s)
			rec.Eval = len(records) + 1
			records = append(records, &rec)
			if fitness < best.Fitness {
				best = rec
			}
			pterm.Printf("Eval %d/%d: every %.1fs feed %d MB -> survived %.0fs, mean %.0f MB (best %.2f)\n",
				rec.Eval, opts.maxEvals, s.IntervalSec, s.PortionMB, rec.SurvivedSec, rec.MeanSizeMB, best.Fitness)
			return fitness
		},
	}
	settings := &optimize.Settings{FuncEvaluations: opts.maxEvals}

	pterm.Info.Printf("Balancing %s difficulty: %d seeds, %s horizon, %d MB free\n",
		cfg.Game.Difficulty, opts.seeds, opts.horizon, opts.freeMB)

	initX := params.Normalize(params.DefaultVector())
	if _, err := optimize.Minimize(problem, initX, settings, &optimize.NelderMead{}); err != nil {
		slog.Warn("optimization ended", "error", err)
	}

	evalsPath := filepath.Join(opts.outputDir, "evals.csv")
	f, err := os.Create(evalsPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", evalsPath, err)
	}
	defer f.Close()
	if err := gocsv.MarshalFile(&records, f); err != nil {
		return fmt.Errorf("write %s: %w", evalsPath, err)
	}

	result := bestResult{
		Difficulty:  string(cfg.Game.Difficulty),
		Schedule:    Schedule{IntervalSec: best.IntervalSec, PortionMB: best.PortionMB},
		Fitness:     best.Fitness,
		SurvivedSec: best.SurvivedSec,
		MeanSizeMB:  best.MeanSizeMB,
		PeakSizeMB:  best.PeakSizeMB,
	}
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal best schedule: %w", err)
	}
	bestPath := filepath.Join(opts.outputDir, "best_schedule.yaml")
	if err := os.WriteFile(bestPath, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", bestPath, err)
	}

	pterm.Success.Printf("Done after %d evaluations in %s\n", len(records), time.Since(startTime).Round(time.Second))
	return pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"Interval", "Portion", "Survived", "Mean size", "Peak size"},
		{
			fmt.Sprintf("%.1fs", best.IntervalSec),
			fmt.Sprintf("%d MB", best.PortionMB),
			fmt.Sprintf("%.0fs / %.0fs", best.SurvivedSec, opts.horizon.Seconds()),
			fmt.Sprintf("%.0f MB", best.MeanSizeMB),
			fmt.Sprintf("%d MB", best.PeakSizeMB),
		},
	}).Render()
}
