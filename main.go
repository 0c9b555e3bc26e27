package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/pthm-cable/rampet/config"
	"github.com/pthm-cable/rampet/game"
	"github.com/pthm-cable/rampet/memory"
	"github.com/pthm-cable/rampet/sysmon"
	"github.com/pthm-cable/rampet/telemetry"
	"github.com/pthm-cable/rampet/ui"
)

// frameInterval is how often the interactive screen is redrawn.
const frameInterval = 100 * time.Millisecond

type options struct {
	configPath  string
	headless    bool
	logStats    bool
	statsWindow float64
	outputDir   string
	seed        int64
	maxTicks    int64
	metricsAddr string
	feedEvery   time.Duration
	feedMB      int
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	root := &cobra.Command{
		Use:           "rampet",
		Short:         "A virtual pet that lives in your RAM",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.Init(opts.configPath)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config.yaml (empty = use defaults)")

	f := root.Flags()
	f.BoolVar(&opts.headless, "headless", false, "Run without the terminal UI")
	f.BoolVar(&opts.logStats, "log-stats", false, "Output stats via slog")
	f.Float64Var(&opts.statsWindow, "stats-window", 0, "Stats window size in seconds (0 = use config)")
	f.StringVar(&opts.outputDir, "output-dir", "", "Output directory for CSV logs and config snapshot")
	f.Int64Var(&opts.seed, "seed", 0, "RNG seed (0 = time-based)")
	f.Int64Var(&opts.maxTicks, "max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (empty = use config)")
	f.DurationVar(&opts.feedEvery, "feed-every", 0, "Headless only: feed on this interval (0 = never)")
	f.IntVar(&opts.feedMB, "feed-mb", game.FeedMeal, "Headless only: MB per automatic feeding")

	root.AddCommand(newStatusCmd(), newConfigCmd())
	return root
}

func run(ctx context.Context, opts options) error {
	cfg := config.Cfg()
	if opts.statsWindow > 0 {
		cfg.Telemetry.StatsWindow = opts.statsWindow
	}
	if opts.metricsAddr != "" {
		cfg.Metrics.Addr = opts.metricsAddr
	}

	logger, closeLog, err := newLogger(cfg, opts.headless)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rngSeed := opts.seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	monitor := sysmon.New(
		sysmon.WithDefaults(cfg.System.FallbackTotalMB, cfg.System.FallbackFreeMB),
		sysmon.WithLogger(logger),
	)
	monitor.Start(ctx, cfg.Derived.MonitorInterval)

	mem := memory.New(monitor, cfg.System.MinFreeRAMMB,
		memory.WithLimit(cfg.Pet.MaxSizeMB),
		memory.WithLogger(logger),
	)

	output, err := telemetry.NewOutputManager(opts.outputDir)
	if err != nil {
		return fmt.Errorf("create output manager: %w", err)
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		return fmt.Errorf("write config snapshot: %w", err)
	}

	gameOpts := []game.Option{
		game.WithSeed(rngSeed),
		game.WithLogger(logger),
		game.WithOutput(output),
		game.WithLogStats(opts.logStats),
		game.WithMaxTicks(opts.maxTicks),
	}

	if cfg.Metrics.Addr != "" {
		metrics := telemetry.NewMetrics()
		gameOpts = append(gameOpts, game.WithMetrics(metrics))
		srv := serveMetrics(cfg.Metrics.Addr, metrics, logger)
		defer srv.Shutdown(context.Background())
	}

	if opts.headless {
		g := game.New(cfg, monitor, mem, append(gameOpts, game.WithStopOnDeath(true))...)
		defer g.Close()

		logger.Info("starting headless session",
			"seed", rngSeed,
			"stats_window", cfg.Telemetry.StatsWindow,
			"max_ticks", opts.maxTicks,
			"output_dir", output.Dir(),
			"feed_every", opts.feedEvery,
			"feed_mb", opts.feedMB,
		)
		err := g.Run(ctx, autoFeed(ctx, opts.feedEvery, opts.feedMB))
		logger.Info("session ended", "ticks", g.Ticks(), "alive", g.Alive(), "stats_mb_eaten", g.Stats().TotalMBEaten)
		return err
	}

	term, err := ui.OpenTerminal()
	if err != nil {
		if errors.Is(err, ui.ErrNotTerminal) {
			return fmt.Errorf("%w (use --headless)", err)
		}
		return err
	}
	defer term.Close()

	g := game.New(cfg, monitor, mem, append(gameOpts, game.WithBell(term.Bell))...)
	defer g.Close()

	renderer := ui.NewRenderer(cfg.Graphics.UseColors, cfg.Graphics.DebugMode)
	return ui.Play(ctx, g, term, renderer, frameInterval)
}

// autoFeed sends a feed command every interval. A zero interval returns a
// nil channel, which Run treats as no input.
func autoFeed(ctx context.Context, every time.Duration, amountMB int) <-chan game.Command {
	if every <= 0 {
		return nil
	}
	commands := make(chan game.Command)
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				select {
				case commands <- game.Command{Kind: game.CmdFeed, AmountMB: amountMB}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return commands
}

// newLogger builds the JSON logger. Interactive sessions own the terminal,
// so logs go to a rotating file instead of stdout.
func newLogger(cfg *config.Config, headless bool) (*slog.Logger, func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return nil, nil, fmt.Errorf("log level %q: %w", cfg.Log.Level, err)
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	if headless || cfg.Log.File == "" {
		out := io.Writer(os.Stdout)
		if !headless {
			out = io.Discard
		}
		return slog.New(slog.NewJSONHandler(out, handlerOpts)), func() {}, nil
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.Log.File,
		MaxSize:    cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	}
	return slog.New(slog.NewJSONHandler(rotator, handlerOpts)), func() { rotator.Close() }, nil
}

func serveMetrics(addr string, metrics *telemetry.Metrics, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	return srv
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show host memory and how much the pet could eat",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Cfg()
			monitor := sysmon.New(
				sysmon.WithDefaults(cfg.System.FallbackTotalMB, cfg.System.FallbackFreeMB),
				sysmon.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
			)
			snap := monitor.Snapshot()
			health := sysmon.CheckHealth(snap)

			edible := max(snap.FreeMB-cfg.System.MinFreeRAMMB, 0)
			if cfg.Pet.MaxSizeMB > 0 {
				edible = min(edible, cfg.Pet.MaxSizeMB)
			}

			source := "live"
			if snap.Estimated {
				source = "estimated"
			}
			data := pterm.TableData{
				{"Metric", "Value"},
				{"Total RAM", fmt.Sprintf("%d MB", snap.TotalMB)},
				{"Used RAM", fmt.Sprintf("%d MB (%.1f%%)", snap.UsedMB, snap.UsagePercent())},
				{"Free RAM", fmt.Sprintf("%d MB", snap.FreeMB)},
				{"Reserved free", fmt.Sprintf("%d MB", cfg.System.MinFreeRAMMB)},
				{"Pet could eat", fmt.Sprintf("%d MB", edible)},
				{"Under pressure", fmt.Sprintf("%t", snap.UnderPressure())},
				{"Source", source},
			}
			if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
				return err
			}
			if w := health.Warning(); w != "" {
				pterm.Warning.Println(w)
			} else {
				pterm.Success.Println("System memory is healthy")
			}
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.Cfg().YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
