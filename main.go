package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/blobsim/config"
	"github.com/pthm-cable/blobsim/game"
	"github.com/pthm-cable/blobsim/telemetry"
	"github.com/pthm-cable/blobsim/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	championPath := flag.String("champion", "oldest.txt", "Champion weight dump written on extinction (empty = none)")
	reseedFrom := flag.String("reseed-from", "", "Seed the first world from a champion.json")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Seed:      rngSeed,
		Config:    cfg,
		LogStats:  *logStats,
		OutputDir: *outputDir,
	}
	if *championPath != "" {
		opts.ChampionSink = telemetry.TextSink{Path: *championPath}
	}
	if *reseedFrom != "" {
		champ, err := telemetry.LoadChampionFromFile(*reseedFrom)
		if err != nil {
			slog.Error("failed to load champion", "path", *reseedFrom, "error", err)
			os.Exit(1)
		}
		opts.Champion = champ
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *headless {
		err = runHeadless(ctx, opts, *maxTicks)
	} else {
		err = runGraphical(ctx, opts, *maxTicks)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

// runHeadless is a pure CPU simulation; no raylib window is opened.
func runHeadless(ctx context.Context, opts game.Options, maxTicks int) error {
	sim, err := game.New(opts)
	if err != nil {
		return err
	}
	defer sim.Close()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"size", sim.Size(),
		"max_ticks", maxTicks,
	)
	err = sim.Run(ctx, maxTicks)
	slog.Info("simulation stopped",
		"tick", sim.Tick(),
		"population", sim.Population(),
		"extinctions", sim.Extinctions(),
	)
	return err
}

func runGraphical(ctx context.Context, opts game.Options, maxTicks int) error {
	cfg := opts.Config
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Blob Simulation")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	sim, err := game.New(opts)
	if err != nil {
		return err
	}
	defer sim.Close()

	return ui.NewViewer(sim).Run(ctx, maxTicks)
}
