// Command stream runs a headless simulation and streams it over a websocket.
//
// Clients connect to /ws and receive a config message followed by frames.
// They may send {"type":"set","param":"spawn_rate","value":0.1} or
// {"type":"reset"}.
//
// Usage: go run ./cmd/stream -addr :8080
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pthm-cable/blobsim/config"
	"github.com/pthm-cable/blobsim/game"
)

func main() {
	addr := flag.String("addr", ":8080", "Listen address")
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	every := flag.Int("every", 1, "Ticks between frames")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	staticDir := flag.String("static", "", "Directory of static files served at / (empty = none)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(*addr, *configPath, *seed, *every, *maxTicks, *staticDir, *outputDir); err != nil {
		slog.Error("stream failed", "error", err)
		os.Exit(1)
	}
}

func run(addr, configPath string, seed int64, every, maxTicks int, staticDir, outputDir string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	sim, err := game.New(game.Options{Seed: seed, Config: cfg, OutputDir: outputDir})
	if err != nil {
		return err
	}
	defer sim.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := NewServer(sim, every)
	httpSrv := &http.Server{Handler: srv.Handler(staticDir)}
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http serve failed", "error", err)
			stop()
		}
	}()
	slog.Info("stream started", "addr", ln.Addr().String(), "seed", seed, "size", sim.Size(), "every", every)

	err = srv.Run(ctx, maxTicks)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if serr := httpSrv.Shutdown(shutdownCtx); serr != nil {
		slog.Warn("http shutdown failed", "error", serr)
	}
	slog.Info("stream stopped", "tick", sim.Tick(), "extinctions", sim.Extinctions())

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
