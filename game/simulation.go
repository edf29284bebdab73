// Package game drives the simulation tick by tick and exposes the read and
// write surface used by the viewer, the stream server and the tuner.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/blobsim/config"
	"github.com/pthm-cable/blobsim/neural"
	"github.com/pthm-cable/blobsim/systems"
	"github.com/pthm-cable/blobsim/telemetry"
	"github.com/pthm-cable/blobsim/world"
)

// Options configures a simulation.
type Options struct {
	Seed      int64
	Config    *config.Config // nil = embedded defaults
	LogStats  bool
	OutputDir string // empty = no CSV output

	// ChampionSink receives the longest-lived agent on extinction. The
	// output directory's champion.json is added when OutputDir is set.
	ChampionSink telemetry.ChampionSink

	// Champion, if set, seeds the initial world with mutated copies of it.
	Champion *telemetry.Champion

	StatsCallback func(telemetry.WindowStats)
}

// Simulation holds the complete simulation state. It is not safe for
// concurrent use: callers serialize Step and the setters.
type Simulation struct {
	cfg    *config.Config
	rng    *rand.Rand
	seed   int64
	world  *world.World
	engine *systems.Engine

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	lifetimeTracker  *telemetry.LifetimeTracker
	hallOfFame       *telemetry.HallOfFame
	bookmarkDetector *telemetry.BookmarkDetector
	history          *telemetry.History
	outputManager    *telemetry.OutputManager
	championSink     telemetry.ChampionSink
	statsCallback    func(telemetry.WindowStats)
	logStats         bool

	// State
	snapshot       []ecs.Entity
	energies       []float64
	agg            world.Aggregate
	extinctions    int
	lastExtinction int
	targetTickRate int
}

// New creates a simulation. The config is cloned, so the run's setters never
// touch the caller's copy.
func New(opts Options) (*Simulation, error) {
	cfg := opts.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Load(""); err != nil {
			return nil, fmt.Errorf("loading defaults: %w", err)
		}
	}
	cfg = cfg.Clone()

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output: %w", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config: %w", err)
	}

	sink := opts.ChampionSink
	if om != nil {
		sink = telemetry.MultiSink{sink, om.ChampionSink()}
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	s := &Simulation{
		cfg:              cfg,
		rng:              rng,
		seed:             opts.Seed,
		world:            world.New(cfg, rng),
		collector:        telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		lifetimeTracker:  telemetry.NewLifetimeTracker(),
		hallOfFame:       telemetry.NewHallOfFame(),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		history:          telemetry.NewHistory(cfg.Telemetry.HistorySize),
		outputManager:    om,
		championSink:     sink,
		statsCallback:    opts.StatsCallback,
		logStats:         opts.LogStats,
		lastExtinction:   -1,
		targetTickRate:   cfg.Screen.TargetFPS,
	}
	s.engine = systems.NewEngine(s.world)

	if opts.Champion != nil {
		if err := s.reseedFrom(opts.Champion); err != nil {
			om.Close()
			return nil, err
		}
	}
	s.registerFounders()
	s.agg = s.world.Aggregate()
	s.history.Push(s.world.LiveCount())

	return s, nil
}

// Step runs one tick.
func (s *Simulation) Step() {
	tick := s.world.Turn()
	s.perfCollector.StartTick()

	// 1. Every agent alive at the start of the tick acts once.
	s.perfCollector.StartPhase(telemetry.PhaseAgents)
	s.snapshot = s.world.Snapshot(s.snapshot[:0])
	for _, e := range s.snapshot {
		if !s.world.Alive(e) {
			continue
		}
		id := s.world.Organism(e).ID
		s.record(tick, id, s.engine.Step(e))
	}

	// 2. Periodic food replenishment, never on the first tick
	s.perfCollector.StartPhase(telemetry.PhaseFood)
	if tick > 0 && tick%s.cfg.World.FoodInterval == 0 {
		s.world.ResetFood(s.cfg.World.ResetFoodRate)
	}

	// 3. Remove the dead
	s.perfCollector.StartPhase(telemetry.PhaseCleanup)
	s.world.CleanupDead(func(e ecs.Entity) { s.retire(tick, e) })

	// 4. Aggregates and records
	s.perfCollector.StartPhase(telemetry.PhaseAggregate)
	s.agg = s.world.Aggregate()
	if s.agg.Count > 0 {
		s.consider(tick, s.agg.Oldest)
		if s.agg.Fittest != s.agg.Oldest {
			s.consider(tick, s.agg.Fittest)
		}
	}
	s.history.Push(s.world.LiveCount())
	if s.world.LiveCount() == 0 {
		s.handleExtinction(tick)
	}

	s.world.AdvanceTurn()

	s.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	s.flushTelemetry()
	s.perfCollector.EndTick()
}

// Run steps until ctx is cancelled or maxTicks ticks have run (0 = no cap).
// It returns the context's error when cancelled.
func (s *Simulation) Run(ctx context.Context, maxTicks int) error {
	for n := 0; maxTicks <= 0 || n < maxTicks; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.Step()
	}
	return nil
}

// record feeds one agent's outcome into the collectors.
func (s *Simulation) record(tick int, id uint32, out systems.Outcome) {
	if out.Skipped {
		return
	}
	s.collector.RecordAction(out.Action, out.OK)
	if out.Ate > 0 {
		s.collector.RecordMeal(out.Ate)
		s.lifetimeTracker.RecordMeal(id, out.Ate)
	}
	if out.Killed {
		s.collector.RecordKill()
		s.lifetimeTracker.RecordKill(id)
	}
	if out.Born && s.world.Alive(out.Child) {
		s.collector.RecordBirth()
		child := s.world.Organism(out.Child)
		s.lifetimeTracker.RegisterChild(child.ID, tick, s.world.Energy(out.Child).Value, child.ParentIDs[0], child.ParentIDs[1])
	}
}

// retire is called for each dead agent before its entity is removed.
func (s *Simulation) retire(tick int, e ecs.Entity) {
	s.collector.RecordDeath()
	s.consider(tick, e)
	s.lifetimeTracker.Remove(s.world.Organism(e).ID, tick)
}

// consider offers an agent to the hall of fame.
func (s *Simulation) consider(tick int, e ecs.Entity) {
	_, energy, org, mem := s.world.Components(e)
	s.hallOfFame.Consider(tick, telemetry.Candidate{
		AgentID:   org.ID,
		ParentIDs: org.ParentIDs,
		Actions:   len(mem.Behaviour),
		Energy:    energy.Value,
		Policy:    s.world.Policy(org.ID),
		Lifetime:  s.lifetimeTracker.Get(org.ID),
	})
}

// registerFounders starts lifetime tracking for agents the tracker has not seen.
func (s *Simulation) registerFounders() {
	for _, e := range s.world.Snapshot(nil) {
		org := s.world.Organism(e)
		if s.lifetimeTracker.Get(org.ID) == nil {
			s.lifetimeTracker.Register(org.ID, s.world.Turn(), s.world.Energy(e).Value)
		}
	}
}

// handleExtinction exports the champion and resets the world.
func (s *Simulation) handleExtinction(tick int) {
	s.extinctions++
	s.lastExtinction = tick
	s.collector.RecordExtinction()

	champ := s.hallOfFame.Oldest()
	attrs := []any{"tick", tick, "extinctions", s.extinctions}
	if champ != nil {
		attrs = append(attrs, "champion_id", champ.AgentID, "champion_actions", champ.Actions)
		if s.championSink != nil {
			if err := s.championSink.Export(champ); err != nil {
				slog.Warn("champion export failed", "tick", tick, "error", err)
			}
		}
	}
	slog.Info("extinction", attrs...)

	s.lifetimeTracker.Reset()
	s.world.ResetMap()
	if s.cfg.Extinction.Reseed == config.ReseedChampion && champ != nil {
		if err := s.reseedFrom(champ); err != nil {
			slog.Warn("champion reseed failed", "tick", tick, "error", err)
		}
	}
	s.registerFounders()
	s.agg = s.world.Aggregate()

	if s.outputManager != nil {
		if err := s.outputManager.WriteHallOfFame(s.hallOfFame); err != nil {
			slog.Warn("failed to write hall of fame", "error", err)
		}
	}
}

// reseedFrom adds mutated copies of a champion to the world: one per cell
// drawn at world.reset_spawn_rate, topped up to extinction.reseed_count
// with random free cells.
func (s *Simulation) reseedFrom(champ *telemetry.Champion) error {
	base, err := champ.Policy()
	if err != nil {
		return fmt.Errorf("reseeding: %w", err)
	}
	if base.InputSize() != s.cfg.Derived.NumInputs || base.OutputSize() != s.cfg.Derived.NumOutputs {
		return fmt.Errorf("reseeding: champion %d has shape %d->%d, want %d->%d",
			champ.AgentID, base.InputSize(), base.OutputSize(), s.cfg.Derived.NumInputs, s.cfg.Derived.NumOutputs)
	}

	mut := s.cfg.Mutation
	spawned := s.world.ResetPopulation(func(rng *rand.Rand) *neural.Policy {
		p := base.Clone()
		p.Mutate(rng, mut.Rate, mut.Power)
		return p
	})

	size := s.world.Size()
	for attempts := 0; spawned < s.cfg.Extinction.ReseedCount && attempts < 100*s.cfg.Extinction.ReseedCount; attempts++ {
		x, y := s.rng.Intn(size), s.rng.Intn(size)
		if _, taken := s.world.AgentAt(x, y); taken {
			continue
		}
		p := base.Clone()
		p.Mutate(s.rng, mut.Rate, mut.Power)
		s.world.SpawnAgent(x, y, s.cfg.Energy.Base, p)
		spawned++
	}
	s.world.ClearScanCache()

	slog.Info("reseeded from champion", "champion_id", champ.AgentID, "spawned", spawned)
	return nil
}

// Close flushes and closes run output.
func (s *Simulation) Close() error {
	if s.outputManager == nil {
		return nil
	}
	if err := s.outputManager.WriteHallOfFame(s.hallOfFame); err != nil {
		s.outputManager.Close()
		return err
	}
	return s.outputManager.Close()
}
