package game

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/pthm-cable/blobsim/components"
	"github.com/pthm-cable/blobsim/config"
	"github.com/pthm-cable/blobsim/neural"
	"github.com/pthm-cable/blobsim/telemetry"
)

func testConfig(t *testing.T, size int) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	cfg.World.Size = size
	cfg.World.SpawnRate = 0.5
	cfg.World.FoodRate = 0.5
	return cfg
}

func newSim(t *testing.T, opts Options) *Simulation {
	t.Helper()
	s, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// starvingConfig yields a population that dies out within a few ticks.
func starvingConfig(t *testing.T) *config.Config {
	cfg := testConfig(t, 10)
	cfg.World.SpawnRate = 0.4
	cfg.World.FoodRate = 0
	cfg.World.ResetFoodRate = 0
	cfg.Energy.Base = 3
	return cfg
}

type recordingSink struct {
	got []*telemetry.Champion
}

func (r *recordingSink) Export(c *telemetry.Champion) error {
	r.got = append(r.got, c)
	return nil
}

// ---------- Tick loop ----------

func TestStep_InvariantsHoldOverManyTicks(t *testing.T) {
	s := newSim(t, Options{Seed: 3, Config: testConfig(t, 30)})

	for i := 0; i < 150; i++ {
		s.Step()
		if err := s.World().CheckInvariants(); err != nil {
			t.Fatalf("tick %d: %v", s.Tick(), err)
		}
		if got := len(s.Agents(nil)); got != s.Population() {
			t.Fatalf("tick %d: %d views for population %d", s.Tick(), got, s.Population())
		}
	}
	if s.Tick() != 150 {
		t.Errorf("tick = %d, want 150", s.Tick())
	}
}

func TestStep_DeterministicForSeed(t *testing.T) {
	run := func() []int {
		s := newSim(t, Options{Seed: 11, Config: testConfig(t, 20)})
		for i := 0; i < 40; i++ {
			s.Step()
		}
		return s.PopulationHistory()
	}

	a, b := run(), run()
	if !slices.Equal(a, b) {
		t.Errorf("histories differ:\n%v\n%v", a, b)
	}
}

func TestStep_AgentsActOncePerTick(t *testing.T) {
	cfg := testConfig(t, 20)
	cfg.Reproduction.MinEnergy = 1 << 30 // no births
	s := newSim(t, Options{Seed: 5, Config: cfg})

	s.Step()
	for _, v := range s.Agents(nil) {
		if len(v.Behaviour) != 1 {
			t.Fatalf("agent %d has %d actions after one tick", v.ID, len(v.Behaviour))
		}
		if v.LastAction != v.Behaviour[0] {
			t.Errorf("agent %d last action %v, log %v", v.ID, v.LastAction, v.Behaviour)
		}
	}
}

func TestStep_NoFoodReplenishmentOnFirstTick(t *testing.T) {
	cfg := testConfig(t, 10)
	cfg.World.FoodRate = 0
	cfg.World.ResetFoodRate = 1
	cfg.World.FoodInterval = 4
	cfg.Energy.Base = 1000
	s := newSim(t, Options{Seed: 5, Config: cfg})
	if s.Population() == 0 || s.FoodCount() != 0 {
		t.Fatalf("start: population %d, food %d", s.Population(), s.FoodCount())
	}

	s.Step()
	if s.FoodCount() != 0 {
		t.Fatalf("food replenished on tick 0: %d items", s.FoodCount())
	}
	for s.Tick() <= cfg.World.FoodInterval {
		s.Step()
	}
	if s.FoodCount() == 0 {
		t.Errorf("no food after tick %d", cfg.World.FoodInterval)
	}
}

func TestRun_TickCapAndCancel(t *testing.T) {
	s := newSim(t, Options{Seed: 1, Config: testConfig(t, 10)})

	if err := s.Run(context.Background(), 5); err != nil {
		t.Fatal(err)
	}
	if s.Tick() != 5 {
		t.Errorf("tick = %d, want 5", s.Tick())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if s.Tick() != 5 {
		t.Errorf("cancelled run advanced to tick %d", s.Tick())
	}
}

// ---------- Extinction ----------

func TestExtinction_ExportsChampionAndResets(t *testing.T) {
	sink := &recordingSink{}
	s := newSim(t, Options{Seed: 2, Config: starvingConfig(t), ChampionSink: sink})
	if s.Population() == 0 {
		t.Fatal("empty initial world")
	}

	for i := 0; i < 10 && s.Extinctions() == 0; i++ {
		s.Step()
	}
	if s.Extinctions() != 1 {
		t.Fatalf("extinctions = %d, want 1", s.Extinctions())
	}
	if len(sink.got) != 1 || sink.got[0] == nil || len(sink.got[0].Layers) == 0 {
		t.Fatalf("champion not exported: %+v", sink.got)
	}
	if s.LastExtinction() != s.Tick()-1 {
		t.Errorf("last extinction = %d, tick = %d", s.LastExtinction(), s.Tick())
	}
	if s.Population() == 0 {
		t.Error("world not repopulated after extinction")
	}
	if err := s.World().CheckInvariants(); err != nil {
		t.Error(err)
	}
	if h := s.PopulationHistory(); h[len(h)-1] != 0 {
		t.Errorf("history %v does not record the extinction", h)
	}
}

func TestExtinction_ChampionReseed(t *testing.T) {
	cfg := starvingConfig(t)
	cfg.Extinction.Reseed = config.ReseedChampion
	cfg.Extinction.ReseedCount = 5
	cfg.World.ResetSpawnRate = 0
	s := newSim(t, Options{Seed: 4, Config: cfg})

	// Fresh spawning is off from now on; only champion copies appear.
	if err := s.SetSpawnRate(0); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10 && s.Extinctions() == 0; i++ {
		s.Step()
	}
	if s.Extinctions() != 1 {
		t.Fatalf("extinctions = %d, want 1", s.Extinctions())
	}
	if s.Population() != 5 {
		t.Errorf("population after reseed = %d, want 5", s.Population())
	}
	for _, v := range s.Agents(nil) {
		if p := s.Policy(v.ID); p == nil || p.InputSize() != cfg.Derived.NumInputs {
			t.Errorf("agent %d has no usable policy", v.ID)
		}
	}
}

func TestNew_SeedsFromChampion(t *testing.T) {
	cfg := testConfig(t, 15)
	cfg.World.SpawnRate = 0
	cfg.World.ResetSpawnRate = 0
	cfg.Extinction.ReseedCount = 4

	p := neural.NewPolicy(rand.New(rand.NewSource(1)), cfg.Derived.NumInputs, cfg.Derived.NumOutputs, cfg.Neural.HiddenLayers, 1)
	s := newSim(t, Options{Seed: 6, Config: cfg, Champion: &telemetry.Champion{AgentID: 9, Layers: p.Layers()}})
	if s.Population() != 4 {
		t.Errorf("population = %d, want 4", s.Population())
	}

	bad := neural.NewPolicy(rand.New(rand.NewSource(1)), 3, 2, []int{2}, 1)
	if _, err := New(Options{Config: cfg, Champion: &telemetry.Champion{AgentID: 1, Layers: bad.Layers()}}); err == nil {
		t.Error("champion with the wrong shape accepted")
	}
}

// ---------- Surface ----------

func TestNew_ClonesConfig(t *testing.T) {
	cfg := testConfig(t, 10)
	s := newSim(t, Options{Config: cfg})

	if err := s.SetMutationRate(0.7); err != nil {
		t.Fatal(err)
	}
	if cfg.Mutation.Rate == 0.7 {
		t.Error("setter changed the caller's config")
	}
	if s.Config().Mutation.Rate != 0.7 {
		t.Error("setter did not change the run's config")
	}
}

func TestSet_Tunables(t *testing.T) {
	s := newSim(t, Options{Seed: 1, Config: testConfig(t, 10)})

	tests := []struct {
		name    string
		value   float64
		wantErr bool
	}{
		{ParamMutationRate, 0.3, false},
		{ParamMutationRate, 1.5, true},
		{ParamFoodRate, 0.9, false},
		{ParamResetFoodRate, -0.1, true},
		{ParamResetFoodRate, 0.01, false},
		{ParamSpawnRate, 0.25, false},
		{ParamScanRange, 4, false},
		{ParamScanRange, 0, true},
		{ParamBaseEnergy, 40, false},
		{ParamBaseEnergy, 0, true},
		{ParamTickRate, 120, false},
		{"gravity", 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, _ := s.Get(tt.name)
			err := s.Set(tt.name, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set(%s, %v) err = %v, wantErr %v", tt.name, tt.value, err, tt.wantErr)
			}
			got, _ := s.Get(tt.name)
			if tt.wantErr && got != before {
				t.Errorf("rejected value changed %s to %v", tt.name, got)
			}
			if !tt.wantErr && got != tt.value {
				t.Errorf("%s = %v, want %v", tt.name, got, tt.value)
			}
		})
	}
	if s.TargetTickRate() != 120 {
		t.Errorf("tick rate = %d", s.TargetTickRate())
	}
}

func TestSetScanRange_InvalidatesCache(t *testing.T) {
	s := newSim(t, Options{Config: testConfig(t, 10)})
	gen := s.World().CacheGen()
	if err := s.SetScanRange(3); err != nil {
		t.Fatal(err)
	}
	if s.World().CacheGen() == gen {
		t.Error("scan cache not invalidated")
	}
}

func TestResize_ResetsWorld(t *testing.T) {
	s := newSim(t, Options{Seed: 8, Config: testConfig(t, 10)})
	s.Step()

	if err := s.Resize(25); err != nil {
		t.Fatal(err)
	}
	if s.Size() != 25 {
		t.Errorf("size = %d, want 25", s.Size())
	}
	if err := s.World().CheckInvariants(); err != nil {
		t.Error(err)
	}
	for _, v := range s.Agents(nil) {
		if v.LastAction != components.ActionNone || len(v.Behaviour) != 0 {
			t.Fatalf("agent %d survived the reset", v.ID)
		}
	}
	if err := s.Resize(0); err == nil {
		t.Error("zero size accepted")
	}
}

func TestAgentAt_AndHistogram(t *testing.T) {
	s := newSim(t, Options{Seed: 9, Config: testConfig(t, 12)})

	views := s.Agents(nil)
	if len(views) == 0 {
		t.Fatal("no agents")
	}
	v, ok := s.AgentAt(views[0].X, views[0].Y)
	if !ok || v.ID != views[0].ID {
		t.Errorf("AgentAt = %+v, %v", v, ok)
	}
	if _, ok := s.AgentAt(-1, 0); ok {
		t.Error("agent found out of bounds")
	}

	// Before any tick nobody has acted.
	h := s.ActionHistogram()
	if h[components.NumActions] != s.Population() {
		t.Errorf("histogram = %v, want all %d in the none slot", h, s.Population())
	}

	s.Step()
	h = s.ActionHistogram()
	var total int
	for _, n := range h {
		total += n
	}
	if total != s.Population() {
		t.Errorf("histogram total %d, population %d", total, s.Population())
	}
}

// ---------- Telemetry ----------

func TestTelemetry_WindowsAndOutput(t *testing.T) {
	cfg := testConfig(t, 12)
	cfg.Telemetry.StatsWindow = 5
	dir := filepath.Join(t.TempDir(), "run")

	var windows []telemetry.WindowStats
	s, err := New(Options{Seed: 10, Config: cfg, OutputDir: dir, StatsCallback: func(ws telemetry.WindowStats) {
		windows = append(windows, ws)
	}})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		s.Step()
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	if len(windows) != 2 {
		t.Fatalf("windows = %d, want 2", len(windows))
	}
	if windows[0].WindowEndTick != 5 || windows[1].WindowEndTick != 10 {
		t.Errorf("window ends = %d, %d", windows[0].WindowEndTick, windows[1].WindowEndTick)
	}
	if windows[1].Population != s.Population() {
		t.Errorf("window population %d, sim %d", windows[1].Population, s.Population())
	}
	for _, name := range []string{"config.yaml", "telemetry.csv", "perf.csv", "bookmarks.csv", "hall_of_fame.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	if s.HallOfFame().Oldest() == nil {
		t.Error("no champion recorded")
	}
	if es := s.EnergyStats(); s.Population() > 0 && es.Max <= 0 {
		t.Errorf("energy stats = %+v", es)
	}
}

func BenchmarkStep(b *testing.B) {
	cfg, err := config.Load("")
	if err != nil {
		b.Fatal(err)
	}
	cfg.World.Size = 100
	s, err := New(Options{Seed: 1, Config: cfg})
	if err != nil {
		b.Fatal(err)
	}
	defer s.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Step()
	}
}
