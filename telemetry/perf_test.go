package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseAgents)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseCleanup)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration")
	}
	if stats.PhaseAvg[PhaseAgents] <= 0 {
		t.Error("expected agents phase to be tracked")
	}
	if stats.PhaseAvg[PhaseCleanup] <= 0 {
		t.Error("expected cleanup phase to be tracked")
	}
	if stats.PhaseAvg[PhaseFood] != 0 {
		t.Errorf("food phase never ran but averaged %v", stats.PhaseAvg[PhaseFood])
	}
	if stats.MinTickDuration > stats.P95TickDuration || stats.P95TickDuration > stats.MaxTickDuration {
		t.Errorf("tick order min %v, p95 %v, max %v", stats.MinTickDuration, stats.P95TickDuration, stats.MaxTickDuration)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseAgents)
		pc.EndTick()
	}

	if pc.sampleCount != 5 {
		t.Errorf("sampleCount = %d, want window size 5", pc.sampleCount)
	}
	stats := pc.Stats()
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration after window filled")
	}
	if stats.TicksPerSecond <= 0 {
		t.Error("expected positive ticks per second")
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseFood)
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase(PhaseAgents)
		time.Sleep(2 * time.Millisecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	fast, slow := stats.PhasePct[PhaseFood], stats.PhasePct[PhaseAgents]
	if slow <= fast {
		t.Errorf("expected agents phase (%v%%) > food phase (%v%%)", slow, fast)
	}
	if total := fast + slow; total > 100.0001 {
		t.Errorf("phase percentages sum to %v", total)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	stats := NewPerfCollector(10).Stats()
	if stats.AvgTickDuration != 0 || stats.TicksPerSecond != 0 {
		t.Errorf("empty collector stats = %+v", stats)
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()
	if stats.FrameDuration < 15*time.Millisecond {
		t.Errorf("expected frame duration >= 15ms, got %v", stats.FrameDuration)
	}
	if stats.FPS <= 0 || stats.FPS > 70 {
		t.Errorf("FPS = %v with 16ms frames", stats.FPS)
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	var s PerfStats
	s.AvgTickDuration = 1500 * time.Microsecond
	s.PhasePct[PhaseAgents] = 80
	s.PhasePct[PhaseFood] = 5
	s.PhasePct[PhaseTelemetry] = 1

	rec := s.ToCSV(600)
	if rec.WindowEnd != 600 || rec.AvgTickUS != 1500 {
		t.Errorf("record = %+v", rec)
	}
	if rec.AgentsPct != 80 || rec.FoodPct != 5 || rec.TelemetryPct != 1 || rec.CleanupPct != 0 {
		t.Errorf("phase percentages = %+v", rec)
	}
}

func TestPerfCollector_SamplesAreIndependent(t *testing.T) {
	pc := NewPerfCollector(2)

	pc.StartTick()
	pc.StartPhase(PhaseAgents)
	pc.EndTick()

	pc.StartTick()
	pc.StartPhase(PhaseFood)
	pc.EndTick()

	if pc.samples[0].Phases[PhaseFood] != 0 {
		t.Error("second tick's phases leaked into the first sample")
	}
	if pc.samples[1].Phases[PhaseAgents] != 0 {
		t.Error("first tick's phases leaked into the second sample")
	}
}

func TestPhase_String(t *testing.T) {
	names := make(map[string]bool)
	for _, p := range Phases() {
		names[p.String()] = true
	}
	if len(names) != int(NumPhases) || names["unknown"] {
		t.Errorf("phase names = %v", names)
	}
	if NumPhases.String() != "unknown" {
		t.Errorf("NumPhases.String() = %q", NumPhases.String())
	}
}
