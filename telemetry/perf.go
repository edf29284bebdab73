package telemetry

import (
	"log/slog"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phase identifies one stage of the simulation step.
type Phase uint8

// Step phases in execution order.
const (
	PhaseAgents    Phase = iota // Perceive, decide and act for every agent
	PhaseFood                   // Periodic food replenishment
	PhaseCleanup                // Removal of dead entities
	PhaseAggregate              // Oldest/fittest pass and hall of fame
	PhaseTelemetry

	NumPhases
)

var phaseNames = [NumPhases]string{"agents", "food", "cleanup", "aggregate", "telemetry"}

func (p Phase) String() string {
	if p < NumPhases {
		return phaseNames[p]
	}
	return "unknown"
}

// Phases returns every phase in execution order.
func Phases() []Phase {
	out := make([]Phase, NumPhases)
	for i := range out {
		out[i] = Phase(i)
	}
	return out
}

const noPhase = NumPhases

// PerfSample holds timing data for a single tick.
type PerfSample struct {
	TickDuration time.Duration
	Phases       [NumPhases]time.Duration
}

// PerfCollector tracks step timing over a rolling window of ticks. Samples
// are fixed-size, so recording a tick does not allocate.
type PerfCollector struct {
	samples     []PerfSample
	writeIndex  int
	sampleCount int
	current     PerfSample
	tickStart   time.Time
	phaseStart  time.Time
	phase       Phase

	// Frame timing (for graphics mode)
	lastFrameTime time.Time
	frameDuration time.Duration

	scratch []float64
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		samples: make([]PerfSample, windowSize),
		phase:   noPhase,
	}
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.current = PerfSample{}
	p.phase = noPhase
}

// StartPhase ends the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := time.Now()
	p.endPhase(now)
	p.phaseStart = now
	p.phase = phase
}

func (p *PerfCollector) endPhase(now time.Time) {
	if p.phase < NumPhases {
		p.current.Phases[p.phase] += now.Sub(p.phaseStart)
	}
}

// EndTick finishes timing the current tick and records the sample.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.endPhase(now)
	p.phase = noPhase
	p.current.TickDuration = now.Sub(p.tickStart)

	p.samples[p.writeIndex] = p.current
	p.writeIndex = (p.writeIndex + 1) % len(p.samples)
	if p.sampleCount < len(p.samples) {
		p.sampleCount++
	}
}

// RecordFrame records frame timing for graphics mode.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrameTime.IsZero() {
		p.frameDuration = now.Sub(p.lastFrameTime)
	}
	p.lastFrameTime = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	// Tick timing
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	P95TickDuration time.Duration

	// Per-phase average duration and share of the average tick, in percent
	PhaseAvg [NumPhases]time.Duration
	PhasePct [NumPhases]float64

	TicksPerSecond float64

	// Frame timing (graphics mode)
	FrameDuration time.Duration
	FPS           float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	out := PerfStats{FrameDuration: p.frameDuration}
	if p.frameDuration > 0 {
		out.FPS = float64(time.Second) / float64(p.frameDuration)
	}
	if p.sampleCount == 0 {
		return out
	}

	p.scratch = p.scratch[:0]
	var phaseSum [NumPhases]time.Duration
	for _, s := range p.samples[:p.sampleCount] {
		p.scratch = append(p.scratch, float64(s.TickDuration))
		for i, d := range s.Phases {
			phaseSum[i] += d
		}
	}
	slices.Sort(p.scratch)

	n := time.Duration(p.sampleCount)
	out.AvgTickDuration = time.Duration(stat.Mean(p.scratch, nil))
	out.MinTickDuration = time.Duration(p.scratch[0])
	out.MaxTickDuration = time.Duration(p.scratch[len(p.scratch)-1])
	out.P95TickDuration = time.Duration(stat.Quantile(0.95, stat.Empirical, p.scratch, nil))

	for i, sum := range phaseSum {
		out.PhaseAvg[i] = sum / n
		if out.AvgTickDuration > 0 {
			out.PhasePct[i] = float64(out.PhaseAvg[i]) / float64(out.AvgTickDuration) * 100
		}
	}
	if out.AvgTickDuration > 0 {
		out.TicksPerSecond = float64(time.Second) / float64(out.AvgTickDuration)
	}
	return out
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"p95_tick_us", s.P95TickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for _, phase := range Phases() {
		if pct := s.PhasePct[phase]; pct > 0.1 {
			attrs = append(attrs, phase.String()+"_pct", int(pct*10)/10.0)
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Int64("p95_tick_us", s.P95TickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, phase := range Phases() {
		attrs = append(attrs, slog.Float64(phase.String()+"_pct", s.PhasePct[phase]))
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd    int     `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	P95TickUS    int64   `csv:"p95_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	FPS          float64 `csv:"fps"`
	AgentsPct    float64 `csv:"agents_pct"`
	FoodPct      float64 `csv:"food_pct"`
	CleanupPct   float64 `csv:"cleanup_pct"`
	AggregatePct float64 `csv:"aggregate_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		MinTickUS:    s.MinTickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		P95TickUS:    s.P95TickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		FPS:          s.FPS,
		AgentsPct:    s.PhasePct[PhaseAgents],
		FoodPct:      s.PhasePct[PhaseFood],
		CleanupPct:   s.PhasePct[PhaseCleanup],
		AggregatePct: s.PhasePct[PhaseAggregate],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
