package game

import (
	"log/slog"

	"github.com/pthm-cable/blobsim/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (s *Simulation) flushTelemetry() {
	tick := s.world.Turn()
	if !s.collector.ShouldFlush(tick) {
		return
	}

	energies := s.sampleEnergies()
	stats := s.collector.Flush(tick, s.world.LiveCount(), s.world.FoodCount(), s.agg.OldestActions, energies)
	perfStats := s.perfCollector.Stats()

	// Call stats callback if provided
	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if s.outputManager != nil {
		if err := s.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := s.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	for _, bm := range s.bookmarkDetector.Check(stats) {
		if s.logStats {
			bm.LogBookmark()
		}
		if s.outputManager != nil {
			if err := s.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
	}
}

// sampleEnergies collects live energies and updates lifetime peaks.
func (s *Simulation) sampleEnergies() []float64 {
	s.energies = s.energies[:0]
	s.snapshot = s.world.Snapshot(s.snapshot[:0])
	for _, e := range s.snapshot {
		v := s.world.Energy(e).Value
		s.energies = append(s.energies, float64(v))
		s.lifetimeTracker.UpdateEnergy(s.world.Organism(e).ID, v)
	}
	return s.energies
}

// EnergyStats returns the distribution of live agents' energies.
func (s *Simulation) EnergyStats() telemetry.EnergyStats {
	return telemetry.ComputeEnergyStats(s.sampleEnergies())
}

// HallOfFame returns the run's records.
func (s *Simulation) HallOfFame() *telemetry.HallOfFame {
	return s.hallOfFame
}

// Lifetime returns the lifetime stats of a live agent, or nil.
func (s *Simulation) Lifetime(id uint32) *telemetry.LifetimeStats {
	return s.lifetimeTracker.Get(id)
}

// Perf returns the rolling performance statistics.
func (s *Simulation) Perf() telemetry.PerfStats {
	return s.perfCollector.Stats()
}

// RecordFrame records viewer frame timing.
func (s *Simulation) RecordFrame() {
	s.perfCollector.RecordFrame()
}
