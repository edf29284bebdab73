package telemetry

import (
	"log/slog"
	"math"
	"testing"

	"github.com/pthm-cable/blobsim/components"
)

func TestComputeEnergyStats(t *testing.T) {
	values := []float64{7, 3, 1, 10, 2, 9, 4, 8, 5, 6}
	es := ComputeEnergyStats(values)

	if es.Min != 1 || es.Max != 10 {
		t.Errorf("min/max = %v/%v, want 1/10", es.Min, es.Max)
	}
	if math.Abs(es.Mean-5.5) > 1e-9 {
		t.Errorf("mean = %v, want 5.5", es.Mean)
	}
	// Sample standard deviation of 1..10
	if math.Abs(es.Std-3.02765) > 1e-4 {
		t.Errorf("std = %v, want ~3.0277", es.Std)
	}
	if es.P10 != 1 || es.P90 != 9 {
		t.Errorf("p10/p90 = %v/%v, want 1/9", es.P10, es.P90)
	}
	if values[0] != 7 {
		t.Error("input slice was reordered")
	}
}

func TestComputeEnergyStats_Median(t *testing.T) {
	es := ComputeEnergyStats([]float64{5, 1, 4, 2, 3})
	if es.P50 != 3 {
		t.Errorf("p50 = %v, want 3", es.P50)
	}
}

func TestComputeEnergyStats_Degenerate(t *testing.T) {
	if es := ComputeEnergyStats(nil); es != (EnergyStats{}) {
		t.Errorf("empty input = %+v, want zeros", es)
	}

	es := ComputeEnergyStats([]float64{42})
	if es.Mean != 42 || es.Std != 0 || es.P10 != 42 || es.P90 != 42 {
		t.Errorf("single value = %+v", es)
	}
}

// ---------- Collector ----------

func TestCollector_Flush(t *testing.T) {
	c := NewCollector(10)
	c.RecordAction(components.ActionEat, true)
	c.RecordAction(components.ActionMoveUp, true)
	c.RecordAction(components.ActionMoveUp, false)
	c.RecordAction(components.ActionAttack, false)
	c.RecordMeal(6)
	c.RecordBirth()
	c.RecordDeath()
	c.RecordDeath()
	c.RecordKill()

	if c.ShouldFlush(9) {
		t.Error("flushed before the window elapsed")
	}
	if !c.ShouldFlush(10) {
		t.Error("window not flushed at its end")
	}

	ws := c.Flush(10, 3, 12, 40, []float64{10, 20, 30})
	if ws.WindowStartTick != 0 || ws.WindowEndTick != 10 {
		t.Errorf("window = %d..%d", ws.WindowStartTick, ws.WindowEndTick)
	}
	if ws.Population != 3 || ws.Food != 12 || ws.OldestActions != 40 {
		t.Errorf("snapshot fields = %+v", ws)
	}
	if ws.Births != 1 || ws.Deaths != 2 || ws.Kills != 1 || ws.Meals != 1 || ws.FoodEaten != 6 {
		t.Errorf("event counters = %+v", ws)
	}
	if ws.Moves != 1 || ws.Failed != 2 || ws.FailRate != 0.5 {
		t.Errorf("moves/failed/rate = %d/%d/%v", ws.Moves, ws.Failed, ws.FailRate)
	}
	if ws.ChoseUp != 2 || ws.ChoseEat != 1 || ws.ChoseAttack != 1 || ws.ChoseReproduce != 0 {
		t.Errorf("choices = %+v", ws)
	}
	if ws.EnergyMean != 20 {
		t.Errorf("energy mean = %v, want 20", ws.EnergyMean)
	}

	next := c.Flush(20, 0, 0, 0, nil)
	if next.WindowStartTick != 10 || next.Births != 0 || next.ChoseUp != 0 || next.FailRate != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
	if c.WindowTicks() != 10 {
		t.Errorf("window ticks = %d", c.WindowTicks())
	}
}

func TestCollector_IgnoresNoAction(t *testing.T) {
	c := NewCollector(1)
	c.RecordAction(components.ActionNone, false)
	ws := c.Flush(1, 0, 0, 0, nil)
	if ws.Failed != 1 || ws.FailRate != 0 {
		t.Errorf("failed/rate = %d/%v", ws.Failed, ws.FailRate)
	}
}

func TestWindowStats_LogValue(t *testing.T) {
	v := WindowStats{WindowEndTick: 5, Population: 9}.LogValue()
	if v.Kind() != slog.KindGroup {
		t.Fatalf("kind = %v, want group", v.Kind())
	}
	found := false
	for _, a := range v.Group() {
		if a.Key == "population" && a.Value.Int64() == 9 {
			found = true
		}
	}
	if !found {
		t.Error("population attribute missing")
	}
}
