package telemetry

import (
	"slices"
	"testing"
)

func TestHistory_Bounded(t *testing.T) {
	h := NewHistory(3)
	if h.Len() != 0 || h.Max() != 0 || len(h.Values()) != 0 {
		t.Fatal("new history not empty")
	}

	for _, v := range []int{5, 9, 2, 7, 1} {
		h.Push(v)
	}
	if got := h.Values(); !slices.Equal(got, []int{2, 7, 1}) {
		t.Errorf("values = %v, want [2 7 1]", got)
	}
	if h.Len() != 3 || h.Cap() != 3 {
		t.Errorf("len/cap = %d/%d", h.Len(), h.Cap())
	}
	if h.Max() != 7 {
		t.Errorf("max = %d, want 7", h.Max())
	}

	h.Reset()
	h.Push(4)
	if got := h.Values(); !slices.Equal(got, []int{4}) {
		t.Errorf("after reset = %v", got)
	}
}

func TestHistory_DefaultSize(t *testing.T) {
	if h := NewHistory(0); h.Cap() != 50 {
		t.Errorf("cap = %d, want 50", h.Cap())
	}
}

// ---------- Lifetime ----------

func TestLifetimeTracker(t *testing.T) {
	lt := NewLifetimeTracker()
	lt.Register(1, 0, 30)
	lt.Register(2, 0, 30)
	lt.RegisterChild(3, 5, 24, 1, 2)
	lt.RegisterChild(4, 9, 20, 3, 1)

	if s := lt.Get(3); s.Generation != 1 || s.ParentIDs != [2]uint32{1, 2} || s.BirthTick != 5 {
		t.Errorf("child stats = %+v", s)
	}
	if lt.Get(4).Generation != 2 || lt.MaxGeneration() != 2 {
		t.Errorf("grandchild generation = %d", lt.Get(4).Generation)
	}
	if lt.Get(1).Children != 2 || lt.Get(2).Children != 1 {
		t.Errorf("children = %d/%d", lt.Get(1).Children, lt.Get(2).Children)
	}

	lt.RecordMeal(1, 5)
	lt.RecordMeal(1, 3)
	lt.RecordKill(1)
	lt.UpdateEnergy(1, 45)
	lt.UpdateEnergy(1, 12)
	lt.RecordKill(99) // unknown ids are ignored

	s := lt.Remove(1, 40)
	if s.Meals != 2 || s.FoodEaten != 8 || s.Kills != 1 || s.PeakEnergy != 45 || s.DeathTick != 40 {
		t.Errorf("removed stats = %+v", s)
	}
	if lt.Get(1) != nil || lt.Count() != 3 {
		t.Error("stats not removed")
	}

	lt.Reset()
	if lt.Count() != 0 {
		t.Error("reset kept stats")
	}
}
