package telemetry

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/blobsim/neural"
)

func testPolicy(seed int64) *neural.Policy {
	return neural.NewPolicy(rand.New(rand.NewSource(seed)), 17, 7, []int{5, 4}, 1)
}

// ---------- HallOfFame ----------

func TestHallOfFame_TracksBothRecords(t *testing.T) {
	hof := NewHallOfFame()
	if hof.Oldest() != nil || hof.Fittest() != nil {
		t.Fatal("new hall not empty")
	}

	pa, pb := testPolicy(1), testPolicy(2)
	oldest, fittest := hof.Consider(1, Candidate{AgentID: 1, Actions: 10, Energy: 30, Policy: pa})
	if !oldest || !fittest {
		t.Fatal("first candidate should take both records")
	}

	oldest, fittest = hof.Consider(2, Candidate{AgentID: 2, Actions: 4, Energy: 80, Policy: pb})
	if oldest || !fittest {
		t.Errorf("got oldest=%v fittest=%v, want false/true", oldest, fittest)
	}
	if hof.Oldest().AgentID != 1 || hof.Fittest().AgentID != 2 {
		t.Errorf("holders = %d/%d, want 1/2", hof.Oldest().AgentID, hof.Fittest().AgentID)
	}

	// Ties do not replace the holder.
	if oldest, _ := hof.Consider(3, Candidate{AgentID: 3, Actions: 10, Energy: 1, Policy: pb}); oldest {
		t.Error("tie replaced the oldest record")
	}
}

func TestHallOfFame_HolderKeepsWeights(t *testing.T) {
	hof := NewHallOfFame()
	p := testPolicy(3)
	hof.Consider(1, Candidate{AgentID: 7, Actions: 1, Energy: 30, Policy: p})
	layers := hof.Oldest().Layers

	hof.Consider(2, Candidate{AgentID: 7, Actions: 2, Energy: 29, Policy: p})
	rec := hof.Oldest()
	if rec.Actions != 2 || rec.Tick != 2 {
		t.Errorf("record = %+v, want 2 actions at tick 2", rec)
	}
	if &rec.Layers[0] != &layers[0] {
		t.Error("weights copied again for the same holder")
	}
	if hof.Fittest().Energy != 30 {
		t.Errorf("fittest energy = %d, want the peak 30", hof.Fittest().Energy)
	}
}

func TestHallOfFame_RecordSurvivesPolicyChange(t *testing.T) {
	hof := NewHallOfFame()
	p := testPolicy(4)
	in := make([]float64, 17)
	in[0] = 0.5
	want := append([]float64(nil), p.Predict(in)...)

	hof.Consider(1, Candidate{AgentID: 1, Actions: 5, Policy: p})
	p.Mutate(rand.New(rand.NewSource(9)), 1, 5)

	restored, err := hof.Oldest().Policy()
	if err != nil {
		t.Fatal(err)
	}
	got := restored.Predict(in)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("restored output[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestHallOfFame_NilPolicyIgnored(t *testing.T) {
	hof := NewHallOfFame()
	if o, f := hof.Consider(1, Candidate{AgentID: 1, Actions: 5}); o || f {
		t.Error("candidate without policy recorded")
	}
}

func TestHallOfFame_JSONRoundTrip(t *testing.T) {
	hof := NewHallOfFame()
	hof.Consider(3, Candidate{AgentID: 5, ParentIDs: [2]uint32{1, 2}, Actions: 9, Energy: 31, Policy: testPolicy(5)})

	data, err := json.Marshal(hof)
	if err != nil {
		t.Fatal(err)
	}
	restored := NewHallOfFame()
	if err := json.Unmarshal(data, restored); err != nil {
		t.Fatal(err)
	}
	if restored.Oldest() == nil || restored.Oldest().AgentID != 5 || restored.Oldest().ParentIDs != [2]uint32{1, 2} {
		t.Errorf("restored oldest = %+v", restored.Oldest())
	}

	hof.Reset()
	if hof.Oldest() != nil || hof.Fittest() != nil {
		t.Error("reset kept records")
	}
}

// ---------- Sinks ----------

func TestSinks_ExportChampion(t *testing.T) {
	dir := t.TempDir()
	hof := NewHallOfFame()
	hof.Consider(1, Candidate{AgentID: 11, Actions: 3, Energy: 25, Policy: testPolicy(6)})
	champ := hof.Oldest()

	textPath := filepath.Join(dir, "oldest.txt")
	jsonPath := filepath.Join(dir, "champion.json")
	sink := MultiSink{TextSink{Path: textPath}, nil, JSONSink{Path: jsonPath}}
	if err := sink.Export(champ); err != nil {
		t.Fatal(err)
	}

	text, err := os.ReadFile(textPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(text), "# agent 11") || !bytes.Contains(text, []byte("# layer 2 (4x7)")) {
		t.Errorf("text dump missing header or last layer:\n%s", text)
	}

	loaded, err := LoadChampionFromFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.AgentID != 11 || len(loaded.Layers) != 3 {
		t.Errorf("loaded champion = %+v", loaded)
	}
	if _, err := loaded.Policy(); err != nil {
		t.Errorf("loaded champion policy: %v", err)
	}
}

func TestSinks_NilChampionIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oldest.txt")
	if err := (TextSink{Path: path}).Export(nil); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file written for nil champion")
	}
}

func TestSinks_ErrorsJoined(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing", "dir")
	champ := &Champion{AgentID: 1, Layers: testPolicy(7).Layers()}
	sink := MultiSink{TextSink{Path: filepath.Join(missing, "a.txt")}, JSONSink{Path: filepath.Join(missing, "b.json")}}
	err := sink.Export(champ)
	if err == nil {
		t.Fatal("expected errors writing into a missing directory")
	}
	if !strings.Contains(err.Error(), "a.txt") || !strings.Contains(err.Error(), "b.json") {
		t.Errorf("error = %v, want both paths", err)
	}
}

func TestLoadChampionFromFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte(`{"agent_id": 1}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadChampionFromFile(path); err == nil {
		t.Error("champion without layers accepted")
	}
	if _, err := LoadChampionFromFile(filepath.Join(dir, "none.json")); err == nil {
		t.Error("missing file accepted")
	}
}
