package telemetry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pthm-cable/blobsim/neural"
)

// Champion is a recorded agent with a copy of its policy weights.
type Champion struct {
	AgentID   uint32                `json:"agent_id"`
	ParentIDs [2]uint32             `json:"parent_ids"`
	Tick      int                   `json:"tick"` // Tick at which the record was last updated
	Actions   int                   `json:"actions"`
	Energy    int                   `json:"energy"`
	Lifetime  *LifetimeStats        `json:"lifetime,omitempty"`
	Layers    []neural.LayerWeights `json:"layers"`
}

// Policy rebuilds the champion's policy from its recorded weights.
func (c *Champion) Policy() (*neural.Policy, error) {
	p, err := neural.FromLayers(c.Layers)
	if err != nil {
		return nil, fmt.Errorf("champion %d: %w", c.AgentID, err)
	}
	return p, nil
}

// Candidate describes a live or dying agent offered to the hall of fame.
type Candidate struct {
	AgentID   uint32
	ParentIDs [2]uint32
	Actions   int // Length of its behaviour log
	Energy    int
	Policy    *neural.Policy
	Lifetime  *LifetimeStats
}

// HallOfFame keeps the longest-lived and fittest agents ever seen.
// Records persist across extinctions until Reset.
type HallOfFame struct {
	oldest  *Champion
	fittest *Champion
}

// NewHallOfFame creates an empty hall of fame.
func NewHallOfFame() *HallOfFame {
	return &HallOfFame{}
}

// Consider offers a candidate for both records and reports which ones it
// now holds. Weights are only copied when a different agent takes a record.
func (hof *HallOfFame) Consider(tick int, c Candidate) (oldest, fittest bool) {
	if c.Policy == nil {
		return false, false
	}
	hof.oldest, oldest = update(hof.oldest, tick, c, c.Actions, func(ch *Champion) int { return ch.Actions })
	hof.fittest, fittest = update(hof.fittest, tick, c, c.Energy, func(ch *Champion) int { return ch.Energy })
	return oldest, fittest
}

// update returns the record after offering c with the given score.
// A holder improving on its own record keeps its weights.
func update(cur *Champion, tick int, c Candidate, score int, scoreOf func(*Champion) int) (*Champion, bool) {
	if cur != nil && cur.AgentID == c.AgentID {
		if score > scoreOf(cur) {
			cur.Actions, cur.Energy, cur.Tick = c.Actions, c.Energy, tick
			cur.Lifetime = copyLifetime(c.Lifetime)
		}
		return cur, true
	}
	if cur != nil && score <= scoreOf(cur) {
		return cur, false
	}
	return &Champion{
		AgentID:   c.AgentID,
		ParentIDs: c.ParentIDs,
		Tick:      tick,
		Actions:   c.Actions,
		Energy:    c.Energy,
		Lifetime:  copyLifetime(c.Lifetime),
		Layers:    c.Policy.Layers(),
	}, true
}

func copyLifetime(s *LifetimeStats) *LifetimeStats {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

// Oldest returns the longest-lived record, or nil if none.
func (hof *HallOfFame) Oldest() *Champion { return hof.oldest }

// Fittest returns the highest-energy record, or nil if none.
func (hof *HallOfFame) Fittest() *Champion { return hof.fittest }

// Reset forgets both records.
func (hof *HallOfFame) Reset() {
	hof.oldest, hof.fittest = nil, nil
}

// hallOfFameJSON is the JSON-serializable representation of the hall.
type hallOfFameJSON struct {
	Oldest  *Champion `json:"oldest,omitempty"`
	Fittest *Champion `json:"fittest,omitempty"`
}

// MarshalJSON serializes both records.
func (hof *HallOfFame) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(hallOfFameJSON{Oldest: hof.oldest, Fittest: hof.fittest}, "", "  ")
}

// UnmarshalJSON restores both records.
func (hof *HallOfFame) UnmarshalJSON(data []byte) error {
	var raw hallOfFameJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	hof.oldest, hof.fittest = raw.Oldest, raw.Fittest
	return nil
}

// LoadChampionFromFile reads a champion written by JSONSink.
func LoadChampionFromFile(path string) (*Champion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading champion: %w", err)
	}
	var c Champion
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing champion JSON: %w", err)
	}
	if len(c.Layers) == 0 {
		return nil, fmt.Errorf("champion %s has no layers", path)
	}
	return &c, nil
}
