package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ChampionSink receives the champion exported on extinction.
type ChampionSink interface {
	Export(c *Champion) error
}

// TextSink overwrites a file with the champion's weight matrices in layer order.
type TextSink struct {
	Path string
}

// Export implements ChampionSink.
func (s TextSink) Export(c *Champion) error {
	if c == nil {
		return nil
	}
	p, err := c.Policy()
	if err != nil {
		return err
	}

	f, err := os.Create(s.Path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", s.Path, err)
	}
	if _, err := fmt.Fprintf(f, "# agent %d, parents %v, %d actions, energy %d\n\n",
		c.AgentID, c.ParentIDs, c.Actions, c.Energy); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", s.Path, err)
	}
	if err := p.WriteText(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", s.Path, err)
	}
	return f.Close()
}

// JSONSink overwrites a file with the champion as JSON, loadable with
// LoadChampionFromFile.
type JSONSink struct {
	Path string
}

// Export implements ChampionSink.
func (s JSONSink) Export(c *Champion) error {
	if c == nil {
		return nil
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling champion: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", s.Path, err)
	}
	return nil
}

// MultiSink exports to every sink and joins their errors.
type MultiSink []ChampionSink

// Export implements ChampionSink.
func (m MultiSink) Export(c *Champion) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Export(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
