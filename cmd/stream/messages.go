package main

import (
	"github.com/pthm-cable/blobsim/components"
	"github.com/pthm-cable/blobsim/game"
	"github.com/pthm-cable/blobsim/neural"
)

// Message types on the wire.
const (
	TypeConfig = "config"
	TypeFrame  = "frame"
	TypeSet    = "set"
	TypeReset  = "reset"
	TypeOK     = "ok"
	TypeError  = "error"
)

// ConfigMessage is sent on connect and after every world reset.
type ConfigMessage struct {
	Type    string                `json:"type"`
	Size    int                   `json:"size"`
	Seed    int64                 `json:"seed"`
	Tick    int                   `json:"tick"`
	Every   int                   `json:"every"` // Ticks between frames
	Params  map[string]float64    `json:"params"`
	Actions []string              `json:"actions"` // Histogram order; the last slot is "none"
	Inputs  []neural.IODescriptor `json:"inputs"`
	Outputs []neural.IODescriptor `json:"outputs"`
}

// AgentFrame is one agent in a frame.
type AgentFrame struct {
	ID         uint32 `json:"id"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	Energy     int    `json:"energy"`
	LastAction string `json:"last_action"`
}

// Frame is the world state after a tick.
type Frame struct {
	Type        string       `json:"type"`
	Tick        int          `json:"tick"`
	Population  int          `json:"population"`
	Food        int          `json:"food"`
	Extinctions int          `json:"extinctions"`
	Histogram   []int        `json:"histogram"`
	Agents      []AgentFrame `json:"agents"`
}

// ControlMessage is a request from a client.
type ControlMessage struct {
	Type  string  `json:"type"`
	Param string  `json:"param,omitempty"`
	Value float64 `json:"value,omitempty"`
}

// Reply acknowledges a control message.
type Reply struct {
	Type    string `json:"type"`
	Request string `json:"request"`
	Param   string `json:"param,omitempty"`
	Error   string `json:"error,omitempty"`
}

func actionNames() []string {
	names := make([]string, 0, components.NumActions+1)
	for a := components.Action(0); a < components.NumActions; a++ {
		names = append(names, a.String())
	}
	return append(names, "none")
}

// newConfigMessage snapshots the run's shape and tunables.
func newConfigMessage(sim *game.Simulation, every int) ConfigMessage {
	params := make(map[string]float64, len(game.Params))
	for _, name := range game.Params {
		if v, err := sim.Get(name); err == nil {
			params[name] = v
		}
	}
	return ConfigMessage{
		Type:    TypeConfig,
		Size:    sim.Size(),
		Seed:    sim.Seed(),
		Tick:    sim.Tick(),
		Every:   every,
		Params:  params,
		Actions: actionNames(),
		Inputs:  neural.InputDescriptors(),
		Outputs: neural.OutputDescriptors(),
	}
}

// newFrame snapshots the world. views is scratch space.
func newFrame(sim *game.Simulation, views []game.AgentView) (Frame, []game.AgentView) {
	views = sim.Agents(views[:0])
	hist := sim.ActionHistogram()

	f := Frame{
		Type:        TypeFrame,
		Tick:        sim.Tick(),
		Population:  sim.Population(),
		Food:        sim.FoodCount(),
		Extinctions: sim.Extinctions(),
		Histogram:   hist[:],
		Agents:      make([]AgentFrame, len(views)),
	}
	for i, v := range views {
		f.Agents[i] = AgentFrame{ID: v.ID, X: v.X, Y: v.Y, Energy: v.Energy, LastAction: v.LastAction.String()}
	}
	return f, views
}
