// Package agent provides ready-made controllers for headless runs.
// Agents are created by name through a small factory table so the CLI can
// pick one from a flag.
package agent

import (
	"fmt"
	"sort"

	"github.com/vovakirdan/vgdl-arcade/internal/sim"
)

// Options carries the settings any agent may need.
type Options struct {
	Seed        int64  // RNG seed for agents that draw random numbers
	ActionsFile string // Recorded actions for the replay agent
	Epsilon     float64
	Alpha       float64
	Gamma       float64
}

// Factory creates a controller for one player.
type Factory func(opts Options) (sim.Controller, error)

// Info describes a registered agent.
type Info struct {
	Name        string
	Description string
}

type entry struct {
	info    Info
	factory Factory
}

var factories = map[string]entry{
	"nil": {
		info:    Info{Name: "nil", Description: "always does nothing"},
		factory: func(Options) (sim.Controller, error) { return Nil{}, nil },
	},
	"random": {
		info:    Info{Name: "random", Description: "uniformly random available actions"},
		factory: func(o Options) (sim.Controller, error) { return NewRandom(o.Seed), nil },
	},
	"replay": {
		info: Info{Name: "replay", Description: "replays an action file, then idles"},
		factory: func(o Options) (sim.Controller, error) {
			if o.ActionsFile == "" {
				return nil, fmt.Errorf("agent: replay needs an actions file")
			}
			return LoadReplay(o.ActionsFile)
		},
	},
	"qlearn": {
		info:    Info{Name: "qlearn", Description: "epsilon-greedy Q-learning on audio observations"},
		factory: func(o Options) (sim.Controller, error) { return NewAudioQLearner(o), nil },
	},
}

// List returns all agents sorted by name.
func List() []Info {
	out := make([]Info, 0, len(factories))
	for _, e := range factories {
		out = append(out, e.info)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// Exists checks if an agent with the given name is registered.
func Exists(name string) bool {
	_, ok := factories[name]
	return ok
}

// New creates the named agent.
func New(name string, opts Options) (sim.Controller, error) {
	e, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("agent: unknown agent %q", name)
	}
	return e.factory(opts)
}
