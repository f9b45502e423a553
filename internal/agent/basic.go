package agent

import (
	"math/rand"

	"github.com/vovakirdan/vgdl-arcade/internal/core"
	"github.com/vovakirdan/vgdl-arcade/internal/sim"
)

// Nil never acts.
type Nil struct{}

// Act returns the no-op action.
func (Nil) Act(sim.Observation) core.Action {
	return core.ActionNil
}

// Random picks uniformly among the offered actions from its own seeded RNG,
// so it never disturbs the session's random sequence.
type Random struct {
	rng *rand.Rand
}

// NewRandom creates a random agent.
func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

// Act picks one of obs.Actions.
func (r *Random) Act(obs sim.Observation) core.Action {
	if len(obs.Actions) == 0 {
		return core.ActionNil
	}
	return obs.Actions[r.rng.Intn(len(obs.Actions))]
}
