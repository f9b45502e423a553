package agent

import (
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/vovakirdan/vgdl-arcade/internal/core"
	"github.com/vovakirdan/vgdl-arcade/internal/sim"
)

// Learning defaults.
const (
	DefaultAlpha   = 0.05
	DefaultGamma   = 0.8
	DefaultEpsilon = 0.1

	// traceDiscount weighs how much a sound heard long before the end of a
	// game is blamed for its outcome.
	traceDiscount = 0.99

	// stateSounds is the number of loudest observations forming a state.
	stateSounds = 10
)

// AudioQLearner is an epsilon-greedy Q-learner that perceives the game only
// through sound. Alongside the Q table it keeps a knowledge base that rates
// every sound by the outcomes of the games it was heard in; the rating of
// what it hears is its per-tick reward. Tables survive across games, so one
// learner can be reused for several episodes.
type AudioQLearner struct {
	rng     *rand.Rand
	alpha   float64
	gamma   float64
	epsilon float64

	q         map[string]map[core.Action]float64
	knowledge map[string]float64

	prevState  string
	prevReward float64
	trace      [][]string
}

// NewAudioQLearner creates a learner. Zero rates in opts select the defaults.
func NewAudioQLearner(opts Options) *AudioQLearner {
	l := &AudioQLearner{
		rng:       rand.New(rand.NewSource(opts.Seed)),
		alpha:     opts.Alpha,
		gamma:     opts.Gamma,
		epsilon:   opts.Epsilon,
		q:         make(map[string]map[core.Action]float64),
		knowledge: make(map[string]float64),
	}
	if l.alpha <= 0 {
		l.alpha = DefaultAlpha
	}
	if l.gamma <= 0 {
		l.gamma = DefaultGamma
	}
	if l.epsilon <= 0 {
		l.epsilon = DefaultEpsilon
	}
	return l
}

// HearsAudio asks the runner for audio observations.
func (l *AudioQLearner) HearsAudio() bool {
	return true
}

// Act updates the value of the previous choice and picks the next action.
func (l *AudioQLearner) Act(obs sim.Observation) core.Action {
	if len(obs.Actions) == 0 {
		return core.ActionNil
	}
	state := stateKey(obs)
	reward := l.rate(obs.Audio)
	l.remember(obs.Audio)

	if l.prevState != "" {
		values := l.q[l.prevState]
		if old, ok := values[obs.LastAction]; ok {
			gain := reward - l.prevReward
			values[obs.LastAction] = old + l.alpha*(gain+l.gamma*l.maxQ(state)-old)
		} else {
			values[obs.LastAction] = reward
		}
	}
	if _, ok := l.q[state]; !ok {
		l.q[state] = make(map[core.Action]float64)
	}

	var act core.Action
	if l.rng.Float64() > l.epsilon {
		act = l.best(state, obs.Actions)
	} else {
		act = obs.Actions[l.rng.Intn(len(obs.Actions))]
	}

	l.prevState = state
	l.prevReward = reward
	return act
}

// Result credits every sound heard during the game with the outcome and
// resets the per-game state.
func (l *AudioQLearner) Result(obs sim.Observation) {
	outcome := -1.0
	if obs.Outcome == core.OutcomeWin {
		outcome = 1
	}
	final := len(l.trace) - 1
	for tick, heard := range l.trace {
		weight := outcome * math.Pow(traceDiscount, float64(final-tick))
		for _, sound := range heard {
			cur, ok := l.knowledge[sound]
			if !ok {
				l.knowledge[sound] = weight
				continue
			}
			target := (cur + weight) / 2
			l.knowledge[sound] = cur + l.alpha*(target-cur)
		}
	}
	l.trace = nil
	l.prevState = ""
	l.prevReward = 0
}

// Knowledge returns the learned rating of a sound.
func (l *AudioQLearner) Knowledge(sound string) (float64, bool) {
	v, ok := l.knowledge[sound]
	return v, ok
}

// States returns the number of states seen so far.
func (l *AudioQLearner) States() int {
	return len(l.q)
}

// rate averages the known ratings of the heard sounds, -1 if none is known.
func (l *AudioQLearner) rate(audio []sim.AudioObservation) float64 {
	sum, n := 0.0, 0
	for _, o := range audio {
		if v, ok := l.knowledge[o.Sound]; ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return -1
	}
	return sum / float64(n)
}

func (l *AudioQLearner) remember(audio []sim.AudioObservation) {
	heard := make([]string, len(audio))
	for i, o := range audio {
		heard[i] = o.Sound
	}
	l.trace = append(l.trace, heard)
}

func (l *AudioQLearner) maxQ(state string) float64 {
	values := l.q[state]
	if len(values) == 0 {
		return 0
	}
	best := math.Inf(-1)
	for _, v := range values {
		if v > best {
			best = v
		}
	}
	return best
}

// best returns the highest valued offered action. Unknown states and ties
// are settled by offer order after a random starting point.
func (l *AudioQLearner) best(state string, actions []core.Action) core.Action {
	start := l.rng.Intn(len(actions))
	values := l.q[state]
	choice := actions[start]
	bestV, found := values[choice]
	for i := 1; i < len(actions); i++ {
		a := actions[(start+i)%len(actions)]
		v, ok := values[a]
		if !ok {
			continue
		}
		if !found || v > bestV {
			choice, bestV, found = a, v, true
		}
	}
	return choice
}

// stateKey encodes the last action and the loudest sounds. Observations
// arrive quietest first, so the loudest are the tail. Intensities are
// rounded to one decimal to keep the state space small.
func stateKey(obs sim.Observation) string {
	var b strings.Builder
	b.WriteString(obs.LastAction.String())
	audio := obs.Audio
	if len(audio) > stateSounds {
		audio = audio[len(audio)-stateSounds:]
	}
	for _, o := range audio {
		b.WriteByte('|')
		b.WriteString(o.Sound)
		b.WriteByte('@')
		b.WriteString(strconv.FormatFloat(math.Round(o.Intensity*10)/10, 'f', 1, 64))
	}
	return b.String()
}
