package sim

import (
	"context"
	"time"

	"github.com/vovakirdan/vgdl-arcade/internal/core"
)

// Observation is what a controller sees before choosing an action.
type Observation struct {
	Tick        int
	Player      core.PlayerID
	Actions     []core.Action
	LastAction  core.Action
	Score       float64
	Outcome     core.Outcome
	GameOver    bool
	AvatarAlive bool

	// Only filled for controllers implementing AudioListener.
	Audio  []AudioObservation
	Events []HistoricEvent
}

// Controller chooses one action per tick for one player.
type Controller interface {
	Act(obs Observation) core.Action
}

// AudioListener marks controllers that want audio observations.
type AudioListener interface {
	HearsAudio() bool
}

// ResultReceiver is notified once with the final observation.
type ResultReceiver interface {
	Result(obs Observation)
}

// Observe builds the observation of player p. audio may be nil.
func (s *Session) Observe(p core.PlayerID, audio []AudioObservation) Observation {
	pl := s.players[p]
	obs := Observation{
		Tick:        s.tick,
		Player:      p,
		LastAction:  pl.LastAction,
		Score:       pl.Score,
		Outcome:     pl.Outcome,
		GameOver:    s.ended,
		AvatarAlive: pl.Avatar != nil && !pl.Avatar.disabled,
	}
	if pl.Avatar != nil {
		obs.Actions = AvailableActions(pl.Avatar.def.Class, s.cfg.IncludeNil)
	}
	if audio != nil {
		obs.Audio = audio
		obs.Events = s.RecentEvents()
	}
	return obs
}

// RunOptions tunes Run.
type RunOptions struct {
	// FrameDelay paces ticks for human viewing. Zero runs flat out.
	FrameDelay time.Duration
}

// Run plays the session until it ends and returns the per-player results.
// Cancelling ctx aborts the game between ticks.
func Run(ctx context.Context, s *Session, controllers []Controller, opts RunOptions) []Result {
	var ticker *time.Ticker
	if opts.FrameDelay > 0 {
		ticker = time.NewTicker(opts.FrameDelay)
		defer ticker.Stop()
	}

	for !s.Ended() {
		if ctx.Err() != nil {
			s.Abort()
			break
		}
		actions := s.decide(controllers)
		s.Step(actions...)

		if ticker != nil && !s.Ended() {
			select {
			case <-ctx.Done():
				s.Abort()
			case <-ticker.C:
			}
		}
	}

	for i, c := range controllers {
		if r, ok := c.(ResultReceiver); ok && i < len(s.players) {
			r.Result(s.Observe(core.PlayerID(i), nil))
		}
	}
	return s.Results()
}

// decide asks every controller for its action. Audio is synthesized at most
// once per tick and shared between listeners.
func (s *Session) decide(controllers []Controller) []core.Action {
	actions := make([]core.Action, len(s.players))

	var audio []AudioObservation
	for _, c := range controllers {
		if l, ok := c.(AudioListener); ok && l.HearsAudio() {
			audio = s.AudioObservations()
			if audio == nil {
				audio = []AudioObservation{}
			}
			break
		}
	}

	for i := range s.players {
		if i >= len(controllers) || controllers[i] == nil {
			continue
		}
		c := controllers[i]
		var heard []AudioObservation
		if l, ok := c.(AudioListener); ok && l.HearsAudio() {
			heard = audio
		}
		obs := s.Observe(core.PlayerID(i), heard)

		start := time.Now()
		act := c.Act(obs)
		if limit := s.cfg.ActTimeout; limit > 0 {
			if elapsed := time.Since(start); elapsed > limit {
				s.sink.Warn("controller exceeded its time budget",
					"player", i, "elapsed", elapsed, "limit", limit)
				s.Disqualify(core.PlayerID(i))
				continue
			}
		}
		actions[i] = act
	}
	return actions
}

// Result is the final state of one player.
type Result struct {
	Player  core.PlayerID
	Outcome core.Outcome
	Score   float64
	Tick    int
}

// Results computes the per-player results. Disqualified players and players
// without an avatar get the disqualification score; winners never end with a
// score below 1.
func (s *Session) Results() []Result {
	out := make([]Result, len(s.players))
	for i, pl := range s.players {
		r := Result{Player: pl.ID, Outcome: pl.Outcome, Score: pl.Score, Tick: s.tick}
		switch {
		case pl.Disqualified:
			r.Outcome = core.OutcomeDisqualified
			r.Score = core.ScoreDisqualified
		case pl.Avatar == nil:
			if r.Outcome == core.OutcomeNoWinner && s.ended {
				r.Outcome = core.OutcomeLose
			}
			r.Score = core.ScoreDisqualified
		case r.Outcome == core.OutcomeWin && r.Score <= 0:
			r.Score = 1
		}
		out[i] = r
	}
	return out
}
