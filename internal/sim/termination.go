package sim

import (
	"github.com/vovakirdan/vgdl-arcade/internal/core"
	"github.com/vovakirdan/vgdl-arcade/internal/registry"
)

// Termination decides when a game is over and who won.
type Termination interface {
	// Kind names the termination for listings.
	Kind() string
	IsDone(s *Session) bool
	Wins(s *Session, p core.PlayerID) bool
	Bonus(p core.PlayerID) float64
}

// Outcomes holds the per-player win rule and score bonus shared by every
// termination. A player without an entry uses the first one.
type Outcomes struct {
	Win      []bool
	BonusFor []float64
}

// Wins returns the declared rule for p.
func (o Outcomes) Wins(_ *Session, p core.PlayerID) bool {
	if len(o.Win) == 0 {
		return false
	}
	if int(p) < len(o.Win) {
		return o.Win[p]
	}
	return o.Win[0]
}

// Bonus returns the score bonus for p.
func (o Outcomes) Bonus(p core.PlayerID) float64 {
	if len(o.BonusFor) == 0 {
		return 0
	}
	if int(p) < len(o.BonusFor) {
		return o.BonusFor[p]
	}
	return o.BonusFor[0]
}

// Timeout ends the game at a fixed tick. With UseCounter set the winners are
// decided from the game counters instead of Win: either by comparing all
// counters (Compare) or by matching each player's counter against Limits.
type Timeout struct {
	Outcomes
	Limit      int
	UseCounter bool
	Compare    bool
	Limits     []int
}

func (t *Timeout) Kind() string { return "timeout" }

func (t *Timeout) IsDone(s *Session) bool {
	return s.tick >= t.Limit
}

func (t *Timeout) Wins(s *Session, p core.PlayerID) bool {
	if !t.UseCounter {
		return t.Outcomes.Wins(s, p)
	}
	counters := s.counters
	if t.Compare {
		equal := true
		for i := 1; i < len(counters); i++ {
			if counters[i] != counters[0] {
				equal = false
				break
			}
		}
		// The first player wins on a draw, everyone else otherwise.
		if p == core.Player1 {
			return equal
		}
		return !equal
	}
	// One counter and one limit per player, or nobody wins.
	if len(counters) != len(s.players) || len(t.Limits) < len(s.players) {
		return false
	}
	return counters[p] == t.Limits[p]
}

// SpriteCounter ends the game when the enabled instances of all Stypes
// (descendants included) drop to Limit or below.
type SpriteCounter struct {
	Outcomes
	Stypes []registry.TypeID
	Limit  int
}

func (t *SpriteCounter) Kind() string { return "sprite_counter" }

func (t *SpriteCounter) IsDone(s *Session) bool {
	n := 0
	for _, st := range t.Stypes {
		n += s.Count(st, true) - s.DisabledCount(st, true)
	}
	return n <= t.Limit
}

// MultiSpriteCounter ends the game when the instances of all Stypes add up to
// exactly Limit.
type MultiSpriteCounter struct {
	Outcomes
	Stypes []registry.TypeID
	Limit  int
}

func (t *MultiSpriteCounter) Kind() string { return "multi_sprite_counter" }

func (t *MultiSpriteCounter) IsDone(s *Session) bool {
	n := 0
	for _, st := range t.Stypes {
		n += s.Count(st, true) - s.DisabledCount(st, true)
	}
	return n == t.Limit
}

// CounterOp compares a game counter with a value.
type CounterOp string

const (
	OpEqual        CounterOp = "eq"
	OpNotEqual     CounterOp = "ne"
	OpLess         CounterOp = "lt"
	OpLessEqual    CounterOp = "le"
	OpGreater      CounterOp = "gt"
	OpGreaterEqual CounterOp = "ge"
)

// Valid reports whether op is a known comparison.
func (op CounterOp) Valid() bool {
	switch op {
	case OpEqual, OpNotEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		return true
	}
	return false
}

func (op CounterOp) compare(a, b int) bool {
	switch op {
	case OpEqual:
		return a == b
	case OpNotEqual:
		return a != b
	case OpLess:
		return a < b
	case OpLessEqual:
		return a <= b
	case OpGreater:
		return a > b
	case OpGreaterEqual:
		return a >= b
	}
	return false
}

// CounterCheck ends the game when counter Index satisfies Op against Value.
type CounterCheck struct {
	Outcomes
	Index int
	Op    CounterOp
	Value int
}

func (t *CounterCheck) Kind() string { return "counter" }

func (t *CounterCheck) IsDone(s *Session) bool {
	if t.Index < 0 || t.Index >= len(s.counters) {
		return false
	}
	return t.Op.compare(s.counters[t.Index], t.Value)
}

// FuncTermination wraps a Go predicate, for tools and tests.
type FuncTermination struct {
	Outcomes
	Name string
	Done func(s *Session) bool
}

func (t *FuncTermination) Kind() string {
	if t.Name != "" {
		return t.Name
	}
	return "func"
}

func (t *FuncTermination) IsDone(s *Session) bool {
	return t.Done != nil && t.Done(s)
}

// evaluateTerminations runs the declared terminations, then the warning ceiling.
func (s *Session) evaluateTerminations() {
	for _, t := range s.terminations {
		if s.ended {
			break
		}
		if !t.IsDone(s) {
			continue
		}
		s.ended = true
		for _, pl := range s.players {
			if pl.Avatar == nil {
				continue
			}
			pl.Score += t.Bonus(pl.ID)
			if t.Wins(s, pl.ID) {
				pl.Outcome = core.OutcomeWin
			} else {
				pl.Outcome = core.OutcomeLose
			}
		}
	}

	if s.cfg.MaxWarnings > 0 && s.sink.Count() > s.cfg.MaxWarnings {
		s.sink.Error("too many warnings, ending game", "warnings", s.sink.Count(), "tick", s.tick)
		s.ended = true
		for _, pl := range s.players {
			if pl.Outcome == core.OutcomeNoWinner {
				pl.Outcome = core.OutcomeLose
			}
		}
		s.sink.Reset()
	}
}

// checkTickLimit ends the game once the tick ceiling is reached.
func (s *Session) checkTickLimit() {
	if s.cfg.MaxTicks <= 0 || s.tick < s.cfg.MaxTicks {
		return
	}
	s.ended = true
	for _, pl := range s.players {
		if pl.Outcome != core.OutcomeWin {
			pl.Outcome = core.OutcomeLose
		}
	}
}

// Terminations returns the loaded terminations in evaluation order.
func (s *Session) Terminations() []Termination {
	return append([]Termination(nil), s.terminations...)
}
