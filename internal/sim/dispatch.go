package sim

import (
	"github.com/vovakirdan/vgdl-arcade/internal/core"
)

// Step advances the game by one tick. actions[i] is the action of player i;
// missing entries are treated as no-ops. Step does nothing once the game ended.
func (s *Session) Step(actions ...core.Action) {
	if s.ended {
		return
	}
	s.tick++
	if av := s.players[0].Avatar; av != nil {
		s.lastListener = av.Position()
	}

	s.update(actions)
	if s.aborted {
		return
	}
	s.dispatch()
	s.Purge()
	s.evaluateTerminations()
	s.checkTickLimit()
	s.history.prune(s.tick)
}

// dispatch runs the three effect phases of a tick in order.
func (s *Session) dispatch() {
	s.fireTimed()
	s.fireEdges()
	s.fireCollisions()
}

func (s *Session) fireTimed() {
	for _, e := range s.table.timed.due(s.tick) {
		// A disabled effect is dropped when it comes due, repeating or not.
		if !e.Enabled() {
			continue
		}
		if e.owner < 0 {
			s.execute(e, nil, nil)
		} else {
			for _, t := range s.catalog.Subtypes(e.owner) {
				for _, sp := range s.store.groups[t].Sprites() {
					if sp.disabled || s.store.isKilled(sp) {
						continue
					}
					s.execute(e, sp, nil)
				}
			}
		}
		if e.Repeating {
			e.next = s.tick + e.Timer
			s.table.timed.push(e)
		}
	}
}

func (s *Session) fireEdges() {
	for _, t := range s.table.edgeTypes {
		for _, e := range s.table.edges[t] {
			if !e.Enabled() {
				continue
			}
			for _, st := range s.catalog.Subtypes(t) {
				s.fireEdge(e, s.store.groups[st])
			}
		}
	}
}

func (s *Session) fireEdge(e *Effect, g *SpriteGroup) {
	members := g.Sprites()
	for _, sp := range members {
		if sp.disabled || s.store.isKilled(sp) || s.screen.ContainsRect(sp.Rect) {
			continue
		}
		s.execute(e, sp, nil)
		if g.Len() != len(members) {
			s.sink.Warn("cannot spawn sprites outside of the screen",
				"type", s.catalog.Name(g.Type), "effect", e.Kind.String(), "tick", s.tick)
			return
		}
	}
}

func (s *Session) fireCollisions() {
	for _, pair := range s.table.pairs {
		first := s.store.materialize(pair.a)
		// Sprites spawned from here on belong to the next tick.
		cutoff := s.store.nextID
		for _, e := range s.table.collisions[pair] {
			if !e.Enabled() || s.Shielded(pair.a, pair.b, e.hash) {
				continue
			}
			for _, a := range first {
				if s.store.isKilled(a) || a.disabled {
					continue
				}
				partners := s.store.partners(a, pair.b, cutoff)
				if len(partners) == 0 {
					continue
				}
				if e.InBatch {
					s.executeBatch(e, a, partners)
					continue
				}
				for _, b := range partners {
					if s.store.isKilled(a) {
						break
					}
					if s.store.isKilled(b) || !a.Rect.Intersects(b.Rect) {
						continue
					}
					s.execute(e, a, b)
				}
			}
		}
	}
}

// execute applies a single effect and its score, counter and history side
// effects.
func (s *Session) execute(e *Effect, a, b *Sprite) {
	applied := s.apply(e, a, b)
	if applied && e.scores() {
		for _, pl := range s.players {
			pl.Score += e.ScoreFor(pl.ID)
		}
	}
	if a != nil && b != nil {
		s.history.record(s.tick, a, b, e.Audio)
	}
	if applied {
		s.count(e.Counters, 1)
	} else {
		s.count(e.CountersElse, 1)
	}
}

func (s *Session) executeBatch(e *Effect, a *Sprite, partners []*Sprite) {
	n := s.applyBatch(e, a, partners)
	if n < 0 {
		s.sink.Error("batch effect reported an invalid partner count",
			"effect", e.Kind.String(), "type", s.catalog.Name(a.Type), "tick", s.tick)
		n = 0
	}
	if e.scores() {
		for _, pl := range s.players {
			pl.Score += e.ScoreFor(pl.ID) * float64(n)
		}
	}
	for _, b := range partners {
		s.history.record(s.tick, a, b, e.Audio)
	}
	s.count(e.Counters, n)
}

func (s *Session) count(deltas []int, times int) {
	for i, d := range deltas {
		if i >= len(s.counters) {
			break
		}
		s.counters[i] += d * times
	}
}
