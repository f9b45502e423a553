package sim

import (
	"sort"

	"github.com/vovakirdan/vgdl-arcade/internal/registry"
)

// CollisionRule fires Effect on every A instance overlapping a B instance.
type CollisionRule struct {
	A, B   registry.TypeID
	Effect Effect
}

// EdgeRule fires Effect on every instance of Type that left the play area.
type EdgeRule struct {
	Type   registry.TypeID
	Effect Effect
}

// TimedRule fires Effect every Effect.Timer ticks. With Owner set to
// registry.NoType the effect is global.
type TimedRule struct {
	Owner  registry.TypeID
	Effect Effect
}

// Rules is everything a game description contributes besides sprite types.
type Rules struct {
	Collisions   []CollisionRule
	Edges        []EdgeRule
	Timed        []TimedRule
	Terminations []Termination
}

type typePair struct {
	a, b registry.TypeID
}

// interactionTable is the session's copy of the loaded rules. Effects are
// pointers so that enabling or disabling one is visible to dispatch.
type interactionTable struct {
	pairs      []typePair
	collisions map[typePair][]*Effect
	edgeTypes  []registry.TypeID
	edges      map[registry.TypeID][]*Effect
	timed      timedQueue

	// Ancestor-closed views, computed once per load.
	flat     map[typePair][]*Effect
	flatEdge map[registry.TypeID][]*Effect
}

func newInteractionTable() *interactionTable {
	return &interactionTable{
		collisions: make(map[typePair][]*Effect),
		edges:      make(map[registry.TypeID][]*Effect),
		flat:       make(map[typePair][]*Effect),
		flatEdge:   make(map[registry.TypeID][]*Effect),
	}
}

func (t *interactionTable) addCollision(a, b registry.TypeID, e *Effect) {
	p := typePair{a, b}
	if _, ok := t.collisions[p]; !ok {
		t.pairs = append(t.pairs, p)
	}
	t.collisions[p] = append(t.collisions[p], e)
}

func (t *interactionTable) addEdge(typ registry.TypeID, e *Effect) {
	if _, ok := t.edges[typ]; !ok {
		t.edgeTypes = append(t.edgeTypes, typ)
	}
	t.edges[typ] = append(t.edges[typ], e)
}

// flatten builds the per-leaf views. Effects declared on ancestors come first,
// in root to leaf order, and declaration order is kept within one pair.
func (t *interactionTable) flatten(cat *Catalog) {
	n := cat.Len()
	for i := 0; i < n; i++ {
		ai := cat.Def(registry.TypeID(i)).Ancestors
		for _, pa := range ai {
			t.flatEdge[registry.TypeID(i)] = append(t.flatEdge[registry.TypeID(i)], t.edges[pa]...)
		}
		for j := 0; j < n; j++ {
			aj := cat.Def(registry.TypeID(j)).Ancestors
			var list []*Effect
			for _, pa := range ai {
				for _, pb := range aj {
					list = append(list, t.collisions[typePair{pa, pb}]...)
				}
			}
			if len(list) > 0 {
				t.flat[typePair{registry.TypeID(i), registry.TypeID(j)}] = list
			}
		}
	}
}

// LoadRules installs rules into the session on top of what is already
// loaded. Call ClearInteractionTerminationData first to reload. Rules naming
// types outside the catalog are reported and skipped.
func (s *Session) LoadRules(r Rules) {
	base := s.tick
	if base < 0 {
		base = 0
	}
	for _, cr := range r.Collisions {
		if !s.catalog.Valid(cr.A) || !s.catalog.Valid(cr.B) {
			s.sink.Warn("collision rule names an unknown sprite type", "a", cr.A, "b", cr.B)
			continue
		}
		e := s.adopt(cr.Effect)
		e.pairA, e.pairB = cr.A, cr.B
		s.table.addCollision(cr.A, cr.B, e)
	}
	for _, er := range r.Edges {
		if !s.catalog.Valid(er.Type) {
			s.sink.Warn("edge rule names an unknown sprite type", "type", er.Type)
			continue
		}
		e := s.adopt(er.Effect)
		e.pairA = er.Type
		s.table.addEdge(er.Type, e)
	}
	for _, tr := range r.Timed {
		if tr.Owner != registry.NoType && !s.catalog.Valid(tr.Owner) {
			s.sink.Warn("timed rule names an unknown sprite type", "type", tr.Owner)
			continue
		}
		if tr.Effect.Timer <= 0 {
			s.sink.Warn("timed rule without a positive timer", "effect", tr.Effect.Kind.String())
			continue
		}
		e := s.adopt(tr.Effect)
		e.owner = tr.Owner
		e.pairA = tr.Owner
		e.seq = s.timedSeq
		s.timedSeq++
		e.next = base + e.Timer
		s.table.timed.push(e)
	}

	s.table.flat = make(map[typePair][]*Effect)
	s.table.flatEdge = make(map[registry.TypeID][]*Effect)
	s.table.flatten(s.catalog)

	s.terminations = append(s.terminations, r.Terminations...)
}

// ClearInteractionTerminationData drops every interaction, timed effect and
// termination and resets the stochastic flag. Sprites are left untouched.
func (s *Session) ClearInteractionTerminationData() {
	s.table = newInteractionTable()
	s.terminations = nil
	s.stochastic = false
}

func (s *Session) adopt(src Effect) *Effect {
	e := src
	e.Scores = append([]float64(nil), src.Scores...)
	e.Counters = append([]int(nil), src.Counters...)
	e.CountersElse = append([]int(nil), src.CountersElse...)
	e.owner = registry.NoType
	e.hash = src.Kind.Hash()
	if e.InBatch && !e.Kind.supportsBatch() {
		s.sink.Warn("effect has no batch form", "effect", e.Kind.String())
	}
	return &e
}

// EffectsBetween returns every collision effect that applies to an (a, b)
// pair, including effects declared on ancestors of either type.
func (s *Session) EffectsBetween(a, b registry.TypeID) []*Effect {
	return s.table.flat[typePair{a, b}]
}

// EOSEffectsFor returns every edge effect that applies to t, including those
// declared on ancestors.
func (s *Session) EOSEffectsFor(t registry.TypeID) []*Effect {
	return s.table.flatEdge[t]
}

// TimedEffects returns the scheduled timed effects in firing order.
func (s *Session) TimedEffects() []*Effect {
	return append([]*Effect(nil), s.table.timed.items...)
}

// NextExecution returns the tick at which a timed effect fires next.
func (e *Effect) NextExecution() int {
	return e.next
}

// timedQueue keeps timed effects ordered by (next execution, declaration).
type timedQueue struct {
	items []*Effect
}

func (q *timedQueue) push(e *Effect) {
	i := sort.Search(len(q.items), func(i int) bool {
		it := q.items[i]
		if it.next != e.next {
			return it.next > e.next
		}
		return it.seq > e.seq
	})
	q.items = append(q.items, nil)
	copy(q.items[i+1:], q.items[i:])
	q.items[i] = e
}

// due pops every effect whose next execution is at or before tick.
func (q *timedQueue) due(tick int) []*Effect {
	n := 0
	for n < len(q.items) && q.items[n].next <= tick {
		n++
	}
	out := append([]*Effect(nil), q.items[:n]...)
	q.items = q.items[n:]
	return out
}

// shieldKey protects instances of a from b for one effect signature.
type shieldKey struct {
	a, b registry.TypeID
	hash uint64
}

// AddShield blocks effects with the given hash on the exact declared pair
// (protected, against) for the rest of the tick.
func (s *Session) AddShield(protected, against registry.TypeID, hash uint64) {
	s.shields[shieldKey{protected, against, hash}] = true
}

// Shielded reports whether a shield covers the exact pair and hash.
func (s *Session) Shielded(a, b registry.TypeID, hash uint64) bool {
	return s.shields[shieldKey{a, b, hash}]
}
