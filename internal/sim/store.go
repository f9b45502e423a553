package sim

import (
	"sort"

	"github.com/vovakirdan/vgdl-arcade/internal/core"
	"github.com/vovakirdan/vgdl-arcade/internal/diag"
	"github.com/vovakirdan/vgdl-arcade/internal/registry"
)

// store owns the sprite groups, the kill list, templates and spatial buckets.
type store struct {
	catalog   *Catalog
	sink      *diag.Sink
	blockSize int
	maxCount  int

	groups    []*SpriteGroup
	templates []*Sprite
	killList  []*Sprite
	killed    map[InstanceID]bool
	count     int
	nextID    InstanceID

	buckets    []bucket
	generation uint64
}

// bucket indexes one group by row band. It is rebuilt lazily whenever the
// store generation moved past the one it was built for.
type bucket struct {
	rows       map[int][]*Sprite
	generation uint64
	built      bool
}

func newStore(cat *Catalog, sink *diag.Sink, blockSize, maxCount int) *store {
	n := cat.Len()
	st := &store{
		catalog:   cat,
		sink:      sink,
		blockSize: blockSize,
		maxCount:  maxCount,
		groups:    make([]*SpriteGroup, n),
		templates: make([]*Sprite, n),
		killed:    make(map[InstanceID]bool),
		buckets:   make([]bucket, n),
	}
	for i := range st.groups {
		st.groups[i] = &SpriteGroup{Type: registry.TypeID(i)}
	}
	return st
}

// touch invalidates all spatial buckets.
func (st *store) touch() {
	st.generation++
}

// spawn creates an instance of t at pos. Unless force is set, the spawn is
// refused when a singleton ancestor already has an instance. The global
// sprite cap is never bypassed.
func (st *store) spawn(t registry.TypeID, pos core.Point, force bool) *Sprite {
	if !st.catalog.Valid(t) {
		st.sink.Warn("spawn of unknown sprite type", "type", t)
		return nil
	}
	if st.maxCount > 0 && st.count >= st.maxCount {
		st.sink.Warn("sprite limit reached", "limit", st.maxCount, "type", st.catalog.Name(t))
		return nil
	}
	def := st.catalog.Def(t)
	if !force {
		for _, a := range def.Ancestors {
			if st.catalog.Def(a).Singleton && st.countOf(a, true) > 0 {
				return nil
			}
		}
	}

	rect := core.NewRect(pos.X, pos.Y, st.blockSize, st.blockSize)
	var sp *Sprite
	if tmpl := st.templates[t]; tmpl != nil {
		sp = tmpl.clone()
		sp.Rect = rect
		sp.LastRect = rect
	} else {
		sp = newSprite(def, rect)
		st.templates[t] = sp.clone()
	}
	sp.ID = st.nextID
	st.nextID++

	st.groups[t].add(sp)
	st.count++
	st.touch()
	return sp
}

// kill schedules sp for removal. An avatar killed without transformation is
// disabled in place instead. Killing the same sprite twice is a no-op.
func (st *store) kill(sp *Sprite, transformed bool) {
	if sp == nil {
		return
	}
	if sp.IsAvatar() && !transformed {
		sp.disabled = true
		return
	}
	if st.killed[sp.ID] {
		return
	}
	st.killed[sp.ID] = true
	st.killList = append(st.killList, sp)
}

func (st *store) isKilled(sp *Sprite) bool {
	return st.killed[sp.ID]
}

// purge removes every scheduled sprite from its group and returns them.
func (st *store) purge() []*Sprite {
	if len(st.killList) == 0 {
		return nil
	}
	removed := st.killList
	for _, sp := range removed {
		if st.groups[sp.Type].remove(sp) {
			st.count--
		}
	}
	st.killList = nil
	st.killed = make(map[InstanceID]bool)
	st.touch()
	return removed
}

// countOf counts instances of t, optionally including all descendants.
func (st *store) countOf(t registry.TypeID, subtypes bool) int {
	if !subtypes {
		return st.groups[t].Len()
	}
	n := 0
	for _, s := range st.catalog.Subtypes(t) {
		n += st.groups[s].Len()
	}
	return n
}

// materialize returns the live instances of t and its descendants in
// ascending type order, each group in insertion order.
func (st *store) materialize(t registry.TypeID) []*Sprite {
	var out []*Sprite
	for _, s := range st.catalog.Subtypes(t) {
		for _, sp := range st.groups[s].sprites {
			if !sp.disabled && !st.killed[sp.ID] {
				out = append(out, sp)
			}
		}
	}
	return out
}

// partners returns the instances of t (and descendants) that intersect sp,
// excluding sp itself, killed or disabled sprites and anything with an id at
// or above cutoff. Results are ordered by type, then by id.
func (st *store) partners(sp *Sprite, t registry.TypeID, cutoff InstanceID) []*Sprite {
	var out []*Sprite
	for _, s := range st.catalog.Subtypes(t) {
		start := len(out)
		for _, c := range st.near(s, sp.Rect) {
			if c == sp || c.ID >= cutoff || c.disabled || st.killed[c.ID] {
				continue
			}
			if !c.Rect.Intersects(sp.Rect) {
				continue
			}
			out = append(out, c)
		}
		same := out[start:]
		sort.Slice(same, func(i, j int) bool { return same[i].ID < same[j].ID })
	}
	return out
}

// near returns the candidates of group t whose row band overlaps r.
func (st *store) near(t registry.TypeID, r core.Rect) []*Sprite {
	b := &st.buckets[t]
	if !b.built || b.generation != st.generation {
		st.rebuild(t)
	}
	seen := make(map[InstanceID]bool)
	var out []*Sprite
	for row := st.row(r.Y); row <= st.row(r.Bottom()-1); row++ {
		for _, sp := range b.rows[row] {
			if seen[sp.ID] {
				continue
			}
			seen[sp.ID] = true
			out = append(out, sp)
		}
	}
	return out
}

func (st *store) rebuild(t registry.TypeID) {
	b := &st.buckets[t]
	b.rows = make(map[int][]*Sprite)
	for _, sp := range st.groups[t].sprites {
		for row := st.row(sp.Rect.Y); row <= st.row(sp.Rect.Bottom()-1); row++ {
			b.rows[row] = append(b.rows[row], sp)
		}
	}
	b.generation = st.generation
	b.built = true
}

// row maps a y coordinate to its bucket row, flooring for negative values.
func (st *store) row(y int) int {
	if y >= 0 {
		return y / st.blockSize
	}
	return -((-y + st.blockSize - 1) / st.blockSize)
}
