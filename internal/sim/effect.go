package sim

import (
	"hash/fnv"

	"github.com/vovakirdan/vgdl-arcade/internal/core"
	"github.com/vovakirdan/vgdl-arcade/internal/registry"
)

// EffectKind selects what an effect does when it fires.
type EffectKind int

const (
	KindKillSprite EffectKind = iota
	KindKillBoth
	KindKillIfHasMore
	KindKillIfHasLess
	KindKillIfOtherHasMore
	KindTransformTo
	KindStepBack
	KindWallStop
	KindReverseDirection
	KindTurnAround
	KindSpawn
	KindCloneSprite
	KindChangeResource
	KindCollectResource
	KindTeleportToExit
	KindShieldFrom
	KindKillAll
	KindTransformToAll
	KindAddScore
	KindSound
)

var kindNames = []string{
	KindKillSprite:         "kill_sprite",
	KindKillBoth:           "kill_both",
	KindKillIfHasMore:      "kill_if_has_more",
	KindKillIfHasLess:      "kill_if_has_less",
	KindKillIfOtherHasMore: "kill_if_other_has_more",
	KindTransformTo:        "transform_to",
	KindStepBack:           "step_back",
	KindWallStop:           "wall_stop",
	KindReverseDirection:   "reverse_direction",
	KindTurnAround:         "turn_around",
	KindSpawn:              "spawn",
	KindCloneSprite:        "clone_sprite",
	KindChangeResource:     "change_resource",
	KindCollectResource:    "collect_resource",
	KindTeleportToExit:     "teleport_to_exit",
	KindShieldFrom:         "shield_from",
	KindKillAll:            "kill_all",
	KindTransformToAll:     "transform_to_all",
	KindAddScore:           "add_score",
	KindSound:              "sound",
}

// String returns the name used in game descriptions.
func (k EffectKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// ParseEffectKind maps a name to an EffectKind.
func ParseEffectKind(name string) (EffectKind, bool) {
	for i, n := range kindNames {
		if n == name {
			return EffectKind(i), true
		}
	}
	return 0, false
}

// EffectKinds returns every known kind in declaration order.
func EffectKinds() []EffectKind {
	out := make([]EffectKind, len(kindNames))
	for i := range out {
		out[i] = EffectKind(i)
	}
	return out
}

// Hash is the effect signature used by shields.
func (k EffectKind) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(k.String()))
	return h.Sum64()
}

// supportsBatch lists the kinds with a batch form.
func (k EffectKind) supportsBatch() bool {
	switch k {
	case KindKillSprite, KindStepBack, KindWallStop, KindChangeResource, KindAddScore, KindSound:
		return true
	}
	return false
}

// Effect is one rule action. Sessions copy effects when rules are loaded,
// so a Rules value can be shared between sessions.
type Effect struct {
	Kind         EffectKind
	Scores       []float64 // Per-player score delta
	Counters     []int     // Per-counter delta when the effect applies
	CountersElse []int     // Per-counter delta when its condition fails
	Audio        string
	InBatch      bool
	Disabled     bool

	Stype    registry.TypeID // Spawn, transform, shield or kill_all target
	Stype2   registry.TypeID // transform_to_all destination
	Resource registry.TypeID
	Value    int
	Limit    int
	Shielded EffectKind // shield_from: the kind being blocked

	// Timed effects only
	Timer     int
	Repeating bool

	pairA registry.TypeID
	pairB registry.TypeID
	owner registry.TypeID
	hash  uint64
	seq   int
	next  int
}

// NewEffect returns an enabled effect of the given kind with no targets.
func NewEffect(kind EffectKind) Effect {
	return Effect{
		Kind:     kind,
		Stype:    registry.NoType,
		Stype2:   registry.NoType,
		Resource: registry.NoType,
	}
}

// Enabled reports whether the effect takes part in dispatch.
func (e *Effect) Enabled() bool {
	return !e.Disabled
}

// SetEnabled toggles the effect.
func (e *Effect) SetEnabled(on bool) {
	e.Disabled = !on
}

// Hash returns the effect's signature hash.
func (e *Effect) Hash() uint64 {
	return e.hash
}

// ScoreFor returns the score delta for player p.
func (e *Effect) ScoreFor(p core.PlayerID) float64 {
	if int(p) < len(e.Scores) {
		return e.Scores[p]
	}
	return 0
}

func (e *Effect) scores() bool {
	for _, s := range e.Scores {
		if s != 0 {
			return true
		}
	}
	return false
}

// apply runs a non-batch effect. a is nil for global timed effects and b is
// nil outside collisions. The result tells whether the effect's condition
// held; conditional kinds that do nothing report false.
func (s *Session) apply(e *Effect, a, b *Sprite) bool {
	if a == nil && needsSprite(e.Kind) {
		s.sink.Warn("effect needs a sprite", "effect", e.Kind.String(), "tick", s.tick)
		return false
	}

	switch e.Kind {
	case KindKillSprite:
		s.store.kill(a, false)
	case KindKillBoth:
		s.store.kill(a, false)
		if b != nil {
			s.store.kill(b, false)
		}
	case KindKillIfHasMore:
		if a.Resources[e.Resource] < e.Limit {
			return false
		}
		s.store.kill(a, false)
	case KindKillIfHasLess:
		if a.Resources[e.Resource] > e.Limit {
			return false
		}
		s.store.kill(a, false)
	case KindKillIfOtherHasMore:
		if b == nil || b.Resources[e.Resource] < e.Limit {
			return false
		}
		s.store.kill(a, false)
	case KindTransformTo:
		return s.transform(a, e.Stype) != nil
	case KindStepBack:
		s.place(a, a.LastRect)
	case KindWallStop:
		s.place(a, a.LastRect)
		if !a.IsAvatar() {
			a.Orientation = core.DirNone
		}
	case KindReverseDirection:
		a.Orientation = a.Orientation.Reverse()
	case KindTurnAround:
		s.place(a, a.LastRect)
		s.move(a, core.DirDown, a.def.Speed)
		a.Orientation = a.Orientation.Reverse()
	case KindSpawn:
		return s.spawnFrom(a, e.Stype) != nil
	case KindCloneSprite:
		return s.spawnFrom(a, a.Type) != nil
	case KindChangeResource:
		s.changeResource(a, e.Resource, e.Value)
	case KindCollectResource:
		if b == nil {
			return false
		}
		return s.collect(a, b)
	case KindTeleportToExit:
		if b == nil {
			return false
		}
		return s.teleport(a, b)
	case KindShieldFrom:
		s.AddShield(e.pairA, e.Stype, e.Shielded.Hash())
	case KindKillAll:
		if !s.catalog.Valid(e.Stype) {
			return false
		}
		for _, sp := range s.store.materialize(e.Stype) {
			s.store.kill(sp, false)
		}
	case KindTransformToAll:
		if !s.catalog.Valid(e.Stype) {
			return false
		}
		for _, sp := range s.store.materialize(e.Stype) {
			s.transform(sp, e.Stype2)
		}
	case KindAddScore, KindSound:
	}
	return true
}

// applyBatch runs a batch effect against all partners at once and returns
// how many times its score and counters apply, or -1 when the kind has no
// batch form.
func (s *Session) applyBatch(e *Effect, a *Sprite, partners []*Sprite) int {
	if !e.Kind.supportsBatch() {
		return -1
	}
	switch e.Kind {
	case KindKillSprite:
		s.store.kill(a, false)
	case KindStepBack:
		s.place(a, a.LastRect)
	case KindWallStop:
		s.place(a, a.LastRect)
		if !a.IsAvatar() {
			a.Orientation = core.DirNone
		}
	case KindChangeResource:
		s.changeResource(a, e.Resource, e.Value*len(partners))
	}
	return len(partners)
}

func needsSprite(k EffectKind) bool {
	switch k {
	case KindKillAll, KindTransformToAll, KindAddScore, KindSound:
		return false
	}
	return true
}

// transform replaces sp with a new instance of t at the same position.
// Avatar slots follow the transformation.
func (s *Session) transform(sp *Sprite, t registry.TypeID) *Sprite {
	if s.store.isKilled(sp) {
		return nil
	}
	n := s.store.spawn(t, sp.Position(), true)
	if n == nil {
		return nil
	}
	if !sp.Orientation.IsNone() {
		n.Orientation = sp.Orientation
	}
	for k, v := range sp.Resources {
		n.Resources[k] = v
	}
	if sp.FromAvatar() {
		n.Flags |= FlagFromAvatar
	}
	if sp.IsAvatar() && sp.Player >= 0 && int(sp.Player) < len(s.players) {
		pl := s.players[sp.Player]
		if pl.Avatar == sp {
			if n.IsAvatar() {
				n.Player = sp.Player
				pl.Avatar = n
			}
		}
	}
	s.store.kill(sp, true)
	return n
}

// spawnFrom spawns t on top of src.
func (s *Session) spawnFrom(src *Sprite, t registry.TypeID) *Sprite {
	n := s.store.spawn(t, src.Position(), false)
	if n == nil {
		return nil
	}
	if n.Orientation.IsNone() {
		n.Orientation = src.Orientation
	}
	if src.IsAvatar() || src.FromAvatar() {
		n.Flags |= FlagFromAvatar
	}
	s.markStochastic(n)
	return n
}

func (s *Session) changeResource(sp *Sprite, res registry.TypeID, delta int) {
	if !s.catalog.Valid(res) {
		s.sink.Warn("change of unknown resource", "resource", res)
		return
	}
	v := sp.Resources[res] + delta
	if v < 0 {
		v = 0
	}
	if limit := s.catalog.Def(res).Limit; limit > 0 && v > limit {
		v = limit
	}
	sp.Resources[res] = v
}

// collect moves one resource sprite into the collector's inventory.
func (s *Session) collect(res, collector *Sprite) bool {
	def := res.def
	value := def.Value
	if value <= 0 {
		value = 1
	}
	if def.Limit > 0 && collector.Resources[def.Resource]+value > def.Limit {
		return false
	}
	collector.Resources[def.Resource] += value
	s.store.kill(res, false)
	return true
}

// teleport moves sp to a random exit of the portal it touched.
func (s *Session) teleport(sp, portal *Sprite) bool {
	exitType := portal.def.Stype
	if !s.catalog.Valid(exitType) {
		s.sink.Warn("portal without exit type", "portal", s.catalog.Name(portal.Type))
		return false
	}
	exits := s.store.materialize(exitType)
	if len(exits) == 0 {
		s.sink.Warn("portal has no exits", "exit", s.catalog.Name(exitType))
		return false
	}
	exit := exits[s.rng.Intn(len(exits))]
	s.place(sp, core.NewRect(exit.Rect.X, exit.Rect.Y, sp.Rect.W, sp.Rect.H))
	// The move out of the portal does not count as a step back target.
	sp.LastRect = sp.Rect
	return true
}
