package sim

import (
	"math"

	"github.com/vovakirdan/vgdl-arcade/internal/core"
)

// update moves avatars first, in player order, then every other sprite by
// walking the draw order backwards. Each group is snapshot when it is
// visited, so a sprite spawned into an already visited group waits a tick.
func (s *Session) update(actions []core.Action) {
	for _, pl := range s.players {
		act := core.ActionNil
		if int(pl.ID) < len(actions) {
			act = actions[pl.ID]
		}
		av := pl.Avatar
		if av == nil {
			s.sink.Debug("player has no avatar", "player", pl.ID, "tick", s.tick)
			continue
		}
		if av.disabled {
			continue
		}
		if act == core.ActionEscape {
			s.Abort()
			return
		}
		if !s.allowed(av, act) {
			act = core.ActionNil
		}
		pl.LastAction = act
		av.LastRect = av.Rect
		s.updateAvatar(av, act)
	}

	order := s.catalog.DrawOrder()
	for i := len(order) - 1; i >= 0; i-- {
		for _, sp := range s.store.groups[order[i]].Sprites() {
			if sp.IsAvatar() || sp.disabled || s.store.isKilled(sp) {
				continue
			}
			sp.LastRect = sp.Rect
			s.updateSprite(sp)
		}
	}
}

// AvailableActions returns the actions an avatar of the given class accepts.
func AvailableActions(c SpriteClass, includeNil bool) []core.Action {
	var out []core.Action
	switch c {
	case ClassMovingAvatar:
		out = []core.Action{core.ActionUp, core.ActionDown, core.ActionLeft, core.ActionRight}
	case ClassShootAvatar:
		out = []core.Action{core.ActionUse, core.ActionUp, core.ActionDown, core.ActionLeft, core.ActionRight}
	case ClassFlakAvatar:
		out = []core.Action{core.ActionUse, core.ActionLeft, core.ActionRight}
	}
	if includeNil {
		out = append(out, core.ActionNil)
	}
	return out
}

func (s *Session) allowed(av *Sprite, act core.Action) bool {
	if act == core.ActionNil {
		return true
	}
	for _, a := range AvailableActions(av.def.Class, false) {
		if a == act {
			return true
		}
	}
	return false
}

// ready advances the sprite's move counter and reports whether it may move.
func (s *Session) ready(sp *Sprite) bool {
	sp.lastMove++
	if sp.lastMove < sp.def.Cooldown {
		return false
	}
	sp.lastMove = 0
	return true
}

func (s *Session) updateAvatar(av *Sprite, act core.Action) {
	def := av.def
	if act == core.ActionUse {
		if def.Class == ClassShootAvatar || def.Class == ClassFlakAvatar {
			s.shoot(av)
		}
		return
	}
	dir := act.Direction()
	if dir.IsNone() {
		return
	}
	if def.Class == ClassFlakAvatar && dir.DY != 0 {
		return
	}
	if def.Class != ClassFlakAvatar {
		av.Orientation = dir
	}
	if !s.ready(av) {
		return
	}
	s.move(av, dir, def.Speed)
}

// shoot spawns the avatar's projectile in front of it.
func (s *Session) shoot(av *Sprite) {
	def := av.def
	if !s.catalog.Valid(def.Stype) {
		return
	}
	if s.catalog.Valid(def.Ammo) {
		if av.Resources[def.Ammo] <= 0 {
			return
		}
	}
	dir := av.Orientation
	if def.Class == ClassFlakAvatar || dir.IsNone() {
		dir = core.DirUp
	}
	bs := s.cfg.BlockSize
	pos := av.Position()
	pos = core.Point{X: pos.X + dir.DX*bs, Y: pos.Y + dir.DY*bs}

	shot := s.store.spawn(def.Stype, pos, false)
	if shot == nil {
		return
	}
	if s.catalog.Valid(def.Ammo) {
		av.Resources[def.Ammo]--
	}
	shot.Orientation = dir
	shot.Flags |= FlagFromAvatar
	shot.Player = av.Player
	av.used = true
}

func (s *Session) updateSprite(sp *Sprite) {
	def := sp.def
	switch def.Class {
	case ClassMissile:
		if s.ready(sp) {
			s.move(sp, sp.Orientation, def.Speed)
		}
	case ClassRandomNPC:
		if s.ready(sp) {
			dir := core.CardinalDirections[s.rng.Intn(len(core.CardinalDirections))]
			s.move(sp, dir, def.Speed)
		}
	case ClassChaser:
		if s.ready(sp) {
			s.chase(sp)
		}
	case ClassFlicker:
		sp.age++
		if def.Limit > 0 && sp.age >= def.Limit {
			s.store.kill(sp, false)
		}
	case ClassSpawnPoint:
		if !s.ready(sp) {
			return
		}
		if def.Prob < 1 && s.rng.Float64() >= def.Prob {
			return
		}
		n := s.store.spawn(def.Stype, sp.Position(), false)
		if n == nil {
			return
		}
		if !sp.Orientation.IsNone() {
			n.Orientation = sp.Orientation
		}
		s.markStochastic(n)
		sp.spawned++
		if def.Total > 0 && sp.spawned >= def.Total {
			s.store.kill(sp, false)
		}
	}
}

// chase steps toward the nearest target, picking randomly among the
// directions that shorten the distance equally well.
func (s *Session) chase(sp *Sprite) {
	def := sp.def
	if !s.catalog.Valid(def.Stype) {
		return
	}
	var target *Sprite
	best := math.Inf(1)
	for _, t := range s.store.materialize(def.Stype) {
		if d := core.Distance(sp.Position(), t.Position()); d < best {
			best = d
			target = t
		}
	}
	if target == nil {
		return
	}

	from, to := sp.Position(), target.Position()
	current := core.Abs(to.X-from.X) + core.Abs(to.Y-from.Y)
	var options []core.Direction
	for _, dir := range core.CardinalDirections {
		nx, ny := from.X+dir.DX*s.cfg.BlockSize, from.Y+dir.DY*s.cfg.BlockSize
		if core.Abs(to.X-nx)+core.Abs(to.Y-ny) < current {
			options = append(options, dir)
		}
	}
	if len(options) == 0 {
		return
	}
	dir := options[0]
	if len(options) > 1 {
		dir = options[s.rng.Intn(len(options))]
	}
	sp.Orientation = dir
	s.move(sp, dir, def.Speed)
}
