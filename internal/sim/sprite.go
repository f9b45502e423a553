package sim

import (
	"github.com/vovakirdan/vgdl-arcade/internal/core"
	"github.com/vovakirdan/vgdl-arcade/internal/registry"
)

// InstanceID identifies a sprite instance. Ids grow monotonically within a session.
type InstanceID int64

// Flags are the category flags of a sprite.
type Flags uint8

const (
	FlagAvatar Flags = 1 << iota
	FlagResource
	FlagNPC
	FlagStatic
	FlagFromAvatar
	FlagStochastic
	FlagPortal
)

// Has reports whether all bits of f2 are set.
func (f Flags) Has(f2 Flags) bool {
	return f&f2 == f2
}

// Sprite is one instance in the play area.
type Sprite struct {
	ID          InstanceID
	Type        registry.TypeID
	Ancestors   []registry.TypeID
	Rect        core.Rect
	LastRect    core.Rect
	Orientation core.Direction
	Flags       Flags
	Player      core.PlayerID
	Resources   map[registry.TypeID]int

	AudioMove string
	AudioUse  string
	Beacon    string

	disabled bool
	used     bool
	lastMove int
	age      int
	spawned  int
	def      *TypeDef
}

func newSprite(def *TypeDef, rect core.Rect) *Sprite {
	anc := make([]registry.TypeID, len(def.Ancestors))
	copy(anc, def.Ancestors)
	flags := def.Class.flags()
	if def.Class == ClassSpawnPoint && def.Prob < 1 {
		flags |= FlagStochastic
	}
	return &Sprite{
		Type:        def.ID,
		Ancestors:   anc,
		Rect:        rect,
		LastRect:    rect,
		Orientation: def.Orientation,
		Flags:       flags,
		Player:      -1,
		Resources:   make(map[registry.TypeID]int),
		AudioMove:   def.AudioMove,
		AudioUse:    def.AudioUse,
		Beacon:      def.Beacon,
		def:         def,
	}
}

// clone copies a template. The copy shares nothing mutable with the original.
func (sp *Sprite) clone() *Sprite {
	c := *sp
	c.Ancestors = make([]registry.TypeID, len(sp.Ancestors))
	copy(c.Ancestors, sp.Ancestors)
	c.Resources = make(map[registry.TypeID]int, len(sp.Resources))
	for k, v := range sp.Resources {
		c.Resources[k] = v
	}
	return &c
}

// IsAvatar reports whether the sprite is player-controlled.
func (sp *Sprite) IsAvatar() bool {
	return sp.Flags.Has(FlagAvatar)
}

// FromAvatar reports whether the sprite was produced by an avatar (a shot, for example).
func (sp *Sprite) FromAvatar() bool {
	return sp.Flags.Has(FlagFromAvatar)
}

// Disabled reports whether the sprite was disabled instead of removed.
func (sp *Sprite) Disabled() bool {
	return sp.disabled
}

// Position returns the top-left corner of the sprite.
func (sp *Sprite) Position() core.Point {
	return sp.Rect.Position()
}

// Resource returns the amount of a resource the sprite holds.
func (sp *Sprite) Resource(t registry.TypeID) int {
	return sp.Resources[t]
}

// Class returns the behavior class of the sprite's type.
func (sp *Sprite) Class() SpriteClass {
	return sp.def.Class
}

// SpriteGroup holds the instances of exactly one leaf type in insertion order.
type SpriteGroup struct {
	Type    registry.TypeID
	sprites []*Sprite
}

// Len returns the number of sprites in the group, disabled ones included.
func (g *SpriteGroup) Len() int {
	return len(g.sprites)
}

// Sprites returns a copy of the group's members.
func (g *SpriteGroup) Sprites() []*Sprite {
	out := make([]*Sprite, len(g.sprites))
	copy(out, g.sprites)
	return out
}

// Disabled returns the number of disabled members.
func (g *SpriteGroup) Disabled() int {
	n := 0
	for _, sp := range g.sprites {
		if sp.disabled {
			n++
		}
	}
	return n
}

func (g *SpriteGroup) add(sp *Sprite) {
	g.sprites = append(g.sprites, sp)
}

func (g *SpriteGroup) remove(sp *Sprite) bool {
	for i, m := range g.sprites {
		if m == sp {
			g.sprites = append(g.sprites[:i], g.sprites[i+1:]...)
			return true
		}
	}
	return false
}
