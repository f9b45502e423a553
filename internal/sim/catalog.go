// Package sim implements the rule-driven sprite simulation: sprite storage,
// hierarchical interaction tables, the per-tick effect dispatcher, terminations,
// the event history and the audio observations derived from it.
//
// A Session owns all mutable state of one game. Nothing in this package is
// safe for concurrent use; a tick runs to completion before control returns.
package sim

import (
	"fmt"
	"sort"

	"github.com/vovakirdan/vgdl-arcade/internal/core"
	"github.com/vovakirdan/vgdl-arcade/internal/registry"
)

// SpriteClass selects the built-in behavior of a sprite type.
type SpriteClass int

const (
	ClassImmovable SpriteClass = iota
	ClassPassive
	ClassMissile
	ClassRandomNPC
	ClassChaser
	ClassFlicker
	ClassSpawnPoint
	ClassResource
	ClassPortal
	ClassMovingAvatar
	ClassShootAvatar
	ClassFlakAvatar
)

var classNames = map[SpriteClass]string{
	ClassImmovable:    "immovable",
	ClassPassive:      "passive",
	ClassMissile:      "missile",
	ClassRandomNPC:    "random_npc",
	ClassChaser:       "chaser",
	ClassFlicker:      "flicker",
	ClassSpawnPoint:   "spawn_point",
	ClassResource:     "resource",
	ClassPortal:       "portal",
	ClassMovingAvatar: "moving_avatar",
	ClassShootAvatar:  "shoot_avatar",
	ClassFlakAvatar:   "flak_avatar",
}

// String returns the class name used in game descriptions.
func (c SpriteClass) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseClass maps a class name to a SpriteClass.
func ParseClass(name string) (SpriteClass, bool) {
	for c, n := range classNames {
		if n == name {
			return c, true
		}
	}
	return ClassPassive, false
}

// IsAvatar reports whether sprites of this class are player-controlled.
func (c SpriteClass) IsAvatar() bool {
	return c == ClassMovingAvatar || c == ClassShootAvatar || c == ClassFlakAvatar
}

// flags returns the category flags implied by the class.
func (c SpriteClass) flags() Flags {
	switch c {
	case ClassImmovable:
		return FlagStatic
	case ClassResource:
		return FlagResource | FlagStatic
	case ClassPortal:
		return FlagPortal | FlagStatic
	case ClassRandomNPC, ClassChaser:
		return FlagNPC | FlagStochastic
	case ClassMovingAvatar, ClassShootAvatar, ClassFlakAvatar:
		return FlagAvatar
	default:
		return 0
	}
}

// TypeDef is the resolved definition of one sprite type.
type TypeDef struct {
	ID        registry.TypeID
	Name      string
	Class     SpriteClass
	Ancestors []registry.TypeID // Root to leaf, the type itself last
	Singleton bool

	Speed       int            // Cells per move
	Cooldown    int            // Ticks between moves
	Orientation core.Direction // Initial orientation
	Stype       registry.TypeID
	Prob        float64 // Spawn probability per attempt (spawn points)
	Total       int     // Spawn budget (spawn points), 0 = unlimited
	Limit       int     // Lifetime for flickers, capacity for resources
	Value       int     // Units granted by a resource
	Resource    registry.TypeID
	Ammo        registry.TypeID

	AudioMove string
	AudioUse  string
	Beacon    string
}

// Catalog is the immutable sprite type hierarchy of a loaded game.
type Catalog struct {
	names     *registry.Types
	defs      []TypeDef
	subtypes  [][]registry.TypeID
	drawOrder []registry.TypeID
}

// DefaultTypeDef returns the definition used for types nobody declared.
func DefaultTypeDef(id registry.TypeID, name string) TypeDef {
	class := ClassPassive
	switch id {
	case registry.WallID:
		class = ClassImmovable
	case registry.AvatarID:
		class = ClassMovingAvatar
	}
	return TypeDef{
		ID:        id,
		Name:      name,
		Class:     class,
		Ancestors: []registry.TypeID{id},
		Speed:     1,
		Cooldown:  1,
		Prob:      1,
		Stype:     registry.NoType,
		Resource:  id,
		Ammo:      registry.NoType,
	}
}

// NewCatalog resolves a type hierarchy. Every registered type gets a definition;
// types missing from defs fall back to DefaultTypeDef. The descendant closure of
// every type is computed here, once.
func NewCatalog(names *registry.Types, defs []TypeDef) (*Catalog, error) {
	n := names.Len()
	c := &Catalog{
		names:    names,
		defs:     make([]TypeDef, n),
		subtypes: make([][]registry.TypeID, n),
	}
	declared := make([]bool, n)

	for _, d := range defs {
		if d.ID < 0 || int(d.ID) >= n {
			return nil, fmt.Errorf("sim: type definition %q has unregistered id %d", d.Name, d.ID)
		}
		if len(d.Ancestors) == 0 {
			d.Ancestors = []registry.TypeID{d.ID}
		}
		if d.Ancestors[len(d.Ancestors)-1] != d.ID {
			return nil, fmt.Errorf("sim: ancestors of %q must end with the type itself", d.Name)
		}
		for _, a := range d.Ancestors {
			if a < 0 || int(a) >= n {
				return nil, fmt.Errorf("sim: type %q has unknown ancestor %d", d.Name, a)
			}
		}
		if d.Speed <= 0 {
			d.Speed = 1
		}
		if d.Cooldown <= 0 {
			d.Cooldown = 1
		}
		c.defs[d.ID] = d
		declared[d.ID] = true
	}

	for i := 0; i < n; i++ {
		if !declared[i] {
			id := registry.TypeID(i)
			c.defs[i] = DefaultTypeDef(id, names.NameOf(id))
		}
	}

	for i := range c.defs {
		for _, a := range c.defs[i].Ancestors {
			c.subtypes[a] = append(c.subtypes[a], registry.TypeID(i))
		}
	}
	for i := range c.subtypes {
		sort.Slice(c.subtypes[i], func(x, y int) bool {
			return c.subtypes[i][x] < c.subtypes[i][y]
		})
	}

	// Avatars are always drawn (and iterated) last.
	var avatars []registry.TypeID
	for i := range c.defs {
		id := registry.TypeID(i)
		if c.defs[i].Class.IsAvatar() {
			avatars = append(avatars, id)
			continue
		}
		c.drawOrder = append(c.drawOrder, id)
	}
	c.drawOrder = append(c.drawOrder, avatars...)

	return c, nil
}

// Names returns the registry the catalog was built from.
func (c *Catalog) Names() *registry.Types {
	return c.names
}

// Len returns the number of sprite types.
func (c *Catalog) Len() int {
	return len(c.defs)
}

// Def returns the definition of a type.
func (c *Catalog) Def(id registry.TypeID) *TypeDef {
	return &c.defs[id]
}

// Valid reports whether id names a type of this catalog.
func (c *Catalog) Valid(id registry.TypeID) bool {
	return id >= 0 && int(id) < len(c.defs)
}

// Subtypes returns the type and all of its descendants in ascending id order.
func (c *Catalog) Subtypes(id registry.TypeID) []registry.TypeID {
	return c.subtypes[id]
}

// IsLeaf reports whether no other type descends from id.
func (c *Catalog) IsLeaf(id registry.TypeID) bool {
	return len(c.subtypes[id]) == 1
}

// DrawOrder returns type ids in draw order, avatar types last.
func (c *Catalog) DrawOrder() []registry.TypeID {
	return c.drawOrder
}

// Name returns the name of a type.
func (c *Catalog) Name(id registry.TypeID) string {
	return c.names.NameOf(id)
}
