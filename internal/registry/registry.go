// Package registry maps symbolic sprite type names to dense integer ids.
// A registry belongs to one loaded game; ids are assigned in registration order
// and never change for the lifetime of that game.
package registry

import (
	"errors"
	"fmt"
)

// TypeID is a dense sprite type identifier.
type TypeID int

// NoType marks the absence of a type (for example a global timed effect).
const NoType TypeID = -1

// Names of the built-in types registered before anything else.
const (
	WallName   = "wall"
	AvatarName = "avatar"
)

// Built-in ids. They hold for every registry created with New.
const (
	WallID   TypeID = 0
	AvatarID TypeID = 1
)

// ErrUnknownType is returned when resolving a name that was never registered.
var ErrUnknownType = errors.New("registry: unknown sprite type")

// Types is an append-only bidirectional name <-> id table.
type Types struct {
	ids   map[string]TypeID
	names []string
}

// New creates a registry with the built-in types already registered,
// wall first and avatar second.
func New() *Types {
	t := &Types{ids: make(map[string]TypeID)}
	t.Register(WallName)
	t.Register(AvatarName)
	return t
}

// Register adds a type name and returns its id.
// Registering an existing name returns the id it already has.
func (t *Types) Register(name string) TypeID {
	if id, ok := t.ids[name]; ok {
		return id
	}
	id := TypeID(len(t.names))
	t.ids[name] = id
	t.names = append(t.names, name)
	return id
}

// Resolve returns the id of a registered name.
func (t *Types) Resolve(name string) (TypeID, error) {
	id, ok := t.ids[name]
	if !ok {
		return NoType, fmt.Errorf("%w %q", ErrUnknownType, name)
	}
	return id, nil
}

// Exists checks if a type with the given name is registered.
func (t *Types) Exists(name string) bool {
	_, ok := t.ids[name]
	return ok
}

// NameOf returns the name for id, or an empty string if id is out of range.
func (t *Types) NameOf(id TypeID) string {
	if id < 0 || int(id) >= len(t.names) {
		return ""
	}
	return t.names[id]
}

// Len returns the number of registered types.
func (t *Types) Len() int {
	return len(t.names)
}

// Names returns all registered names in id order.
func (t *Types) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}
