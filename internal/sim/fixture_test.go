package sim

import (
	"testing"

	"github.com/vovakirdan/vgdl-arcade/internal/core"
	"github.com/vovakirdan/vgdl-arcade/internal/diag"
	"github.com/vovakirdan/vgdl-arcade/internal/registry"
)

// fixture builds small type hierarchies for tests.
type fixture struct {
	names *registry.Types
	defs  map[registry.TypeID]TypeDef
	order []registry.TypeID
}

func newFixture() *fixture {
	return &fixture{
		names: registry.New(),
		defs:  make(map[registry.TypeID]TypeDef),
	}
}

// add registers a type below parent ("" for a root) and returns its id.
func (f *fixture) add(name string, class SpriteClass, parent string, mods ...func(*TypeDef)) registry.TypeID {
	id := f.names.Register(name)
	def := DefaultTypeDef(id, name)
	def.Class = class
	if parent != "" {
		pid, err := f.names.Resolve(parent)
		if err != nil {
			panic(err)
		}
		def.Ancestors = append(append([]registry.TypeID(nil), f.defs[pid].Ancestors...), id)
	}
	for _, m := range mods {
		m(&def)
	}
	if _, seen := f.defs[id]; !seen {
		f.order = append(f.order, id)
	}
	f.defs[id] = def
	return id
}

func (f *fixture) catalog(t *testing.T) *Catalog {
	t.Helper()
	var defs []TypeDef
	for _, id := range f.order {
		defs = append(defs, f.defs[id])
	}
	cat, err := NewCatalog(f.names, defs)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return cat
}

func testConfig() core.RuntimeConfig {
	cfg := core.DefaultConfig()
	cfg.Seed = 7
	return cfg
}

func (f *fixture) session(t *testing.T, rules Rules, level Level, cfg core.RuntimeConfig) *Session {
	t.Helper()
	s := NewSession(f.catalog(t), rules, Options{Players: 1, Counters: 2, Config: cfg, Sink: diag.Discard()})
	s.BuildLevel(level)
	return s
}

func place(t registry.TypeID, x, y int) Placement {
	return Placement{Type: t, X: x, Y: y}
}

func grid(placements ...Placement) Level {
	return Level{Width: 10, Height: 10, Placements: placements}
}

func effect(kind EffectKind, mods ...func(*Effect)) Effect {
	e := NewEffect(kind)
	for _, m := range mods {
		m(&e)
	}
	return e
}

func scored(v float64) func(*Effect) {
	return func(e *Effect) { e.Scores = []float64{v} }
}

func batch(e *Effect) { e.InBatch = true }

func singleton(d *TypeDef) { d.Singleton = true }
