package gamedef

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/vgdl-arcade/internal/core"
	"github.com/vovakirdan/vgdl-arcade/internal/diag"
	"github.com/vovakirdan/vgdl-arcade/internal/registry"
	"github.com/vovakirdan/vgdl-arcade/internal/sim"
)

// Game is a resolved game description, ready to start sessions from.
type Game struct {
	Name        string
	Description string
	Players     int
	Counters    int
	Catalog     *sim.Catalog
	Rules       sim.Rules
	Mapping     map[rune][]registry.TypeID

	sink *diag.Sink
}

// defaultMapping holds the characters every game understands.
var defaultMapping = map[rune][]string{
	'w': {registry.WallName},
	'A': {registry.AvatarName},
}

// Parse decodes and resolves a YAML game description. Rules naming unknown
// sprites are reported to sink and skipped; malformed descriptions (unknown
// classes, effect kinds or termination kinds) are errors.
func Parse(data []byte, sink *diag.Sink) (*Game, error) {
	var desc Description
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("gamedef: yaml unmarshal: %w", err)
	}
	return Build(desc, sink)
}

// Build resolves an already decoded description.
func Build(desc Description, sink *diag.Sink) (*Game, error) {
	if sink == nil {
		sink = diag.Discard()
	}
	b := &builder{
		names: registry.New(),
		sink:  sink,
		specs: make(map[registry.TypeID]*SpriteSpec),
		anc:   make(map[registry.TypeID][]registry.TypeID),
	}

	if err := b.registerTree(desc.Sprites, nil, nil); err != nil {
		return nil, err
	}
	defs, err := b.typeDefs()
	if err != nil {
		return nil, err
	}
	cat, err := sim.NewCatalog(b.names, defs)
	if err != nil {
		return nil, fmt.Errorf("gamedef: %w", err)
	}

	g := &Game{
		Name:        desc.Name,
		Description: desc.Description,
		Players:     desc.Players,
		Counters:    desc.Counters,
		Catalog:     cat,
		sink:        sink,
	}
	if g.Players <= 0 {
		g.Players = 1
	}

	if err := b.interactions(desc.Interactions, &g.Rules); err != nil {
		return nil, err
	}
	if err := b.timed(desc.Timed, &g.Rules); err != nil {
		return nil, err
	}
	if err := b.terminations(desc.Terminations, &g.Rules); err != nil {
		return nil, err
	}
	mapping, err := b.mapping(desc.LevelMapping)
	if err != nil {
		return nil, err
	}
	g.Mapping = mapping

	return g, nil
}

// builder carries the intermediate state of one Build call.
type builder struct {
	names *registry.Types
	sink  *diag.Sink
	order []registry.TypeID
	specs map[registry.TypeID]*SpriteSpec
	anc   map[registry.TypeID][]registry.TypeID
}

// registerTree assigns ids in pre-order so parents always precede children.
func (b *builder) registerTree(specs []SpriteSpec, parent *SpriteSpec, parentAnc []registry.TypeID) error {
	for i := range specs {
		spec := specs[i]
		if spec.Name == "" {
			return fmt.Errorf("gamedef: sprite without a name")
		}
		if spec.Name == EOS {
			return fmt.Errorf("gamedef: %q is reserved", EOS)
		}
		if id, err := b.names.Resolve(spec.Name); err == nil && b.specs[id] != nil {
			return fmt.Errorf("gamedef: sprite %q declared twice", spec.Name)
		}
		spec.inherit(parent)
		id := b.names.Register(spec.Name)

		anc := make([]registry.TypeID, 0, len(parentAnc)+1)
		anc = append(anc, parentAnc...)
		anc = append(anc, id)

		b.specs[id] = &spec
		b.anc[id] = anc
		b.order = append(b.order, id)

		if err := b.registerTree(spec.Children, &spec, anc); err != nil {
			return err
		}
	}
	return nil
}

// typeDefs converts the declared sprites. Type references are resolved here,
// after every name has been registered.
func (b *builder) typeDefs() ([]sim.TypeDef, error) {
	defs := make([]sim.TypeDef, 0, len(b.order))
	for _, id := range b.order {
		spec := b.specs[id]
		def := sim.DefaultTypeDef(id, spec.Name)
		def.Ancestors = b.anc[id]

		if spec.Class != "" {
			class, ok := sim.ParseClass(spec.Class)
			if !ok {
				return nil, fmt.Errorf("gamedef: sprite %q has unknown class %q", spec.Name, spec.Class)
			}
			def.Class = class
		}
		if spec.Orientation != "" {
			dir, ok := core.ParseDirection(spec.Orientation)
			if !ok {
				return nil, fmt.Errorf("gamedef: sprite %q has unknown orientation %q", spec.Name, spec.Orientation)
			}
			def.Orientation = dir
		}
		if spec.Singleton != nil {
			def.Singleton = *spec.Singleton
		}
		if spec.Speed != nil {
			def.Speed = *spec.Speed
		}
		if spec.Cooldown != nil {
			def.Cooldown = *spec.Cooldown
		}
		if spec.Prob != nil {
			def.Prob = *spec.Prob
		}
		if spec.Total != nil {
			def.Total = *spec.Total
		}
		if spec.Limit != nil {
			def.Limit = *spec.Limit
		}
		if spec.Value != nil {
			def.Value = *spec.Value
		}
		def.Stype = b.optionalType(spec.Stype, spec.Name, "stype")
		def.Ammo = b.optionalType(spec.Ammo, spec.Name, "ammo")
		if res := b.optionalType(spec.Resource, spec.Name, "resource"); res != registry.NoType {
			def.Resource = res
		}
		def.AudioMove = spec.AudioMove
		def.AudioUse = spec.AudioUse
		def.Beacon = spec.Beacon

		defs = append(defs, def)
	}
	return defs, nil
}

// optionalType resolves a type reference that may be empty. Unknown names are
// reported and treated as absent.
func (b *builder) optionalType(name, owner, field string) registry.TypeID {
	if name == "" {
		return registry.NoType
	}
	id, err := b.names.Resolve(name)
	if err != nil {
		b.sink.Warn("unknown sprite reference", "sprite", owner, "field", field, "name", name)
		return registry.NoType
	}
	return id
}

// resolveAll resolves a list of names, reporting and dropping unknown ones.
func (b *builder) resolveAll(names Names, context string) []registry.TypeID {
	out := make([]registry.TypeID, 0, len(names))
	for _, n := range names {
		id, err := b.names.Resolve(n)
		if err != nil {
			b.sink.Warn("unknown sprite name", "in", context, "name", n)
			continue
		}
		out = append(out, id)
	}
	return out
}

// effect converts the shared effect part of a rule.
func (b *builder) effect(spec EffectSpec, context string) (sim.Effect, error) {
	kind, ok := sim.ParseEffectKind(spec.Effect)
	if !ok {
		return sim.Effect{}, fmt.Errorf("gamedef: %s: unknown effect %q", context, spec.Effect)
	}
	e := sim.NewEffect(kind)
	e.Scores = spec.Scores
	e.Counters = spec.Counters
	e.CountersElse = spec.CountersElse
	e.Audio = spec.Audio
	e.InBatch = spec.Batch
	e.Disabled = spec.Disabled
	e.Value = spec.Value
	e.Limit = spec.Limit
	e.Stype = b.optionalType(spec.Stype, context, "stype")
	e.Stype2 = b.optionalType(spec.Stype2, context, "stype2")
	e.Resource = b.optionalType(spec.Resource, context, "resource")

	if kind == sim.KindShieldFrom {
		shielded, ok := sim.ParseEffectKind(spec.Shield)
		if !ok {
			return sim.Effect{}, fmt.Errorf("gamedef: %s: shield_from needs a known effect to block, got %q", context, spec.Shield)
		}
		e.Shielded = shielded
	}
	return e, nil
}

func (b *builder) interactions(specs []InteractionSpec, rules *sim.Rules) error {
	for i, spec := range specs {
		context := fmt.Sprintf("interaction %d", i+1)
		e, err := b.effect(spec.EffectSpec, context)
		if err != nil {
			return err
		}
		as := b.resolveAll(spec.A, context)

		var bs []registry.TypeID
		eos := false
		for _, name := range spec.B {
			if name == EOS {
				eos = true
				continue
			}
			bs = append(bs, b.resolveAll(Names{name}, context)...)
		}

		for _, a := range as {
			if eos {
				rules.Edges = append(rules.Edges, sim.EdgeRule{Type: a, Effect: e})
			}
			for _, other := range bs {
				rules.Collisions = append(rules.Collisions, sim.CollisionRule{A: a, B: other, Effect: e})
			}
		}
	}
	return nil
}

func (b *builder) timed(specs []TimedSpec, rules *sim.Rules) error {
	for i, spec := range specs {
		context := fmt.Sprintf("timed effect %d", i+1)
		e, err := b.effect(spec.EffectSpec, context)
		if err != nil {
			return err
		}
		e.Timer = spec.Timer
		e.Repeating = spec.Repeating

		owner := registry.NoType
		if spec.Owner != "" {
			ids := b.resolveAll(Names{spec.Owner}, context)
			if len(ids) == 0 {
				continue
			}
			owner = ids[0]
		}
		rules.Timed = append(rules.Timed, sim.TimedRule{Owner: owner, Effect: e})
	}
	return nil
}

func (b *builder) terminations(specs []TerminationSpec, rules *sim.Rules) error {
	for i, spec := range specs {
		context := fmt.Sprintf("termination %d", i+1)
		out := sim.Outcomes{Win: spec.Win, BonusFor: spec.Bonus}

		var t sim.Termination
		switch spec.Kind {
		case "timeout":
			t = &sim.Timeout{
				Outcomes:   out,
				Limit:      spec.Limit,
				UseCounter: spec.UseCounter,
				Compare:    spec.Compare,
				Limits:     spec.Limits,
			}
		case "sprite_counter":
			t = &sim.SpriteCounter{Outcomes: out, Stypes: b.resolveAll(spec.Stypes, context), Limit: spec.Limit}
		case "multi_sprite_counter":
			t = &sim.MultiSpriteCounter{Outcomes: out, Stypes: b.resolveAll(spec.Stypes, context), Limit: spec.Limit}
		case "counter":
			op := sim.CounterOp(spec.Op)
			if op == "" {
				op = sim.OpEqual
			}
			if !op.Valid() {
				return fmt.Errorf("gamedef: %s: unknown comparison %q", context, spec.Op)
			}
			t = &sim.CounterCheck{Outcomes: out, Index: spec.Counter, Op: op, Value: spec.Value}
		default:
			return fmt.Errorf("gamedef: %s: unknown kind %q", context, spec.Kind)
		}
		rules.Terminations = append(rules.Terminations, t)
	}
	return nil
}

// mapping merges the declared level mapping over the default one.
func (b *builder) mapping(declared map[string][]string) (map[rune][]registry.TypeID, error) {
	merged := make(map[rune][]string, len(defaultMapping)+len(declared))
	for r, names := range defaultMapping {
		merged[r] = names
	}
	for key, names := range declared {
		r := []rune(key)
		if len(r) != 1 {
			return nil, fmt.Errorf("gamedef: level mapping key %q must be a single character", key)
		}
		merged[r[0]] = names
	}

	out := make(map[rune][]registry.TypeID, len(merged))
	keys := make([]rune, 0, len(merged))
	for r := range merged {
		keys = append(keys, r)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, r := range keys {
		out[r] = b.resolveAll(merged[r], fmt.Sprintf("level mapping %q", string(r)))
	}
	return out, nil
}

// Sink returns the diagnostic sink the game reports to.
func (g *Game) Sink() *diag.Sink {
	return g.sink
}

// TypeID resolves a sprite name of this game.
func (g *Game) TypeID(name string) (registry.TypeID, error) {
	return g.Catalog.Names().Resolve(name)
}
