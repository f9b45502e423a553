package gamedef

import (
	"github.com/vovakirdan/vgdl-arcade/internal/core"
	"github.com/vovakirdan/vgdl-arcade/internal/diag"
	"github.com/vovakirdan/vgdl-arcade/internal/levels"
	"github.com/vovakirdan/vgdl-arcade/internal/registry"
	"github.com/vovakirdan/vgdl-arcade/internal/sim"
)

// blank characters never place anything.
func blank(r rune) bool {
	return r == '.' || r == ' '
}

// Placements converts a character grid into initial sprite placements.
// The level's own mapping extends the game's; characters nobody maps are
// reported once each and left empty.
func (g *Game) Placements(lvl levels.Level) sim.Level {
	mapping := g.Mapping
	if len(lvl.Mapping) > 0 {
		mapping = make(map[rune][]registry.TypeID, len(g.Mapping)+len(lvl.Mapping))
		for r, ids := range g.Mapping {
			mapping[r] = ids
		}
		for r, names := range lvl.Mapping {
			var ids []registry.TypeID
			for _, n := range names {
				id, err := g.TypeID(n)
				if err != nil {
					g.sink.Warn("unknown sprite name", "level", lvl.ID, "char", string(r), "name", n)
					continue
				}
				ids = append(ids, id)
			}
			mapping[r] = ids
		}
	}

	out := sim.Level{Width: lvl.Width(), Height: lvl.Height()}
	reported := make(map[rune]bool)
	for y, row := range lvl.Rows {
		for x, r := range []rune(row) {
			if blank(r) {
				continue
			}
			ids, ok := mapping[r]
			if !ok {
				if !reported[r] {
					g.sink.Warn("unmapped level character", "level", lvl.ID, "char", string(r))
					reported[r] = true
				}
				continue
			}
			for _, id := range ids {
				out.Placements = append(out.Placements, sim.Placement{Type: id, X: x, Y: y})
			}
		}
	}
	return out
}

// NewSession starts a session of this game on lvl. A nil sink gets a fresh
// one on the game's logger, so warnings from loading the game do not count
// toward the session's ceiling.
func (g *Game) NewSession(lvl levels.Level, cfg core.RuntimeConfig, sink *diag.Sink) *sim.Session {
	if sink == nil {
		sink = diag.NewWithLogger(g.sink.Logger())
	}
	s := sim.NewSession(g.Catalog, g.Rules, sim.Options{
		Players:  g.Players,
		Counters: g.Counters,
		Config:   cfg,
		Sink:     sink,
	})
	s.BuildLevel(g.Placements(lvl))
	return s
}
