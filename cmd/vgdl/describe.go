package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/vgdl-arcade/internal/core"
	"github.com/vovakirdan/vgdl-arcade/internal/diag"
	"github.com/vovakirdan/vgdl-arcade/internal/games"
	"github.com/vovakirdan/vgdl-arcade/internal/registry"
	"github.com/vovakirdan/vgdl-arcade/internal/sim"
)

var describeCmd = &cobra.Command{
	Use:   "describe <game>",
	Short: "Explain a game's rules",
	Long: `Prints the sprite hierarchy of a game, the effects that apply to every
pair of concrete sprite types once inheritance is resolved, and the
termination conditions.`,
	Args: cobra.ExactArgs(1),
	RunE: runDescribe,
}

func runDescribe(cmd *cobra.Command, args []string) error {
	name := args[0]
	sink := diag.NewWithLogger(logger.WithPrefix(name))
	g, err := games.Load(name, sink)
	if err != nil {
		return err
	}

	if g.Description != "" {
		fmt.Println(g.Description)
		fmt.Println()
	}

	cat := g.Catalog
	printTitle("Sprites")
	var rows [][]string
	for id := registry.TypeID(0); int(id) < cat.Len(); id++ {
		def := cat.Def(id)
		depth := len(def.Ancestors) - 1
		rows = append(rows, []string{strings.Repeat("  ", depth) + def.Name, def.Class.String(), spriteNotes(cat, def)})
	}
	printTable([]string{"Type", "Class", "Notes"}, treeOrder(cat, rows))
	fmt.Println()

	// A throwaway session resolves inheritance exactly as a game would.
	sess := sim.NewSession(cat, g.Rules, sim.Options{
		Players:  g.Players,
		Counters: g.Counters,
		Config:   core.DefaultConfig(),
		Sink:     diag.Discard(),
	})

	var leaves []registry.TypeID
	for id := registry.TypeID(0); int(id) < cat.Len(); id++ {
		if cat.IsLeaf(id) {
			leaves = append(leaves, id)
		}
	}

	rows = nil
	for _, a := range leaves {
		for _, b := range leaves {
			if kinds := effectKinds(sess.EffectsBetween(a, b)); kinds != "" {
				rows = append(rows, []string{cat.Name(a), cat.Name(b), kinds})
			}
		}
		if kinds := effectKinds(sess.EOSEffectsFor(a)); kinds != "" {
			rows = append(rows, []string{cat.Name(a), "EOS", kinds})
		}
	}
	printTitle("Interactions")
	if len(rows) == 0 {
		fmt.Println("  none")
	} else {
		printTable([]string{"A", "B", "Effects"}, rows)
	}
	fmt.Println()

	rows = nil
	for _, e := range sess.TimedEffects() {
		every := fmt.Sprintf("%d", e.Timer)
		if e.Repeating {
			every = "every " + every
		} else {
			every = "at " + every
		}
		rows = append(rows, []string{e.Kind.String(), every})
	}
	if len(rows) > 0 {
		printTitle("Timed")
		printTable([]string{"Effect", "Tick"}, rows)
		fmt.Println()
	}

	printTitle("Terminations")
	rows = nil
	for i, t := range g.Rules.Terminations {
		outcomes := make([]string, g.Players)
		for p := range outcomes {
			if t.Wins(sess, core.PlayerID(p)) {
				outcomes[p] = "win"
			} else {
				outcomes[p] = "lose"
			}
		}
		rows = append(rows, []string{fmt.Sprintf("%d", i+1), t.Kind(), strings.Join(outcomes, ",")})
	}
	printTable([]string{"#", "Kind", "Players"}, rows)
	return nil
}

// treeOrder reorders per-id rows so children follow their parent.
func treeOrder(cat *sim.Catalog, rows [][]string) [][]string {
	children := make(map[registry.TypeID][]registry.TypeID)
	var roots []registry.TypeID
	for id := registry.TypeID(0); int(id) < cat.Len(); id++ {
		anc := cat.Def(id).Ancestors
		if len(anc) < 2 {
			roots = append(roots, id)
			continue
		}
		parent := anc[len(anc)-2]
		children[parent] = append(children[parent], id)
	}

	out := make([][]string, 0, len(rows))
	var walk func(id registry.TypeID)
	walk = func(id registry.TypeID) {
		out = append(out, rows[id])
		for _, c := range children[id] {
			walk(c)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return out
}

func spriteNotes(cat *sim.Catalog, def *sim.TypeDef) string {
	var notes []string
	if def.Singleton {
		notes = append(notes, "singleton")
	}
	if cat.Valid(def.Stype) {
		notes = append(notes, "stype="+cat.Name(def.Stype))
	}
	if cat.Valid(def.Ammo) {
		notes = append(notes, "ammo="+cat.Name(def.Ammo))
	}
	if def.Beacon != "" {
		notes = append(notes, "beacon="+def.Beacon)
	}
	if def.AudioMove != "" {
		notes = append(notes, "moves="+def.AudioMove)
	}
	if def.AudioUse != "" {
		notes = append(notes, "uses="+def.AudioUse)
	}
	return strings.Join(notes, " ")
}

func effectKinds(effects []*sim.Effect) string {
	names := make([]string, 0, len(effects))
	for _, e := range effects {
		n := e.Kind.String()
		if e.Disabled {
			n += "(off)"
		}
		names = append(names, n)
	}
	return strings.Join(names, ", ")
}
