// Package games bundles ready-made game descriptions and their levels.
// Each game lives in data/<name>/ as a game.yaml plus a levels/ directory.
package games

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/vovakirdan/vgdl-arcade/internal/diag"
	"github.com/vovakirdan/vgdl-arcade/internal/gamedef"
	"github.com/vovakirdan/vgdl-arcade/internal/levels"
)

//go:embed data
var bundled embed.FS

// ErrUnknownGame is returned for names that are not bundled.
var ErrUnknownGame = errors.New("games: unknown game")

const root = "data"

// List returns the names of all bundled games in sorted order.
func List() []string {
	entries, err := fs.ReadDir(bundled, root)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

// Exists checks if a game with the given name is bundled.
func Exists(name string) bool {
	_, err := fs.Stat(bundled, path.Join(root, name, "game.yaml"))
	return err == nil
}

// Source returns the raw game description.
func Source(name string) ([]byte, error) {
	if !Exists(name) {
		return nil, fmt.Errorf("%w %q", ErrUnknownGame, name)
	}
	return fs.ReadFile(bundled, path.Join(root, name, "game.yaml"))
}

// Load parses a bundled game, reporting recoverable problems to sink.
func Load(name string, sink *diag.Sink) (*gamedef.Game, error) {
	data, err := Source(name)
	if err != nil {
		return nil, err
	}
	g, err := gamedef.Parse(data, sink)
	if err != nil {
		return nil, fmt.Errorf("games: loading %s: %w", name, err)
	}
	return g, nil
}

// Levels returns a loader over the levels of a bundled game.
func Levels(name string) (*levels.Loader, error) {
	if !Exists(name) {
		return nil, fmt.Errorf("%w %q", ErrUnknownGame, name)
	}
	return levels.NewFSLoader(bundled, path.Join(root, name, "levels")), nil
}
